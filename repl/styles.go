package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#25D366")
	colorSubtle = lipgloss.Color("#666666")
	colorError  = lipgloss.Color("#FF6B6B")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	chipStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30363D"))

	chipKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	subtleStyle = lipgloss.NewStyle().
			Foreground(colorSubtle)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)
)

// renderChips renders suggestions as numbered chips on one line.
func renderChips(suggestions []string) string {
	chips := make([]string, 0, len(suggestions))
	for i, s := range suggestions {
		chips = append(chips, chipKeyStyle.Render(strconv.Itoa(i+1))+" "+chipStyle.Render(s))
	}
	return strings.Join(chips, "  ")
}
