// Command sujhav-repl is an interactive test REPL for sujhav suggestions.
// It runs the prediction pipeline in-process, shows suggestions as you type,
// and writes a TOML transcript of every prediction to stdout when stdout is
// redirected.
//
// Usage:
//
//	./sujhav-repl                 # interactive
//	./sujhav-repl > log.toml      # interactive, transcript to file
//	./sujhav-repl < lines.txt     # batch: one buffer per line, TOML to stdout
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/generate"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func main() {
	var (
		verbose bool
		batch   bool
	)

	app := &cli.Command{
		Name:  "sujhav-repl",
		Usage: "type Hindi and see next-word suggestions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "debug logging to stderr",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "batch",
				Usage:       "read one buffer per line from stdin (default when stdin is not a terminal)",
				Destination: &batch,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			sujhav.LoadEnv()
			cfg, err := sujhav.LoadConfig()
			if err != nil {
				slog.Warn("failed to load config, using defaults", "error", err)
				cfg = sujhav.DefaultConfig()
			}

			engine := generate.NewEngine(cfg)
			defer engine.Close()

			if batch || !term.IsTerminal(int(os.Stdin.Fd())) {
				return runBatch(ctx, engine, os.Stdin, os.Stdout)
			}

			// The TUI owns the terminal; the transcript only goes to a
			// redirected stdout.
			var out io.Writer
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				out = os.Stdout
			}
			m := NewModel(engine, sujhav.ResolveModelName(cfg), out)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
			_, err = p.Run()
			return err
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// runBatch predicts on every line of r and writes the transcript to w.
func runBatch(ctx context.Context, engine Predictor, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	seq := 0
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		seq++
		res := engine.Predict(ctx, text)
		if err := writeEntry(w, seq, text, false, res); err != nil {
			return err
		}
	}
	return scanner.Err()
}
