package main

import (
	"fmt"
	"os"
	"testing"
)

func TestResolveSocketPath(t *testing.T) {
	tests := []struct {
		name     string
		envSetup func(t *testing.T)
		expected string
	}{
		{
			name: "SUJHAV_SOCKET",
			envSetup: func(t *testing.T) {
				t.Setenv("SUJHAV_SOCKET", "/custom/sujhav.sock")
			},
			expected: "/custom/sujhav.sock",
		},
		{
			name: "XDG_RUNTIME_DIR",
			envSetup: func(t *testing.T) {
				t.Setenv("SUJHAV_SOCKET", "")
				t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
			},
			expected: "/run/user/1000/sujhav.sock",
		},
		{
			name: "fallback",
			envSetup: func(t *testing.T) {
				t.Setenv("SUJHAV_SOCKET", "")
				t.Setenv("XDG_RUNTIME_DIR", "")
			},
			expected: fmt.Sprintf("/tmp/sujhav-%d.sock", os.Getuid()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.envSetup(t)
			if got := resolveSocketPath(); got != tt.expected {
				t.Errorf("resolveSocketPath() = %s, expected %s", got, tt.expected)
			}
		})
	}
}
