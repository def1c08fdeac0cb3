package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/Paranoid-AF/sujhav/generate"
)

func TestWatchConfigReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)

	reloaded := make(chan *sujhav.Config, 4)
	srv := newTestServer(t, &stubPredictor{}, func(s *Server) {
		s.newPredictor = func(cfg *sujhav.Config) Predictor {
			reloaded <- cfg
			return &stubPredictor{}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.watchConfig(ctx, dir, 10*time.Millisecond) }()

	// Let the watcher register before writing.
	time.Sleep(50 * time.Millisecond)

	// Unrelated files are ignored.
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	data := []byte(`{"model":{"name":"other/model"}}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Model.Name != "other/model" {
			t.Errorf("reloaded with model %q", cfg.Model.Name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected reload after config change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchConfig returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("watchConfig did not stop on cancel")
	}
}

func TestWatchConfigReloadsOnDotEnvEdit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SUJHAV_CONFIG_DIR", dir)
	t.Setenv("SUJHAV_MODEL_NAME", "")
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(envPath, []byte("SUJHAV_MODEL_NAME=first/model\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sujhav.LoadEnv()

	reloaded := make(chan Predictor, 4)
	srv := newTestServer(t, &stubPredictor{}, func(s *Server) {
		s.newPredictor = func(cfg *sujhav.Config) Predictor {
			e := generate.NewEngine(cfg)
			reloaded <- e
			return e
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.watchConfig(ctx, dir, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(envPath, []byte("SUJHAV_MODEL_NAME=second/model\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-reloaded:
			// Editors can fire several events; wait for the final content.
			if p.Status().Name == "second/model" {
				return
			}
		case <-deadline:
			t.Fatal("expected reload with the edited .env model")
		}
	}
}

func TestWatchConfigMissingDir(t *testing.T) {
	srv := newTestServer(t, &stubPredictor{})
	err := srv.watchConfig(context.Background(), filepath.Join(t.TempDir(), "absent"), time.Millisecond)
	if err != nil {
		t.Errorf("expected nil for missing dir, got %v", err)
	}
}
