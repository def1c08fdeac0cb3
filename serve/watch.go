package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/fsnotify/fsnotify"
)

// watchedFiles are the names in the config directory that trigger a reload.
var watchedFiles = map[string]bool{
	"config.json": true,
	"config.yaml": true,
	".env":        true,
}

// watchConfig reloads the engine whenever a config file in dir changes,
// until ctx is done. Bursts of events within debounce cause one reload.
func (s *Server) watchConfig(ctx context.Context, dir string, debounce time.Duration) error {
	if _, err := os.Stat(dir); err != nil {
		slog.Info("config dir not found, hot reload disabled", "dir", dir)
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	slog.Debug("watching config", "dir", dir)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchedFiles[filepath.Base(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("config changed", "file", event.Name, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, s.reloadFromDisk)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("config watcher error", "error", err)
		}
	}
}

func (s *Server) reloadFromDisk() {
	sujhav.LoadEnv()
	cfg, err := sujhav.LoadConfig()
	if err != nil {
		slog.Error("config reload failed, keeping current engine", "error", err)
		return
	}
	for _, w := range sujhav.ValidateConfig(cfg) {
		slog.Warn("config", "warning", w)
	}
	s.reloadEngine(cfg)
}
