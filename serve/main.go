// Command sujhavd is the sujhav daemon.
// It holds typing sessions and serves Hindi next-word suggestions over a Unix
// domain socket and an HTTP JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sujhav "github.com/Paranoid-AF/sujhav"
	"github.com/labstack/echo/v5"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const reloadDebounce = 250 * time.Millisecond

func main() {
	var (
		verbose    bool
		socketPath string
		httpAddr   string
		noHTTP     bool
		noWatch    bool
	)

	app := &cli.Command{
		Name:    "sujhavd",
		Usage:   "Hindi next-word suggestion daemon",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "log every request and response",
				Destination: &verbose,
			},
			&cli.StringFlag{
				Name:        "socket",
				Usage:       "Unix socket path",
				Sources:     cli.EnvVars("SUJHAV_SOCKET"),
				Destination: &socketPath,
			},
			&cli.StringFlag{
				Name:        "http-addr",
				Usage:       "HTTP listen address (default from config)",
				Sources:     cli.EnvVars("SUJHAV_HTTP_ADDR"),
				Destination: &httpAddr,
			},
			&cli.BoolFlag{
				Name:        "no-http",
				Usage:       "serve the Unix socket only",
				Destination: &noHTTP,
			},
			&cli.BoolFlag{
				Name:        "no-watch",
				Usage:       "do not reload when config files change",
				Destination: &noWatch,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := slog.LevelInfo
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
			for _, w := range sujhav.ValidateConfig(cfg) {
				slog.Warn("config", "warning", w)
			}

			if socketPath == "" {
				socketPath = resolveSocketPath()
			}
			if httpAddr == "" && !noHTTP {
				httpAddr = cfg.Server.HTTPAddr
			}
			if noHTTP {
				httpAddr = ""
			}

			return run(ctx, cfg, socketPath, httpAddr, !noWatch)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *sujhav.Config, socketPath, httpAddr string, watch bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting", "socket", socketPath, "http", httpAddr, "model", sujhav.ResolveModelName(cfg), "backend", sujhav.ResolveModelBackend(cfg))

	srv, err := NewServer(socketPath, cfg)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		srv.Close()
		return nil
	})

	g.Go(func() error {
		if err := srv.Serve(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("socket server: %w", err)
		}
		return nil
	})

	if httpAddr != "" {
		e := newEcho(srv)
		g.Go(func() error {
			sc := echo.StartConfig{Address: httpAddr, HideBanner: true}
			if err := sc.Start(gctx, e); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	if watch {
		g.Go(func() error {
			if err := srv.watchConfig(gctx, sujhav.ConfigDir(), reloadDebounce); err != nil {
				slog.Warn("config watch stopped", "error", err)
			}
			return nil
		})
	}

	slog.Info("ready")
	return g.Wait()
}

func resolveSocketPath() string {
	if path := os.Getenv("SUJHAV_SOCKET"); path != "" {
		return path
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir + "/sujhav.sock"
	}
	return fmt.Sprintf("/tmp/sujhav-%d.sock", os.Getuid())
}
