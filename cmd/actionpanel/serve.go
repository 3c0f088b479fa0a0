package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	httphandler "github.com/ericfisherdev/actionpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/actionpanel/internal/adapter/driving/navigation"
	webhandler "github.com/ericfisherdev/actionpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/actionpanel/internal/config"
	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/metrics"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local web shell",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "HTTP listen address (default: ACTIONPANEL_LISTEN_ADDR)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// 1. Load configuration (fail fast on invalid env vars).
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr := c.String("addr"); addr != "" {
				cfg.ListenAddr = addr
			}
			setupLogger(cfg, slog.LevelInfo, c.Bool("verbose"))
			return runServe(ctx, cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_base_url", cfg.APIBaseURL,
		"requests_per_second", cfg.RequestsPerSecond,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire storage, session, metrics and the API client. Requests carry
	// their view in the context, so the navigator needs no callback.
	a, err := newApp(ctx, cfg, &navigation.Navigator{})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Error("error closing storage", "error", closeErr)
		}
	}()
	slog.Info("storage opened", "storage", a.storage)

	// 4. Read the stored credential in the background. Protected pages show
	// a loading view until it settles.
	a.session.Subscribe(func(prev, next model.SessionState) {
		slog.Info("session state changed", "from", prev.String(), "to", next.String())
	})
	go func() {
		if err := a.session.Bootstrap(ctx); err != nil {
			slog.Error("failed to read stored credential", "error", err)
		}
	}()

	// 5. Register API, GUI and metrics routes.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(a.session, a.list, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(a.session, a.client, a.client, a.list, iconBaseURL(cfg.APIBaseURL), slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	mux.Handle("GET /metrics", metrics.Handler(a.registry))

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 6. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		return err
	}

	// 7. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// iconBaseURL returns the API base as a directory URL for resolving
// server-relative icon paths, or nil if it does not parse.
func iconBaseURL(apiBase string) *url.URL {
	u, err := url.Parse(strings.TrimRight(apiBase, "/") + "/")
	if err != nil {
		return nil
	}
	return u
}
