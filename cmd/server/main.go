package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	web "plagdesk/internal/adapters/http"
	"plagdesk/internal/app"
	"plagdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownGrace bounds how long in-flight requests get on SIGTERM.
const shutdownGrace = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "YAML config file (default $PLAGDESK_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("startup_failed", "stage", "config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.NewLogger())

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start(ctx)

	jobs := a.NewJobs()
	defer func() {
		jobs.CancelAll()
		jobs.Wait()
	}()

	csrfKey := cfg.CSRFKeyBytes()
	if csrfKey == nil {
		// Development only; Validate rejects a missing key in production.
		csrfKey = []byte("plagdesk-development-csrf-key-32")
		slog.Warn("csrf_key_missing", "hint", "set PLAGDESK_CSRF_KEY")
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: web.NewMux(ctx, web.Deps{
			Session:        a.Session,
			Gateway:        a.Gateway,
			Jobs:           jobs,
			Collector:      a.Collector,
			CSRFKey:        csrfKey,
			Secure:         cfg.IsProduction(),
			HistoryPerPage: cfg.HistoryPerPage,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "api", cfg.APIBaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stop", "reason", "signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
