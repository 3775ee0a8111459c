// Package app assembles the runtime both binaries share: the credential
// store, the session context and the API gateway, with the gateway's 401
// handling routed through the session's lock.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/adapters/http/perf"
	"plagdesk/internal/adapters/storage"
	"plagdesk/internal/adapters/storage/credential"
	appsession "plagdesk/internal/application/session"
	"plagdesk/internal/application/submission"
	"plagdesk/internal/config"
)

// App is the wired runtime.
type App struct {
	Config    *config.Config
	Collector *perf.Collector
	Session   *appsession.Context
	Gateway   *gateway.Client

	db *sql.DB
}

// Open opens the database and wires the session and gateway. The session
// starts loading; call Session.Initialize (or Start) before reading it.
// PRE: cfg passed Validate
// POST: returns a ready App the caller must Close, or an error and nothing open
func Open(cfg *config.Config) (*App, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	var sealer *credential.Sealer
	if key := cfg.StoreKeyBytes(); key != nil {
		if sealer, err = credential.NewSealer(key); err != nil {
			db.Close()
			return nil, fmt.Errorf("credential sealing key: %w", err)
		}
	}
	store := credential.NewSQLiteStore(storage.NewTimedDB(db, collector, 0), sealer)

	sess := appsession.New(store)
	client, err := gateway.New(gateway.Options{
		BaseURL:     cfg.APIBaseURL,
		HTTPClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		Credentials: store,
		Revoker:     sess,
		Collector:   collector,
		SlowMs:      cfg.SlowUpstreamMs,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("app_event", "event", "opened", "db", cfg.DBPath, "api", cfg.APIBaseURL, "sealed", sealer != nil)
	return &App{
		Config:    cfg,
		Collector: collector,
		Session:   sess,
		Gateway:   client,
		db:        db,
	}, nil
}

// Start performs the session's single credential read in the background.
func (a *App) Start(ctx context.Context) {
	go a.Session.Initialize(ctx)
}

// NewJobs builds the web UI's job registry over the gateway. A failure that
// unwraps to gateway.ErrUnauthorized counts as a lost session.
func (a *App) NewJobs() *submission.Jobs {
	return submission.NewJobs(a.Gateway, submission.JobsConfig{
		Schedule:   a.Config.StageSchedule,
		Timeout:    a.Config.CheckTimeout,
		IsAuthLoss: IsAuthLoss,
	})
}

// NewPipeline builds a single submission pipeline for the CLI.
func (a *App) NewPipeline(opts submission.Options) *submission.Pipeline {
	if opts.Schedule == nil {
		opts.Schedule = a.Config.StageSchedule
	}
	if opts.Timeout == 0 {
		opts.Timeout = a.Config.CheckTimeout
	}
	return submission.New(a.Gateway, opts)
}

// IsAuthLoss reports whether err came from an invalidated session.
func IsAuthLoss(err error) bool {
	return errors.Is(err, gateway.ErrUnauthorized)
}

// Close releases the database.
func (a *App) Close() error {
	return a.db.Close()
}
