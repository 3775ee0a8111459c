package web

import (
	"context"
	"embed"
	"net/http"
	"time"

	"plagdesk/internal/adapters/http/middleware"
	"plagdesk/internal/adapters/http/perf"
	"plagdesk/internal/application/orchestrators"
	"plagdesk/internal/application/projections"
	"plagdesk/internal/application/submission"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultRateLimitPerSecond is the per-IP request budget.
const DefaultRateLimitPerSecond = 20

// Gateway is every remote API call the web UI makes.
type Gateway interface {
	orchestrators.RegisterGateway
	orchestrators.ResultDeleter
	orchestrators.ReportFetcher
	projections.HistoryLister
	projections.ResultFetcher
	projections.AnalyticsFetcher
}

// Session is the process-wide session context the UI reads and drives.
type Session interface {
	middleware.SessionSource
	orchestrators.SessionStarter
	orchestrators.SessionEnder
}

// Deps holds everything the web UI needs.
type Deps struct {
	Session   Session
	Gateway   Gateway
	Jobs      *submission.Jobs
	Collector *perf.Collector

	CSRFKey        []byte
	Secure         bool     // cookies need HTTPS
	TrustedOrigins []string // hosts allowed to post forms
	HistoryPerPage int
	SlowRequestMs  int
	// RateLimitPerSecond is the per-IP budget; 0 means DefaultRateLimitPerSecond.
	RateLimitPerSecond int
}

// handlers carries the dependencies every handler reads.
type handlers struct {
	session        Session
	gateway        Gateway
	jobs           *submission.Jobs
	collector      *perf.Collector
	historyPerPage int
}

func newHandlers(d Deps) *handlers {
	return &handlers{
		session:        d.Session,
		gateway:        d.Gateway,
		jobs:           d.Jobs,
		collector:      d.Collector,
		historyPerPage: d.HistoryPerPage,
	}
}

// NewMux wires HTTP handlers for the app. The rate limiter's sweeper stops
// when ctx ends.
func NewMux(ctx context.Context, d Deps) http.Handler {
	mux := newHandlers(d).routes()

	rate := d.RateLimitPerSecond
	if rate <= 0 {
		rate = DefaultRateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(ctx, rate, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(d.CSRFKey, d.Secure, d.TrustedOrigins),
		middleware.Auth(d.Session),
		middleware.RateLimit(limiter),
		middleware.Timing(d.Collector, d.SlowRequestMs),
	)
}
