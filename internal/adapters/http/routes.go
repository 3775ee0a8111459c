package web

import (
	"net/http"

	"plagdesk/internal/adapters/http/middleware"
)

// routes registers every page. Protected pages go through the session guard.
func (h *handlers) routes() *http.ServeMux {
	mux := http.NewServeMux()
	guard := middleware.RequireSession(h.session)
	protect := func(fn http.HandlerFunc) http.Handler { return guard(fn) }

	// Public
	mux.HandleFunc("GET /{$}", h.handleHome)
	mux.HandleFunc("GET /login", h.handleLoginForm)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("GET /register", h.handleRegisterForm)
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("GET /healthz", handleHealthz)

	// Guarded
	mux.Handle("GET /dashboard", protect(h.handleDashboard))
	mux.Handle("GET /report", protect(h.handleReportForm))
	mux.Handle("POST /report", protect(h.handleReportSubmit))
	mux.Handle("GET /report/jobs/{id}", protect(h.handleJob))
	mux.Handle("POST /report/jobs/{id}/retry", protect(h.handleJobRetry))
	mux.Handle("POST /report/jobs/{id}/cancel", protect(h.handleJobCancel))
	mux.Handle("GET /results/{id}", protect(h.handleResult))
	mux.Handle("GET /results/{id}/pdf", protect(h.handleResultPDF))
	mux.Handle("GET /history", protect(h.handleHistory))
	mux.Handle("POST /history/{id}/delete", protect(h.handleHistoryDelete))
	mux.Handle("GET /perf", protect(h.handlePerf))

	return mux
}
