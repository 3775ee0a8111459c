package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/adapters/http/middleware"
	"plagdesk/internal/application/orchestrators"
	"plagdesk/internal/domain/account"
	"plagdesk/internal/domain/session"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// formatScore renders a percentage score with one decimal.
func formatScore(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

// renderTemplateStatus renders templateName inside the layout. The page is
// rendered to a buffer first so a template failure never sends half a page.
func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	funcMap := template.FuncMap{
		"isLoggedIn":     func() bool { return middleware.IsLoggedIn(r.Context()) },
		"csrfField":      func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": renderMarkdown,
		"score":          formatScore,
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse %s: %w", templateName, err))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// flowMessage is the user-facing text for a failed flow.
func flowMessage(err error, fallback string) string {
	var fe *orchestrators.FlowError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return gateway.Message(err, fallback)
}

// respondGatewayError is the one place a lost session turns into navigation:
// the gateway has already cleared the store, so the user is sent to log in
// and resume here. Anything else renders the server message.
func respondGatewayError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		slog.Info("auth_event", "event", "session_expired_redirect", "path", r.URL.Path)
		http.Redirect(w, r, session.LoginRedirect(middleware.ResumeTarget(r)), http.StatusSeeOther)
		return
	}
	slog.Warn("upstream_error", "path", r.URL.Path, "error", err)
	renderTemplateStatus(w, r, http.StatusBadGateway, "error.html", map[string]any{
		"Error": gateway.Message(err, fallback),
		"Back":  "/dashboard",
	})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleHome renders the public landing page.
func (h *handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "home.html", map[string]any{"Body": landingMarkdown})
}

// handleLoginForm handles GET /login
func (h *handlers) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.IsLoggedIn(r.Context()) {
		http.Redirect(w, r, session.SafeNext(next), http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", map[string]any{"Next": next})
}

// handleLogin handles POST /login
func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Next:     r.FormValue("next"),
	}
	res, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		Gateway: h.gateway,
		Session: h.session,
	})
	if err != nil {
		renderTemplate(w, r, "login.html", map[string]any{
			"Error": flowMessage(err, orchestrators.MsgLoginFailed),
			"Email": input.Email,
			"Next":  input.Next,
		})
		return
	}
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

// handleRegisterForm handles GET /register
func (h *handlers) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.IsLoggedIn(r.Context()) {
		http.Redirect(w, r, session.DefaultLanding, http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "register.html", map[string]any{"MinPassword": account.MinPasswordLength})
}

// handleRegister handles POST /register
func (h *handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.RegisterInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm"),
	}
	res, err := orchestrators.ExecuteRegister(r.Context(), input, orchestrators.RegisterDeps{
		Gateway: h.gateway,
		Session: h.session,
	})
	if err != nil {
		renderTemplate(w, r, "register.html", map[string]any{
			"Error":       flowMessage(err, orchestrators.MsgRegistrationFailed),
			"Email":       input.Email,
			"MinPassword": account.MinPasswordLength,
		})
		return
	}
	http.Redirect(w, r, res.Redirect, http.StatusSeeOther)
}

// handleLogout handles POST /logout
func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	deps := orchestrators.LogoutDeps{Session: h.session}
	if h.jobs != nil {
		deps.Jobs = h.jobs
	}
	if err := orchestrators.ExecuteLogout(r.Context(), deps); err != nil {
		internalError(w, err)
		return
	}
	http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
}
