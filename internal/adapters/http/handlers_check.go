package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"plagdesk/internal/application/submission"
	"plagdesk/internal/domain/check"
	"plagdesk/internal/domain/session"
)

// maxUploadBytes bounds a check form: two files at the size limit plus form overhead.
const maxUploadBytes = 2*check.MaxFileSize + 1<<20

// MsgChooseMode is shown when the form carries no usable mode.
const MsgChooseMode = "Please choose a check mode."

func renderReportForm(w http.ResponseWriter, r *http.Request, status int, mode check.Mode, msg string) {
	if mode == "" {
		mode = check.ModeInternet
	}
	renderTemplateStatus(w, r, status, "report.html", map[string]any{
		"Mode":   string(mode),
		"Error":  msg,
		"Accept": strings.Join(check.AllowedExtensions, ","),
		"Hint":   check.MsgInvalidFile,
	})
}

// handleReportForm handles GET /report
func (h *handlers) handleReportForm(w http.ResponseWriter, r *http.Request) {
	mode, _ := check.ParseMode(r.URL.Query().Get("mode"))
	renderReportForm(w, r, http.StatusOK, mode, "")
}

// readFormFile returns the uploaded file, or nil when the field is empty.
func readFormFile(r *http.Request, field string) (*check.File, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, check.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	file := check.NewFile(hdr.Filename, data)
	file.Size = max(file.Size, hdr.Size)
	return file, nil
}

// handleReportSubmit handles POST /report: validation runs before anything
// leaves the process, then the check runs as a background job.
func (h *handlers) handleReportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderReportForm(w, r, http.StatusRequestEntityTooLarge, check.Mode(r.URL.Query().Get("mode")), check.MsgInvalidFile)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
	}

	mode, err := check.ParseMode(r.FormValue("mode"))
	if err != nil {
		renderReportForm(w, r, http.StatusUnprocessableEntity, "", MsgChooseMode)
		return
	}
	req := check.Request{Mode: mode}
	if req.File1, err = readFormFile(r, "file1"); err != nil {
		http.Error(w, "Invalid file upload", http.StatusBadRequest)
		return
	}
	if mode == check.ModeCompare {
		if req.File2, err = readFormFile(r, "file2"); err != nil {
			http.Error(w, "Invalid file upload", http.StatusBadRequest)
			return
		}
	}

	job, err := h.jobs.Start(req)
	if err != nil {
		var ve *check.ValidationError
		if errors.As(err, &ve) {
			renderReportForm(w, r, http.StatusUnprocessableEntity, mode, ve.Message)
			return
		}
		internalError(w, err)
		return
	}
	http.Redirect(w, r, "/report/jobs/"+job.ID, http.StatusSeeOther)
}

// handleJob handles GET /report/jobs/{id}: the stage indicator while
// PROCESSING, the result once DONE, and retry after a failure.
func (h *handlers) handleJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := h.jobs.Get(id)
	if errors.Is(err, submission.ErrJobNotFound) {
		http.Redirect(w, r, "/report", http.StatusSeeOther)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	switch {
	case v.AuthLost:
		_ = h.jobs.Cancel(id)
		slog.Info("auth_event", "event", "session_expired_redirect", "path", r.URL.Path)
		http.Redirect(w, r, session.LoginRedirect("/report"), http.StatusSeeOther)
	case v.State == check.StateDone:
		http.Redirect(w, r, "/results/"+v.ResultID.String(), http.StatusSeeOther)
	default:
		renderTemplate(w, r, "job.html", map[string]any{"Job": v})
	}
}

// handleJobRetry handles POST /report/jobs/{id}/retry
func (h *handlers) handleJobRetry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.jobs.Retry(id)
	switch {
	case errors.Is(err, submission.ErrJobNotFound), errors.Is(err, submission.ErrNoRetry):
		http.Redirect(w, r, "/report", http.StatusSeeOther)
		return
	case err != nil && !errors.Is(err, submission.ErrNotIdle):
		var ve *check.ValidationError
		if !errors.As(err, &ve) {
			internalError(w, err)
			return
		}
	}
	http.Redirect(w, r, "/report/jobs/"+id, http.StatusSeeOther)
}

// handleJobCancel handles POST /report/jobs/{id}/cancel
func (h *handlers) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	_ = h.jobs.Cancel(r.PathValue("id"))
	http.Redirect(w, r, "/report", http.StatusSeeOther)
}
