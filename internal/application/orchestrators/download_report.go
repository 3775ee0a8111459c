package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"plagdesk/internal/domain/result"
)

// MsgReportFailed is shown when the server gives no reason.
const MsgReportFailed = "Failed to download report."

// ReportFetcher defines the gateway call needed by the report flows.
type ReportFetcher interface {
	DownloadReport(ctx context.Context, id result.ID) (result.Report, error)
}

// DownloadReportDeps holds dependencies for the report flows.
type DownloadReportDeps struct {
	Gateway ReportFetcher
}

// ExecuteDownloadReport fetches the PDF for id.
// PRE: id is non-empty
// POST: Filename is always plagiarism-report-{id}.pdf
func ExecuteDownloadReport(ctx context.Context, id result.ID, deps DownloadReportDeps) (result.Report, error) {
	rep, err := deps.Gateway.DownloadReport(ctx, id)
	if err != nil {
		slog.Warn("report_event", "event", "download_failed", "result_id", id, "error", err)
		return result.Report{}, fail(err, MsgReportFailed)
	}
	rep.Filename = result.ReportFilename(id)
	slog.Info("report_event", "event", "downloaded", "result_id", id, "bytes", len(rep.Data))
	return rep, nil
}

// SaveReportInput names the result and the directory to write into.
type SaveReportInput struct {
	ID  result.ID
	Dir string // "" means the working directory
}

// ExecuteSaveReport downloads the PDF and writes it under Dir.
// PRE: Dir is writable
// POST: returns the written file's path
func ExecuteSaveReport(ctx context.Context, input SaveReportInput, deps DownloadReportDeps) (string, error) {
	rep, err := ExecuteDownloadReport(ctx, input.ID, deps)
	if err != nil {
		return "", err
	}
	dir := input.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(rep.Filename))
	if err := os.WriteFile(path, rep.Data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
