package orchestrators

import (
	"context"
	"log/slog"

	"plagdesk/internal/domain/result"
)

// MsgDeleteFailed is shown when the server gives no reason.
const MsgDeleteFailed = "Failed to delete result. Please try again."

// ResultDeleter defines the gateway call needed by DeleteResult.
type ResultDeleter interface {
	DeleteResult(ctx context.Context, id result.ID) error
}

// DeleteResultInput names the result and, optionally, the page it is shown on.
type DeleteResultInput struct {
	ID   result.ID
	Page *result.HistoryPage // optional: updated in place after the server confirms
}

// DeleteResultDeps holds dependencies for DeleteResult.
type DeleteResultDeps struct {
	Gateway ResultDeleter
}

// ExecuteDeleteResult deletes one result and updates the shown page without
// refetching.
// PRE: ID is non-empty
// POST: on success the row is gone from Page and TotalResults dropped by one
// (never below 0); on failure Page is untouched and a *FlowError is returned
func ExecuteDeleteResult(ctx context.Context, input DeleteResultInput, deps DeleteResultDeps) error {
	if input.ID == "" {
		return &FlowError{Message: MsgDeleteFailed}
	}
	if err := deps.Gateway.DeleteResult(ctx, input.ID); err != nil {
		slog.Warn("history_event", "event", "delete_failed", "result_id", input.ID, "error", err)
		return fail(err, MsgDeleteFailed)
	}
	if input.Page != nil {
		input.Page.Remove(input.ID)
	}
	slog.Info("history_event", "event", "result_deleted", "result_id", input.ID)
	return nil
}
