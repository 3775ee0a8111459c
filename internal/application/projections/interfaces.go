package projections

import (
	"context"
	"encoding/json"

	"plagdesk/internal/domain/result"
)

// HistoryLister interface for paged result queries.
type HistoryLister interface {
	ListResults(ctx context.Context, page, perPage int) (result.HistoryPage, error)
}

// ResultFetcher interface for single stored results.
type ResultFetcher interface {
	GetResult(ctx context.Context, id result.ID) (json.RawMessage, error)
}

// AnalyticsFetcher interface for the account summary.
type AnalyticsFetcher interface {
	Analytics(ctx context.Context) (result.Analytics, error)
}

// PayloadHandoff hands over the response a just-finished check produced, so
// the detail view renders it without refetching.
type PayloadHandoff interface {
	TakePayload(id result.ID) (json.RawMessage, bool)
}
