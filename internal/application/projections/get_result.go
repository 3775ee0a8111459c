package projections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/domain/result"
)

// ErrResultNotFound means there is no result to show. The view renders an
// empty state rather than an error banner.
var ErrResultNotFound = errors.New("result not found")

// GetResultQuery carries input for the result detail projection.
type GetResultQuery struct {
	ID result.ID
}

// GetResultDeps holds dependencies for the result detail projection.
type GetResultDeps struct {
	Gateway ResultFetcher
	Handoff PayloadHandoff // optional: nil always fetches
}

// ResultDetail is the normalized result plus what the detail view highlights.
type ResultDetail struct {
	Result     result.Normalized
	TopMatches []result.Match
	// FromCheck is set when the payload came straight from a finished check.
	FromCheck bool
}

// QueryGetResult loads one result, preferring the payload a finished check
// handed over.
// PRE: none
// POST: returns ErrResultNotFound for an empty id, a 404, or a body that is
// not a result object
func QueryGetResult(ctx context.Context, query GetResultQuery, deps GetResultDeps) (ResultDetail, error) {
	if query.ID == "" {
		return ResultDetail{}, ErrResultNotFound
	}

	var (
		payload   json.RawMessage
		fromCheck bool
	)
	if deps.Handoff != nil {
		payload, fromCheck = deps.Handoff.TakePayload(query.ID)
	}
	if !fromCheck {
		var err error
		payload, err = deps.Gateway.GetResult(ctx, query.ID)
		if errors.Is(err, gateway.ErrNotFound) {
			return ResultDetail{}, ErrResultNotFound
		}
		if err != nil {
			return ResultDetail{}, fmt.Errorf("get result %s: %w", query.ID, err)
		}
	}

	raw, err := result.Decode(payload)
	if err != nil {
		slog.Warn("result_event", "event", "undecodable_result", "result_id", query.ID, "error", err)
		return ResultDetail{}, ErrResultNotFound
	}
	n := result.Normalize(raw)
	if n.ResultID == "" {
		n.ResultID = query.ID
	}
	return ResultDetail{
		Result:     n,
		TopMatches: result.TopMatches(n.Matches, result.DisplayedMatches),
		FromCheck:  fromCheck,
	}, nil
}
