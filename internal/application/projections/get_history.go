package projections

import (
	"context"
	"fmt"

	"plagdesk/internal/application/listutil"
	"plagdesk/internal/domain/result"
)

// GetHistoryQuery carries input for the history projection.
type GetHistoryQuery struct {
	Page    int
	PerPage int
}

// GetHistoryDeps holds dependencies for the history projection.
type GetHistoryDeps struct {
	Gateway HistoryLister
}

// HistoryResult is one page of history plus its pagination controls.
type HistoryResult struct {
	Page result.HistoryPage
	Info listutil.PageInfo
}

// QueryGetHistory fetches one page of the user's results.
// PRE: query.Page >= 1
// POST: Info reflects the server's paging; Results is never nil
func QueryGetHistory(ctx context.Context, query GetHistoryQuery, deps GetHistoryDeps) (HistoryResult, error) {
	page := max(query.Page, 1)
	perPage := query.PerPage
	if perPage < 1 {
		perPage = listutil.DefaultPerPage
	}

	p, err := deps.Gateway.ListResults(ctx, page, perPage)
	if err != nil {
		return HistoryResult{}, fmt.Errorf("list results page %d: %w", page, err)
	}
	if p.Results == nil {
		p.Results = []result.Summary{}
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = page
	}
	if p.PerPage < 1 {
		p.PerPage = perPage
	}
	return HistoryResult{Page: p, Info: PageInfoFor(p)}, nil
}

// PageInfoFor derives the controls from a page, including one changed
// locally after a delete.
func PageInfoFor(p result.HistoryPage) listutil.PageInfo {
	return listutil.NewPageInfo(p.CurrentPage, p.PerPage, p.TotalResults)
}
