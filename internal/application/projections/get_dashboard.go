package projections

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/domain/result"
)

// RecentCount is how many of the latest results the dashboard lists.
const RecentCount = 5

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Analytics AnalyticsFetcher
	History   HistoryLister
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Analytics    result.Analytics
	Distribution []result.LevelCount
	Recent       []result.Summary
}

// QueryGetDashboard fetches the account summary and the latest results
// concurrently. Either fetch failing leaves its part zero-valued; only a lost
// session is returned as an error.
// PRE: none
// POST: Distribution always lists Low, Medium and High; Recent holds at most
// RecentCount rows
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	var (
		analytics result.Analytics
		recent    []result.Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := deps.Analytics.Analytics(gctx)
		if err != nil {
			return swallow("analytics", err)
		}
		analytics = a
		return nil
	})
	g.Go(func() error {
		p, err := deps.History.ListResults(gctx, 1, RecentCount)
		if err != nil {
			return swallow("recent_results", err)
		}
		recent = p.Results
		return nil
	})
	if err := g.Wait(); err != nil {
		return DashboardResult{}, err
	}

	if len(recent) > RecentCount {
		recent = recent[:RecentCount]
	}
	if recent == nil {
		recent = []result.Summary{}
	}
	return DashboardResult{
		Analytics:    analytics,
		Distribution: analytics.Distribution(),
		Recent:       recent,
	}, nil
}

// swallow logs a failed dashboard fetch and drops it, except a lost session.
func swallow(part string, err error) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return err
	}
	slog.Warn("dashboard_event", "event", "fetch_failed", "part", part, "error", err)
	return nil
}
