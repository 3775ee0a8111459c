package projections

import (
	"context"
	"encoding/json"
	"sync"

	"plagdesk/internal/domain/result"
)

// mockGateway serves canned history, results and analytics.
type mockGateway struct {
	mu sync.Mutex

	page       result.HistoryPage
	listErr    error
	listCalls  [][2]int
	results    map[result.ID]string
	getErr     error
	gets       int
	analytics  result.Analytics
	analyticsE error
}

func (m *mockGateway) ListResults(_ context.Context, page, perPage int) (result.HistoryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = append(m.listCalls, [2]int{page, perPage})
	return m.page, m.listErr
}

func (m *mockGateway) GetResult(_ context.Context, id result.ID) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return json.RawMessage(m.results[id]), nil
}

func (m *mockGateway) Analytics(context.Context) (result.Analytics, error) {
	return m.analytics, m.analyticsE
}

// mockHandoff holds payloads from finished checks.
type mockHandoff map[result.ID]string

func (m mockHandoff) TakePayload(id result.ID) (json.RawMessage, bool) {
	p, ok := m[id]
	delete(m, id)
	return json.RawMessage(p), ok
}
