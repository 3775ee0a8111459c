package projections

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/domain/result"
)

// TestQueryGetResult_Compare tests a stored compare result.
func TestQueryGetResult_Compare(t *testing.T) {
	gw := &mockGateway{results: map[result.ID]string{
		"3": `{"result_id":3,"file1_name":"a.py","file2_name":"b.py","plagiarism_score":45,"tfidf_score":40,"jaccard_score":30,"sequence_score":20}`,
	}}
	d, err := QueryGetResult(context.Background(), GetResultQuery{ID: "3"}, GetResultDeps{Gateway: gw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Result.Level != result.LevelModerate || d.Result.Components.High != 5 {
		t.Errorf("unexpected normalized result: %+v", d.Result)
	}
	if d.FromCheck {
		t.Error("expected a fetched result")
	}
}

// TestQueryGetResult_PrefersHandoff tests that a finished check is shown without refetching.
func TestQueryGetResult_PrefersHandoff(t *testing.T) {
	gw := &mockGateway{}
	handoff := mockHandoff{"9": `{"result_id":9,"overall_score":80,"file2_name":"Web Search","matches":[
		{"source":"a","score":10},{"source":"b","score":90},{"source":"c","score":20},
		{"source":"d","score":30},{"source":"e","score":40},{"source":"f","score":50}]}`}

	d, err := QueryGetResult(context.Background(), GetResultQuery{ID: "9"}, GetResultDeps{Gateway: gw, Handoff: handoff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.FromCheck || gw.gets != 0 {
		t.Errorf("FromCheck=%v gets=%d, want true and 0", d.FromCheck, gw.gets)
	}
	if len(d.TopMatches) != result.DisplayedMatches || d.TopMatches[0].Label != "b" {
		t.Errorf("unexpected top matches: %+v", d.TopMatches)
	}
	if !d.Result.IsInternet || d.Result.Level != result.LevelHigh {
		t.Errorf("unexpected normalized result: %+v", d.Result)
	}
}

// TestQueryGetResult_NotFound tests every path into the empty state.
func TestQueryGetResult_NotFound(t *testing.T) {
	tests := []struct {
		name string
		id   result.ID
		gw   *mockGateway
	}{
		{"empty id", "", &mockGateway{}},
		{"server 404", "4", &mockGateway{getErr: &gateway.RequestError{Method: http.MethodGet, Path: "/files/results/4", StatusCode: http.StatusNotFound}}},
		{"not an object", "5", &mockGateway{results: map[result.ID]string{"5": `null`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QueryGetResult(context.Background(), GetResultQuery{ID: tt.id}, GetResultDeps{Gateway: tt.gw})
			if !errors.Is(err, ErrResultNotFound) {
				t.Errorf("got %v, want ErrResultNotFound", err)
			}
		})
	}
}

// TestQueryGetResult_AuthLoss tests that a 401 is not mistaken for not-found.
func TestQueryGetResult_AuthLoss(t *testing.T) {
	gw := &mockGateway{getErr: &gateway.AuthError{Method: http.MethodGet, Path: "/files/results/1"}}
	_, err := QueryGetResult(context.Background(), GetResultQuery{ID: "1"}, GetResultDeps{Gateway: gw})
	if !errors.Is(err, gateway.ErrUnauthorized) || errors.Is(err, ErrResultNotFound) {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
}
