package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/adapters/http/perf"
	"plagdesk/internal/application/listutil"
	"plagdesk/internal/application/orchestrators"
	"plagdesk/internal/application/projections"
	"plagdesk/internal/domain/result"
)

// Fallback texts when the server gives no reason.
const (
	msgDashboardFailed = "Failed to load dashboard."
	msgResultFailed    = "Failed to load result."
	msgHistoryFailed   = "Failed to load history."
	msgDeleted         = "Result deleted."
)

// handleDashboard handles GET /dashboard
func (h *handlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := projections.QueryGetDashboard(r.Context(), projections.GetDashboardDeps{
		Analytics: h.gateway,
		History:   h.gateway,
	})
	if err != nil {
		respondGatewayError(w, r, err, msgDashboardFailed)
		return
	}
	renderTemplate(w, r, "dashboard.html", d)
}

// handleResult handles GET /results/{id}
func (h *handlers) handleResult(w http.ResponseWriter, r *http.Request) {
	deps := projections.GetResultDeps{Gateway: h.gateway}
	if h.jobs != nil {
		deps.Handoff = h.jobs
	}
	d, err := projections.QueryGetResult(r.Context(), projections.GetResultQuery{ID: result.ID(r.PathValue("id"))}, deps)
	if errors.Is(err, projections.ErrResultNotFound) {
		renderTemplateStatus(w, r, http.StatusNotFound, "not_found.html", nil)
		return
	}
	if err != nil {
		respondGatewayError(w, r, err, msgResultFailed)
		return
	}
	renderTemplate(w, r, "result.html", map[string]any{
		"Detail":      d,
		"Methodology": methodologyMarkdown,
	})
}

// handleResultPDF handles GET /results/{id}/pdf
func (h *handlers) handleResultPDF(w http.ResponseWriter, r *http.Request) {
	id := result.ID(r.PathValue("id"))
	rep, err := orchestrators.ExecuteDownloadReport(r.Context(), id, orchestrators.DownloadReportDeps{Gateway: h.gateway})
	if errors.Is(err, gateway.ErrNotFound) {
		renderTemplateStatus(w, r, http.StatusNotFound, "not_found.html", nil)
		return
	}
	if err != nil {
		respondGatewayError(w, r, err, orchestrators.MsgReportFailed)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Data)))
	_, _ = w.Write(rep.Data)
}

// handleHistory handles GET /history
func (h *handlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	pp := listutil.ParsePageParams(r.URL.Query(), h.historyPerPage)
	res, err := projections.QueryGetHistory(r.Context(), projections.GetHistoryQuery{Page: pp.Page, PerPage: pp.PerPage},
		projections.GetHistoryDeps{Gateway: h.gateway})
	if err != nil {
		respondGatewayError(w, r, err, msgHistoryFailed)
		return
	}
	renderTemplate(w, r, "history.html", map[string]any{"History": res})
}

// handleHistoryDelete handles POST /history/{id}/delete. The page the form
// came from is loaded, the delete is sent, and the page is re-rendered with
// the row removed locally rather than fetched again.
func (h *handlers) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	pp := listutil.ParsePageParams(r.PostForm, h.historyPerPage)
	res, err := projections.QueryGetHistory(r.Context(), projections.GetHistoryQuery{Page: pp.Page, PerPage: pp.PerPage},
		projections.GetHistoryDeps{Gateway: h.gateway})
	if err != nil {
		respondGatewayError(w, r, err, msgHistoryFailed)
		return
	}

	data := map[string]any{}
	err = orchestrators.ExecuteDeleteResult(r.Context(), orchestrators.DeleteResultInput{
		ID:   result.ID(r.PathValue("id")),
		Page: &res.Page,
	}, orchestrators.DeleteResultDeps{Gateway: h.gateway})
	switch {
	case errors.Is(err, gateway.ErrUnauthorized):
		respondGatewayError(w, r, err, orchestrators.MsgDeleteFailed)
		return
	case err != nil:
		data["Error"] = flowMessage(err, orchestrators.MsgDeleteFailed)
	default:
		data["Flash"] = msgDeleted
		res.Info = projections.PageInfoFor(res.Page)
	}
	data["History"] = res
	renderTemplate(w, r, "history.html", data)
}

// handlePerf handles GET /perf: the last hour of request, query and upstream timings.
func (h *handlers) handlePerf(w http.ResponseWriter, r *http.Request) {
	var snap perf.Snapshot
	if h.collector != nil {
		snap = h.collector.Snapshot(time.Now().Add(-time.Hour), 10)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		internalError(w, err)
	}
}
