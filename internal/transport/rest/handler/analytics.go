package handler

import (
	"anamnese/internal/service"
	"anamnese/internal/transport/rest/middleware"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analyticsSvc *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsSvc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// TemplateStats handles GET /v1/analytics/templates/{templateId}
//
// @Summary  Session and risk aggregates of a template
// @Tags     analytics
// @Produce  json
// @Param    templateId path     string true "Template ID"
// @Success  200        {object} model.TemplateStats
// @Security BearerAuth
// @Router   /analytics/templates/{templateId} [get]
func (h *AnalyticsHandler) TemplateStats(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	stats, err := h.analyticsSvc.TemplateStats(r.Context(), staff.TenantID, mux.Vars(r)["templateId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// RiskBoard handles GET /v1/analytics/risk-board/{metric}
//
// @Summary  Completed sessions ranked by a risk metric
// @Tags     analytics
// @Produce  json
// @Param    metric path  string true  "readiness, dropoutRisk, stress or sleepQuality"
// @Param    limit  query int    false "Max entries (default 20)"
// @Success  200    {array} model.RiskBoardEntry
// @Security BearerAuth
// @Router   /analytics/risk-board/{metric} [get]
func (h *AnalyticsHandler) RiskBoard(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.analyticsSvc.RiskBoard(r.Context(), staff.TenantID, mux.Vars(r)["metric"], limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// SessionRanks handles GET /v1/analytics/sessions/{sessionId}/ranks
//
// @Summary  Position of one session on every risk board
// @Tags     analytics
// @Produce  json
// @Param    sessionId path     string true "Session ID"
// @Success  200       {object} model.SessionRanks
// @Failure  404       {object} ErrorResponse
// @Security BearerAuth
// @Router   /analytics/sessions/{sessionId}/ranks [get]
func (h *AnalyticsHandler) SessionRanks(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	ranks, err := h.analyticsSvc.SessionRanks(r.Context(), staff.TenantID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ranks)
}
