package handler

import (
	"anamnese/internal/model"
	"anamnese/internal/service"
	"anamnese/internal/transport/rest/middleware"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// SessionHandler handles staff-facing session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	insightSvc *service.InsightService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, insightSvc *service.InsightService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		insightSvc: insightSvc,
	}
}

// Start handles POST /v1/sessions
//
// @Summary  Start a session on the latest template version
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    body body     model.StartSessionRequest true "Session"
// @Success  201  {object} model.StartSessionResponse
// @Failure  404  {object} ErrorResponse
// @Security BearerAuth
// @Router   /sessions [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	var req model.StartSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.sessionSvc.Start(r.Context(), staff.TenantID, staff.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListByTemplate handles GET /v1/templates/{templateId}/sessions
//
// @Summary  Most recent sessions of a template
// @Tags     sessions
// @Produce  json
// @Param    templateId path  string true  "Template ID"
// @Param    limit      query int    false "Max sessions (default 50, max 200)"
// @Success  200        {array} model.Session
// @Failure  404        {object} ErrorResponse
// @Security BearerAuth
// @Router   /templates/{templateId}/sessions [get]
func (h *SessionHandler) ListByTemplate(w http.ResponseWriter, r *http.Request) {
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

	sessions, err := h.sessionSvc.ListByTemplate(r.Context(), staff.TenantID, mux.Vars(r)["templateId"], limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

// Get handles GET /v1/sessions/{sessionId}
//
// @Summary  Get a session with its answers
// @Tags     sessions
// @Produce  json
// @Param    sessionId path     string true "Session ID"
// @Success  200       {object} model.Session
// @Failure  404       {object} ErrorResponse
// @Security BearerAuth
// @Router   /sessions/{sessionId} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	session, err := h.sessionSvc.Get(r.Context(), staff.TenantID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Next handles GET /v1/sessions/{sessionId}/next
//
// @Summary  Next question of a session
// @Tags     sessions
// @Produce  json
// @Param    sessionId path     string true "Session ID"
// @Success  200       {object} engine.Selection
// @Security BearerAuth
// @Router   /sessions/{sessionId}/next [get]
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	sel, err := h.sessionSvc.Next(r.Context(), staff.TenantID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sel)
}

// SubmitAnswer handles POST /v1/sessions/{sessionId}/answers
//
// @Summary  Record an answer on behalf of the patient
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Param    sessionId path     string                    true "Session ID"
// @Param    body      body     model.SubmitAnswerRequest true "Answer"
// @Success  200       {object} model.SubmitAnswerResponse
// @Failure  409       {object} ErrorResponse
// @Failure  422       {object} ErrorResponse
// @Security BearerAuth
// @Router   /sessions/{sessionId}/answers [post]
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())
	submitAnswer(w, r, h.sessionSvc, staff.TenantID, mux.Vars(r)["sessionId"])
}

// GenerateInsight handles POST /v1/sessions/{sessionId}/insight
//
// @Summary  Generate (or fetch) the insight of a completed session
// @Tags     insights
// @Produce  json
// @Param    sessionId path     string true "Session ID"
// @Success  200       {object} model.InsightRecord
// @Failure  409       {object} ErrorResponse
// @Security BearerAuth
// @Router   /sessions/{sessionId}/insight [post]
func (h *SessionHandler) GenerateInsight(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	rec, err := h.insightSvc.Generate(r.Context(), staff.TenantID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// GetInsight handles GET /v1/sessions/{sessionId}/insight
//
// @Summary  Stored insight of a session
// @Tags     insights
// @Produce  json
// @Param    sessionId path     string true "Session ID"
// @Success  200       {object} model.InsightRecord
// @Failure  404       {object} ErrorResponse
// @Security BearerAuth
// @Router   /sessions/{sessionId}/insight [get]
func (h *SessionHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	rec, err := h.insightSvc.Get(r.Context(), staff.TenantID, mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func submitAnswer(w http.ResponseWriter, r *http.Request, svc *service.SessionService, tenantID, sessionID string) {
	var req model.SubmitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := svc.SubmitAnswer(r.Context(), tenantID, sessionID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
