package handler

import (
	"anamnese/internal/service"
	"anamnese/internal/transport/rest/middleware"
	"net/http"
)

// PatientHandler serves the patient's own session; the session comes from
// the token, never from the URL
type PatientHandler struct {
	sessionSvc *service.SessionService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(sessionSvc *service.SessionService) *PatientHandler {
	return &PatientHandler{sessionSvc: sessionSvc}
}

// Next handles GET /v1/patient/session/next
//
// @Summary  Next question for the patient
// @Tags     patient
// @Produce  json
// @Success  200 {object} engine.Selection
// @Security BearerAuth
// @Router   /patient/session/next [get]
func (h *PatientHandler) Next(w http.ResponseWriter, r *http.Request) {
	patient := middleware.GetPatient(r.Context())

	sel, err := h.sessionSvc.Next(r.Context(), patient.TenantID, patient.SessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sel)
}

// SubmitAnswer handles POST /v1/patient/session/answers
//
// @Summary  Answer the current question
// @Tags     patient
// @Accept   json
// @Produce  json
// @Param    body body     model.SubmitAnswerRequest true "Answer"
// @Success  200  {object} model.SubmitAnswerResponse
// @Failure  409  {object} ErrorResponse
// @Failure  422  {object} ErrorResponse
// @Security BearerAuth
// @Router   /patient/session/answers [post]
func (h *PatientHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	patient := middleware.GetPatient(r.Context())
	submitAnswer(w, r, h.sessionSvc, patient.TenantID, patient.SessionID)
}
