package handler

import (
	"anamnese/internal/model"
	"anamnese/internal/service"
	"anamnese/internal/transport/rest/middleware"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// TemplateHandler handles template endpoints
type TemplateHandler struct {
	templateSvc *service.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateSvc *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateSvc: templateSvc}
}

// Create handles POST /v1/templates
//
// @Summary  Create a template
// @Tags     templates
// @Accept   json
// @Produce  json
// @Param    body body     model.TemplateRequest true "Template"
// @Success  201  {object} model.TemplateResponse
// @Failure  400  {object} ErrorResponse
// @Security BearerAuth
// @Router   /templates [post]
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	var req model.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.templateSvc.Create(r.Context(), staff.TenantID, staff.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /v1/templates
//
// @Summary  List templates (latest versions)
// @Tags     templates
// @Produce  json
// @Success  200 {array} model.Template
// @Security BearerAuth
// @Router   /templates [get]
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())

	templates, err := h.templateSvc.List(r.Context(), staff.TenantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

// Get handles GET /v1/templates/{templateId}
//
// @Summary  Get a template, latest or ?version=N
// @Tags     templates
// @Produce  json
// @Param    templateId path     string true  "Template ID"
// @Param    version    query    int    false "Version"
// @Success  200        {object} model.Template
// @Failure  404        {object} ErrorResponse
// @Security BearerAuth
// @Router   /templates/{templateId} [get]
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())
	templateID := mux.Vars(r)["templateId"]

	var (
		tpl *model.Template
		err error
	)
	if v := r.URL.Query().Get("version"); v != "" {
		version, convErr := strconv.Atoi(v)
		if convErr != nil || version < 1 {
			writeError(w, http.StatusBadRequest, "invalid version")
			return
		}
		tpl, err = h.templateSvc.GetVersion(r.Context(), staff.TenantID, templateID, version)
	} else {
		tpl, err = h.templateSvc.Get(r.Context(), staff.TenantID, templateID)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tpl)
}

// Update handles PUT /v1/templates/{templateId}
//
// @Summary  Publish a new template version
// @Tags     templates
// @Accept   json
// @Produce  json
// @Param    templateId path     string                true "Template ID"
// @Param    body       body     model.TemplateRequest true "Template"
// @Success  200        {object} model.TemplateResponse
// @Failure  404        {object} ErrorResponse
// @Security BearerAuth
// @Router   /templates/{templateId} [put]
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	staff := middleware.GetStaff(r.Context())
	templateID := mux.Vars(r)["templateId"]

	var req model.TemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.templateSvc.Update(r.Context(), staff.TenantID, staff.UserID, templateID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
