package service

import (
	"anamnese/internal/cache"
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateService manages versioned questionnaire templates
type TemplateService struct {
	repo   repository.TemplateRepo
	cache  cache.TemplateCache
	logger *slog.Logger
	now    func() time.Time
}

// NewTemplateService creates a new template service. cache may be nil
func NewTemplateService(repo repository.TemplateRepo, cache cache.TemplateCache, logger *slog.Logger) *TemplateService {
	return &TemplateService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores version 1 of a new template
func (s *TemplateService) Create(ctx context.Context, tenantID, userID string, req *model.TemplateRequest) (*model.TemplateResponse, error) {
	if err := validateTemplate(req); err != nil {
		return nil, err
	}
	tpl := &model.Template{
		ID:          uuid.NewString(),
		TemplateID:  uuid.NewString(),
		TenantID:    tenantID,
		Version:     1,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Schema:      req.Schema,
		CreatedBy:   userID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return s.respond(tpl), nil
}

// Update stores a new version of an existing template. Earlier versions and
// the sessions pinned to them are untouched
func (s *TemplateService) Update(ctx context.Context, tenantID, userID, templateID string, req *model.TemplateRequest) (*model.TemplateResponse, error) {
	if err := validateTemplate(req); err != nil {
		return nil, err
	}
	latest, err := s.repo.GetLatest(ctx, tenantID, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if latest == nil {
		return nil, ErrNotFound
	}

	tpl := &model.Template{
		ID:          uuid.NewString(),
		TemplateID:  latest.TemplateID,
		TenantID:    tenantID,
		Version:     latest.Version + 1,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Schema:      req.Schema,
		CreatedBy:   userID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("failed to create template version: %w", err)
	}
	return s.respond(tpl), nil
}

func (s *TemplateService) respond(tpl *model.Template) *model.TemplateResponse {
	warnings := tpl.Schema.Lint()
	if len(warnings) > 0 {
		s.logger.Warn("template schema has lint warnings",
			"template_id", tpl.TemplateID,
			"version", tpl.Version,
			"warnings", warnings,
		)
	}
	return &model.TemplateResponse{Template: tpl, Warnings: warnings}
}

// Get returns the latest version of a template
func (s *TemplateService) Get(ctx context.Context, tenantID, templateID string) (*model.Template, error) {
	tpl, err := s.repo.GetLatest(ctx, tenantID, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if tpl == nil {
		return nil, ErrNotFound
	}
	return tpl, nil
}

// GetVersion returns a pinned template version, served from cache when possible
func (s *TemplateService) GetVersion(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error) {
	if s.cache != nil {
		tpl, err := s.cache.Get(ctx, tenantID, templateID, version)
		if err != nil {
			s.logger.Warn("template cache read failed", "template_id", templateID, "error", err)
		} else if tpl != nil {
			return tpl, nil
		}
	}

	tpl, err := s.repo.GetVersion(ctx, tenantID, templateID, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get template version: %w", err)
	}
	if tpl == nil {
		return nil, ErrNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tpl); err != nil {
			s.logger.Warn("template cache write failed", "template_id", templateID, "error", err)
		}
	}
	return tpl, nil
}

// List returns the latest version of every template of the tenant
func (s *TemplateService) List(ctx context.Context, tenantID string) ([]*model.Template, error) {
	templates, err := s.repo.ListLatest(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	if templates == nil {
		templates = []*model.Template{}
	}
	return templates, nil
}

func validateTemplate(req *model.TemplateRequest) error {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(req.Schema.Questions))
	for i, q := range req.Schema.Questions {
		if q.ID == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidInput, i)
		}
		// ids become document field names
		if strings.ContainsAny(q.ID, ".$") {
			return fmt.Errorf("%w: question id %q may not contain '.' or '$'", ErrInvalidInput, q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidInput, q.ID)
		}
		seen[q.ID] = true
		switch q.Type {
		case engine.TypeText, engine.TypeNumber, engine.TypeSingle, engine.TypeMultiple:
		default:
			return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidInput, q.ID, q.Type)
		}
	}
	return nil
}
