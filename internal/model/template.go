package model

import (
	"time"

	"anamnese/internal/engine"
)

// Template is one immutable version of a questionnaire. Every update is
// stored as a new document with Version+1 under the same TemplateID
type Template struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	TemplateID  string        `json:"templateId" bson:"templateId"`
	TenantID    string        `json:"tenantId" bson:"tenantId"`
	Version     int           `json:"version" bson:"version"`
	Name        string        `json:"name" bson:"name"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Schema      engine.Schema `json:"schema" bson:"schema"`
	CreatedBy   string        `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
}

// TemplateRequest is the body for creating or updating a template
type TemplateRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Schema      engine.Schema `json:"schema"`
}

// TemplateResponse wraps a template with its lint warnings
type TemplateResponse struct {
	Template *Template `json:"template"`
	Warnings []string  `json:"warnings,omitempty"`
}
