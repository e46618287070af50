package model

import (
	"time"

	"anamnese/internal/engine"
)

// Queue names for published events
const (
	EventSessionCompleted = "session.completed"
	EventInsightGenerated = "insight.generated"
)

// SessionCompletedEvent is published once a session reaches completed
type SessionCompletedEvent struct {
	EventID         string    `json:"eventId"`
	TenantID        string    `json:"tenantId"`
	SessionID       string    `json:"sessionId"`
	TemplateID      string    `json:"templateId"`
	TemplateVersion int       `json:"templateVersion"`
	AnswerCount     int       `json:"answerCount"`
	CompletedAt     time.Time `json:"completedAt"`
}

// InsightGeneratedEvent is published when an insight is first stored
type InsightGeneratedEvent struct {
	EventID     string       `json:"eventId"`
	TenantID    string       `json:"tenantId"`
	SessionID   string       `json:"sessionId"`
	TemplateID  string       `json:"templateId"`
	Risks       engine.Risks `json:"risks"`
	GeneratedAt time.Time    `json:"generatedAt"`
}
