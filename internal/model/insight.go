package model

import (
	"time"

	"anamnese/internal/engine"
)

// InsightRecord is the stored insight of a completed session. SessionID is
// unique; the first writer wins
type InsightRecord struct {
	SessionID       string       `json:"sessionId" bson:"_id"`
	TenantID        string       `json:"tenantId" bson:"tenantId"`
	TemplateID      string       `json:"templateId" bson:"templateId"`
	TemplateVersion int          `json:"templateVersion" bson:"templateVersion"`
	AnswerHash      string       `json:"answerHash" bson:"answerHash"`
	Summary         string       `json:"summary" bson:"summary"`
	Risks           engine.Risks `json:"risks" bson:"risks"`
	Recommendations []string     `json:"recommendations" bson:"recommendations"`
	CreatedAt       time.Time    `json:"createdAt" bson:"createdAt"`
}

// Insight returns the engine view of the record
func (r *InsightRecord) Insight() engine.Insight {
	return engine.Insight{Summary: r.Summary, Risks: r.Risks, Recommendations: r.Recommendations}
}
