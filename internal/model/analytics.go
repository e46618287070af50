package model

import (
	"time"

	"anamnese/internal/engine"
)

// TemplateStats aggregates sessions and insights of one template
type TemplateStats struct {
	TenantID       string       `json:"tenantId" bson:"tenantId"`
	TemplateID     string       `json:"templateId" bson:"templateId"`
	Total          int          `json:"total" bson:"total"`
	InProgress     int          `json:"inProgress" bson:"inProgress"`
	Completed      int          `json:"completed" bson:"completed"`
	CompletionRate float64      `json:"completionRate" bson:"completionRate"` // 0-1
	InsightCount   int          `json:"insightCount" bson:"insightCount"`
	AvgRisks       engine.Risks `json:"avgRisks" bson:"avgRisks"`
	UpdatedAt      time.Time    `json:"updatedAt" bson:"updatedAt"`
}

// RiskBoardEntry is one session ranked by a risk metric
type RiskBoardEntry struct {
	SessionID string `json:"sessionId"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}

// SessionRanks holds the 1-indexed position of one session on each risk
// board it appears on
type SessionRanks struct {
	SessionID string           `json:"sessionId"`
	Ranks     map[string]int64 `json:"ranks"`
}
