package model

import (
	"encoding/json"
	"time"

	"anamnese/internal/engine"
)

// Answer kinds as stored in MongoDB
const (
	KindText        = "text"
	KindNumber      = "number"
	KindChoice      = "choice"
	KindMultiChoice = "multi_choice"
)

// StoredAnswer is the persisted form of engine.AnswerValue
type StoredAnswer struct {
	Kind       string    `json:"kind" bson:"kind"`
	Text       string    `json:"text,omitempty" bson:"text,omitempty"`
	Number     float64   `json:"number,omitempty" bson:"number,omitempty"`
	Choices    []string  `json:"choices,omitempty" bson:"choices,omitempty"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
}

// NewStoredAnswer converts an engine answer for storage
func NewStoredAnswer(v engine.AnswerValue, at time.Time) StoredAnswer {
	sa := StoredAnswer{AnsweredAt: at}
	switch a := v.(type) {
	case engine.Text:
		sa.Kind, sa.Text = KindText, string(a)
	case engine.Choice:
		sa.Kind, sa.Text = KindChoice, string(a)
	case engine.Number:
		sa.Kind, sa.Number = KindNumber, float64(a)
	case engine.MultiChoice:
		sa.Kind, sa.Choices = KindMultiChoice, []string(a)
	default:
		sa.Kind = KindText
	}
	return sa
}

// Value converts back to the engine representation
func (a StoredAnswer) Value() engine.AnswerValue {
	switch a.Kind {
	case KindNumber:
		return engine.Number(a.Number)
	case KindChoice:
		return engine.Choice(a.Text)
	case KindMultiChoice:
		return engine.MultiChoice(a.Choices)
	default:
		return engine.Text(a.Text)
	}
}

// Session is one patient's run through a pinned template version. Answers
// live inside the document so an answer and a status change are written
// together
type Session struct {
	ID              string                  `json:"id" bson:"_id"`
	TenantID        string                  `json:"tenantId" bson:"tenantId"`
	TemplateID      string                  `json:"templateId" bson:"templateId"`
	TemplateVersion int                     `json:"templateVersion" bson:"templateVersion"`
	PatientRef      string                  `json:"patientRef,omitempty" bson:"patientRef,omitempty"`
	Status          engine.Status           `json:"status" bson:"status"`
	Answers         map[string]StoredAnswer `json:"answers" bson:"answers"`
	Progress        int                     `json:"progress" bson:"progress"`
	Version         int64                   `json:"version" bson:"version"`
	CreatedBy       string                  `json:"createdBy" bson:"createdBy"`
	StartedAt       time.Time               `json:"startedAt" bson:"startedAt"`
	UpdatedAt       time.Time               `json:"updatedAt" bson:"updatedAt"`
	CompletedAt     *time.Time              `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// AnswerSet returns the session answers in engine form
func (s *Session) AnswerSet() engine.AnswerSet {
	set := make(engine.AnswerSet, len(s.Answers))
	for id, a := range s.Answers {
		set[id] = a.Value()
	}
	return set
}

// StartSessionRequest is the body for starting a session
type StartSessionRequest struct {
	TemplateID string `json:"templateId"`
	PatientRef string `json:"patientRef"`
}

// StartSessionResponse carries the new session, its patient token and the
// first question
type StartSessionResponse struct {
	Session      *Session         `json:"session"`
	PatientToken string           `json:"patientToken"`
	Next         engine.Selection `json:"next"`
	Insight      *engine.Insight  `json:"insight,omitempty"`
}

// SubmitAnswerRequest is the body for answering a question
type SubmitAnswerRequest struct {
	QuestionID string          `json:"questionId"`
	Value      json.RawMessage `json:"value"`
}

// SubmitAnswerResponse reports the session state after an answer
type SubmitAnswerResponse struct {
	SessionID string           `json:"sessionId"`
	Status    engine.Status    `json:"status"`
	Next      engine.Selection `json:"next"`
	Insight   *engine.Insight  `json:"insight,omitempty"`
}
