package service

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	maxAnswerRetries    = 5
	defaultSessionLimit = 50
	maxSessionLimit     = 200
)

// InsightGenerator produces the insight of a completed session
type InsightGenerator interface {
	Generate(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error)
}

// SessionService runs patients through a template version
type SessionService struct {
	sessions    repository.SessionRepo
	templates   *TemplateService
	auth        *AuthService
	rules       engine.Rules
	broadcaster Broadcaster
	publisher   Publisher
	insights    InsightGenerator
	logger      *slog.Logger
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions repository.SessionRepo,
	templates *TemplateService,
	auth *AuthService,
	rules engine.Rules,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		templates: templates,
		auth:      auth,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetPublisher sets the event publisher
func (s *SessionService) SetPublisher(p Publisher) {
	s.publisher = p
}

// SetInsightGenerator sets the generator run when a session completes
func (s *SessionService) SetInsightGenerator(g InsightGenerator) {
	s.insights = g
}

// Start creates a session pinned to the latest template version. A template
// with nothing to ask up front yields a session that is already completed
func (s *SessionService) Start(ctx context.Context, tenantID, userID string, req *model.StartSessionRequest) (*model.StartSessionResponse, error) {
	if req == nil || req.TemplateID == "" {
		return nil, fmt.Errorf("%w: templateId is required", ErrInvalidInput)
	}
	tpl, err := s.templates.Get(ctx, tenantID, req.TemplateID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	next := engine.Select(tpl.Schema, engine.AnswerSet{}, s.rules.Deepening)
	tr := engine.Advance(engine.StatusInProgress, next)
	session := &model.Session{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		TemplateID:      tpl.TemplateID,
		TemplateVersion: tpl.Version,
		PatientRef:      req.PatientRef,
		Status:          tr.To,
		Answers:         map[string]model.StoredAnswer{},
		Progress:        next.CompletionPercent,
		CreatedBy:       userID,
		StartedAt:       now,
		UpdatedAt:       now,
	}
	if tr.Completes {
		session.CompletedAt = &now
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.auth.GeneratePatientToken(tenantID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue patient token: %w", err)
	}

	s.logger.Info("session started",
		"session_id", session.ID,
		"template_id", tpl.TemplateID,
		"template_version", tpl.Version,
	)
	resp := &model.StartSessionResponse{Session: session, PatientToken: token, Next: next}
	if tr.Completes {
		resp.Insight = s.complete(ctx, session, 0, now)
	}
	return resp, nil
}

// Get returns a session of the tenant
func (s *SessionService) Get(ctx context.Context, tenantID, sessionID string) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

// ListByTemplate returns the most recently started sessions of a template,
// across all of its versions
func (s *SessionService) ListByTemplate(ctx context.Context, tenantID, templateID string, limit int) ([]*model.Session, error) {
	if _, err := s.templates.Get(ctx, tenantID, templateID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxSessionLimit {
		limit = defaultSessionLimit
	}
	sessions, err := s.sessions.ListByTemplate(ctx, tenantID, templateID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}
	return sessions, nil
}

// Next returns what the patient should answer now
func (s *SessionService) Next(ctx context.Context, tenantID, sessionID string) (*engine.Selection, error) {
	session, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == engine.StatusCompleted {
		return &engine.Selection{Reason: engine.ReasonCompleted, CompletionPercent: session.Progress}, nil
	}
	tpl, err := s.templates.GetVersion(ctx, tenantID, session.TemplateID, session.TemplateVersion)
	if err != nil {
		return nil, err
	}
	sel := engine.Select(tpl.Schema, session.AnswerSet(), s.rules.Deepening)
	return &sel, nil
}

// SubmitAnswer records one answer. The answer, the new progress and a
// possible transition to completed are written in a single conditional
// update; a concurrent writer causes a re-read and retry
func (s *SessionService) SubmitAnswer(ctx context.Context, tenantID, sessionID string, req *model.SubmitAnswerRequest) (*model.SubmitAnswerResponse, error) {
	if req == nil || req.QuestionID == "" {
		return nil, fmt.Errorf("%w: questionId is required", ErrInvalidInput)
	}

	for attempt := 0; attempt < maxAnswerRetries; attempt++ {
		session, err := s.Get(ctx, tenantID, sessionID)
		if err != nil {
			return nil, err
		}
		if session.Status == engine.StatusCompleted {
			return nil, ErrSessionCompleted
		}
		tpl, err := s.templates.GetVersion(ctx, tenantID, session.TemplateID, session.TemplateVersion)
		if err != nil {
			return nil, err
		}

		question, ok := s.lookupQuestion(tpl.Schema, session.AnswerSet(), req.QuestionID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, req.QuestionID)
		}
		value, err := engine.DecodeAnswer(question, req.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		if engine.IsEmpty(value) {
			return nil, fmt.Errorf("%w: empty answer", ErrInvalidAnswer)
		}

		answers := session.AnswerSet().With(question.ID, value)
		sel := engine.Select(tpl.Schema, answers, s.rules.Deepening)
		tr := engine.Advance(session.Status, sel)
		if tr.Rejected {
			return nil, ErrSessionCompleted
		}

		now := s.now().UTC()
		applied, err := s.sessions.ApplyAnswer(ctx, tenantID, sessionID, session.Version, repository.AnswerWrite{
			QuestionID: question.ID,
			Answer:     model.NewStoredAnswer(value, now),
			Progress:   sel.CompletionPercent,
			Status:     tr.To,
			At:         now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save answer: %w", err)
		}
		if !applied {
			s.logger.Debug("answer write lost a race, retrying", "session_id", sessionID, "attempt", attempt+1)
			continue
		}

		resp := &model.SubmitAnswerResponse{SessionID: sessionID, Status: tr.To, Next: sel}
		s.afterAnswer(ctx, session, question.ID, len(answers), resp, tr, now)
		return resp, nil
	}
	return nil, ErrConcurrentUpdate
}

// lookupQuestion finds id among the schema questions. A deepening question
// is accepted only while the selector offers it or once it was answered
func (s *SessionService) lookupQuestion(schema engine.Schema, answers engine.AnswerSet, id string) (engine.Question, bool) {
	if q, ok := schema.Question(id); ok {
		return q, true
	}
	if _, ok := answers[id]; !ok {
		sel := engine.Select(schema, answers, s.rules.Deepening)
		if sel.NextQuestion == nil || sel.NextQuestion.ID != id {
			return engine.Question{}, false
		}
	}
	for _, rule := range s.rules.Deepening {
		if rule.Question.ID == id {
			return rule.Question, true
		}
	}
	return engine.Question{}, false
}

func (s *SessionService) afterAnswer(ctx context.Context, session *model.Session, questionID string, answerCount int, resp *model.SubmitAnswerResponse, tr engine.Transition, at time.Time) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(session.ID, MsgAnswerRecorded, map[string]interface{}{
			"sessionId":         session.ID,
			"questionId":        questionID,
			"completionPercent": resp.Next.CompletionPercent,
			"next":              resp.Next.NextQuestion,
		})
	}
	if tr.Completes {
		resp.Insight = s.complete(ctx, session, answerCount, at)
	}
}

// complete announces a finished session and generates its insight. A failed
// generation is logged and returns nil; the insight can be requested later
func (s *SessionService) complete(ctx context.Context, session *model.Session, answerCount int, at time.Time) *engine.Insight {
	s.logger.Info("session completed", "session_id", session.ID, "answers", answerCount)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(session.ID, MsgSessionCompleted, map[string]interface{}{
			"sessionId": session.ID,
		})
	}
	if s.publisher != nil {
		event := model.SessionCompletedEvent{
			EventID:         uuid.NewString(),
			TenantID:        session.TenantID,
			SessionID:       session.ID,
			TemplateID:      session.TemplateID,
			TemplateVersion: session.TemplateVersion,
			AnswerCount:     answerCount,
			CompletedAt:     at,
		}
		if err := s.publisher.Publish(ctx, model.EventSessionCompleted, event); err != nil {
			s.logger.Error("failed to publish event", "event", model.EventSessionCompleted, "session_id", session.ID, "error", err)
		}
	}
	if s.insights == nil {
		return nil
	}
	rec, err := s.insights.Generate(ctx, session.TenantID, session.ID)
	if err != nil {
		s.logger.Error("insight generation failed", "session_id", session.ID, "error", err)
		return nil
	}
	insight := rec.Insight()
	return &insight
}
