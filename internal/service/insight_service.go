package service

import (
	"anamnese/internal/cache"
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// InsightService composes and stores the insight of completed sessions.
// Each session gets at most one stored insight
type InsightService struct {
	insights    repository.InsightRepo
	sessions    repository.SessionRepo
	templates   *TemplateService
	cache       cache.InsightCache
	board       cache.RiskBoardCache
	rules       engine.Rules
	group       singleflight.Group
	broadcaster Broadcaster
	publisher   Publisher
	logger      *slog.Logger
	now         func() time.Time
}

// NewInsightService creates a new insight service. cache and board may be nil
func NewInsightService(
	insights repository.InsightRepo,
	sessions repository.SessionRepo,
	templates *TemplateService,
	cache cache.InsightCache,
	board cache.RiskBoardCache,
	rules engine.Rules,
	logger *slog.Logger,
) *InsightService {
	return &InsightService{
		insights:  insights,
		sessions:  sessions,
		templates: templates,
		cache:     cache,
		board:     board,
		rules:     rules,
		logger:    logger,
		now:       time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *InsightService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetPublisher sets the event publisher
func (s *InsightService) SetPublisher(p Publisher) {
	s.publisher = p
}

// Get returns the stored insight of a session
func (s *InsightService) Get(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error) {
	rec, err := s.insights.GetBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Generate returns the session insight, composing it on first use.
// Concurrent calls for one session inside this process share a single
// computation; across processes the store keeps the first write
func (s *InsightService) Generate(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error) {
	v, err, _ := s.group.Do(tenantID+"/"+sessionID, func() (interface{}, error) {
		return s.generate(ctx, tenantID, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.InsightRecord), nil
}

func (s *InsightService) generate(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error) {
	existing, err := s.insights.GetBySession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	session, err := s.sessions.GetByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if session.Status != engine.StatusCompleted {
		return nil, ErrSessionNotCompleted
	}
	tpl, err := s.templates.GetVersion(ctx, tenantID, session.TemplateID, session.TemplateVersion)
	if err != nil {
		return nil, err
	}

	answers := session.AnswerSet()
	hash, err := AnswerHash(tpl.TemplateID, tpl.Version, answers)
	if err != nil {
		return nil, err
	}
	insight := s.compose(ctx, tenantID, hash, tpl.Schema, answers)

	rec := &model.InsightRecord{
		SessionID:       session.ID,
		TenantID:        tenantID,
		TemplateID:      tpl.TemplateID,
		TemplateVersion: tpl.Version,
		AnswerHash:      hash,
		Summary:         insight.Summary,
		Risks:           insight.Risks,
		Recommendations: insight.Recommendations,
		CreatedAt:       s.now().UTC().Truncate(time.Millisecond),
	}
	stored, created, err := s.insights.CreateIfAbsent(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to store insight: %w", err)
	}
	if created {
		s.announce(ctx, stored)
	}
	return stored, nil
}

// compose consults the look-aside cache before running the engine
func (s *InsightService) compose(ctx context.Context, tenantID, hash string, schema engine.Schema, answers engine.AnswerSet) engine.Insight {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, tenantID, hash)
		if err != nil {
			s.logger.Warn("insight cache read failed", "hash", hash, "error", err)
		} else if cached != nil {
			return *cached
		}
	}

	insight := engine.Compose(schema, answers, s.rules)

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, hash, insight); err != nil {
			s.logger.Warn("insight cache write failed", "hash", hash, "error", err)
		}
	}
	return insight
}

func (s *InsightService) announce(ctx context.Context, rec *model.InsightRecord) {
	s.logger.Info("insight generated",
		"session_id", rec.SessionID,
		"stress", rec.Risks.Stress,
		"sleep_quality", rec.Risks.SleepQuality,
		"readiness", rec.Risks.Readiness,
		"dropout_risk", rec.Risks.DropoutRisk,
	)
	if s.board != nil {
		if err := s.board.Record(ctx, rec.TenantID, rec.SessionID, rec.Risks); err != nil {
			s.logger.Warn("risk board update failed", "session_id", rec.SessionID, "error", err)
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(rec.SessionID, MsgInsightReady, rec.Insight())
	}
	if s.publisher != nil {
		event := model.InsightGeneratedEvent{
			EventID:     uuid.NewString(),
			TenantID:    rec.TenantID,
			SessionID:   rec.SessionID,
			TemplateID:  rec.TemplateID,
			Risks:       rec.Risks,
			GeneratedAt: rec.CreatedAt,
		}
		if err := s.publisher.Publish(ctx, model.EventInsightGenerated, event); err != nil {
			s.logger.Error("failed to publish event", "event", model.EventInsightGenerated, "session_id", rec.SessionID, "error", err)
		}
	}
}

// AnswerHash identifies an answer set under one template version. Map keys
// are marshalled in sorted order, so equal sets hash equally
func AnswerHash(templateID string, version int, answers engine.AnswerSet) (string, error) {
	data, err := json.Marshal(struct {
		TemplateID string                 `json:"templateId"`
		Version    int                    `json:"version"`
		Answers    map[string]interface{} `json:"answers"`
	}{templateID, version, answers.Native()})
	if err != nil {
		return "", fmt.Errorf("failed to hash answers: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
