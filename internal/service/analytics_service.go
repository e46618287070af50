package service

import (
	"anamnese/internal/cache"
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"fmt"
	"log/slog"
)

const defaultBoardLimit = 20

// AnalyticsService serves per-template stats and the risk board
type AnalyticsService struct {
	repo      repository.AnalyticsRepo
	cache     cache.AnalyticsCache
	board     cache.RiskBoardCache
	templates *TemplateService
	logger    *slog.Logger
}

// NewAnalyticsService creates a new analytics service. cache may be nil
func NewAnalyticsService(
	repo repository.AnalyticsRepo,
	cache cache.AnalyticsCache,
	board cache.RiskBoardCache,
	templates *TemplateService,
	logger *slog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		repo:      repo,
		cache:     cache,
		board:     board,
		templates: templates,
		logger:    logger,
	}
}

// TemplateStats returns cached stats, recomputing them when the cache is
// cold. If the aggregation fails the last saved snapshot is served
func (s *AnalyticsService) TemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	if _, err := s.templates.Get(ctx, tenantID, templateID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		stats, err := s.cache.GetTemplateStats(ctx, tenantID, templateID)
		if err != nil {
			s.logger.Warn("analytics cache read failed", "template_id", templateID, "error", err)
		} else if stats != nil {
			return stats, nil
		}
	}

	stats, err := s.repo.ComputeTemplateStats(ctx, tenantID, templateID)
	if err != nil {
		snapshot, snapErr := s.repo.GetSnapshot(ctx, tenantID, templateID)
		if snapErr == nil && snapshot != nil {
			s.logger.Warn("serving stale template stats", "template_id", templateID, "error", err)
			return snapshot, nil
		}
		return nil, fmt.Errorf("failed to compute template stats: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetTemplateStats(ctx, stats); err != nil {
			s.logger.Warn("analytics cache write failed", "template_id", templateID, "error", err)
		}
	}
	if err := s.repo.SaveSnapshot(ctx, stats); err != nil {
		s.logger.Warn("failed to save stats snapshot", "template_id", templateID, "error", err)
	}
	return stats, nil
}

// RiskBoard lists the tenant's completed sessions with the highest value of
// metric
func (s *AnalyticsService) RiskBoard(ctx context.Context, tenantID, metric string, limit int) ([]model.RiskBoardEntry, error) {
	key := engine.RiskKey(metric)
	if !key.Valid() {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidInput, metric)
	}
	if limit <= 0 || limit > 100 {
		limit = defaultBoardLimit
	}
	entries, err := s.board.GetTop(ctx, tenantID, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read risk board: %w", err)
	}
	if entries == nil {
		entries = []model.RiskBoardEntry{}
	}
	return entries, nil
}

// SessionRanks reports where a session stands on every risk board. Sessions
// that never produced an insight are on no board and give ErrNotFound
func (s *AnalyticsService) SessionRanks(ctx context.Context, tenantID, sessionID string) (*model.SessionRanks, error) {
	ranks := &model.SessionRanks{
		SessionID: sessionID,
		Ranks:     make(map[string]int64, len(engine.RiskKeys)),
	}
	for _, key := range engine.RiskKeys {
		rank, err := s.board.GetRank(ctx, tenantID, key, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to read risk board: %w", err)
		}
		if rank > 0 {
			ranks.Ranks[string(key)] = rank
		}
	}
	if len(ranks.Ranks) == 0 {
		return nil, ErrNotFound
	}
	return ranks, nil
}
