package service

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"context"
	"errors"
	"testing"
)

func newAnalyticsFixture(t *testing.T) (*AnalyticsService, *harness, *fakeAnalyticsRepo, *fakeAnalyticsCache) {
	t.Helper()
	h := newHarness(t, stressSchema())
	repo := &fakeAnalyticsRepo{stats: &model.TemplateStats{
		TenantID:   testTenant,
		TemplateID: h.template.TemplateID,
		Total:      4,
		Completed:  3,
		InProgress: 1,
	}}
	cache := &fakeAnalyticsCache{}
	svc := NewAnalyticsService(repo, cache, h.board, h.templates, discardLogger())
	return svc, h, repo, cache
}

func TestTemplateStatsComputesOnceAndSnapshots(t *testing.T) {
	svc, h, repo, _ := newAnalyticsFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		stats, err := svc.TemplateStats(ctx, testTenant, h.template.TemplateID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Total != 4 || stats.Completed != 3 {
			t.Fatalf("unexpected stats %+v", stats)
		}
	}
	if repo.computes != 1 {
		t.Fatalf("expected the second call to hit the cache, got %d computes", repo.computes)
	}
	if repo.saved != 1 || repo.snapshot == nil {
		t.Fatalf("expected a saved snapshot, got %d saves", repo.saved)
	}
}

func TestTemplateStatsFallsBackToSnapshot(t *testing.T) {
	svc, h, repo, cache := newAnalyticsFixture(t)
	ctx := context.Background()

	if _, err := svc.TemplateStats(ctx, testTenant, h.template.TemplateID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.Invalidate(ctx, testTenant, h.template.TemplateID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.err = errBoom
	stats, err := svc.TemplateStats(ctx, testTenant, h.template.TemplateID)
	if err != nil {
		t.Fatalf("expected stale snapshot, got %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("unexpected snapshot %+v", stats)
	}

	repo.snapshot = nil
	cache.items = nil
	if _, err := svc.TemplateStats(ctx, testTenant, h.template.TemplateID); !errors.Is(err, errBoom) {
		t.Fatalf("expected compute error without snapshot, got %v", err)
	}
}

func TestTemplateStatsUnknownTemplate(t *testing.T) {
	svc, _, repo, _ := newAnalyticsFixture(t)
	if _, err := svc.TemplateStats(context.Background(), testTenant, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if repo.computes != 0 {
		t.Fatalf("unknown templates must not be aggregated")
	}
}

func TestRiskBoard(t *testing.T) {
	svc, h, _, _ := newAnalyticsFixture(t)
	ctx := context.Background()
	h.board.top = []model.RiskBoardEntry{
		{SessionID: "s1", Score: 90, Rank: 1},
		{SessionID: "s2", Score: 70, Rank: 2},
		{SessionID: "s3", Score: 10, Rank: 3},
	}

	tests := []struct {
		name    string
		metric  string
		limit   int
		want    int
		wantErr error
	}{
		{"default limit", "stress", 0, 3, nil},
		{"limited", "dropoutRisk", 2, 2, nil},
		{"limit above max falls back", "sleepQuality", 500, 3, nil},
		{"unknown metric", "happiness", 5, 0, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.RiskBoard(ctx, testTenant, tt.metric, tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if err == nil && len(entries) != tt.want {
				t.Fatalf("expected %d entries, got %d", tt.want, len(entries))
			}
		})
	}

	h.board.err = errBoom
	if _, err := svc.RiskBoard(ctx, testTenant, "stress", 5); !errors.Is(err, errBoom) {
		t.Fatalf("expected board error, got %v", err)
	}
}

func TestSessionRanks(t *testing.T) {
	svc, h, _, _ := newAnalyticsFixture(t)
	ctx := context.Background()
	h.board.recorded = map[string]engine.Risks{
		"s1": {Readiness: 80, DropoutRisk: 10, Stress: 20, SleepQuality: 70},
		"s2": {Readiness: 40, DropoutRisk: 60, Stress: 95, SleepQuality: 30},
		"s3": {Readiness: 60, DropoutRisk: 60, Stress: 50, SleepQuality: 90},
	}

	ranks, err := svc.SessionRanks(ctx, testTenant, "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int64{"readiness": 3, "dropoutRisk": 2, "stress": 1, "sleepQuality": 3}
	if ranks.SessionID != "s2" || len(ranks.Ranks) != len(want) {
		t.Fatalf("unexpected ranks %+v", ranks)
	}
	for metric, rank := range want {
		if ranks.Ranks[metric] != rank {
			t.Errorf("%s: expected rank %d, got %d", metric, rank, ranks.Ranks[metric])
		}
	}

	if _, err := svc.SessionRanks(ctx, testTenant, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a session on no board, got %v", err)
	}

	h.board.err = errBoom
	if _, err := svc.SessionRanks(ctx, testTenant, "s2"); !errors.Is(err, errBoom) {
		t.Fatalf("expected board error, got %v", err)
	}
}
