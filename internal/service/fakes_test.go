package service

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates []*model.Template
	reads     int
}

func (r *fakeTemplateRepo) Create(ctx context.Context, tpl *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.TenantID == tpl.TenantID && t.TemplateID == tpl.TemplateID && t.Version == tpl.Version {
			return repository.ErrDuplicate
		}
	}
	cp := *tpl
	r.templates = append(r.templates, &cp)
	return nil
}

func (r *fakeTemplateRepo) GetLatest(ctx context.Context, tenantID, templateID string) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	var latest *model.Template
	for _, t := range r.templates {
		if t.TenantID == tenantID && t.TemplateID == templateID && (latest == nil || t.Version > latest.Version) {
			latest = t
		}
	}
	return latest, nil
}

func (r *fakeTemplateRepo) GetVersion(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	for _, t := range r.templates {
		if t.TenantID == tenantID && t.TemplateID == templateID && t.Version == version {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTemplateRepo) ListLatest(ctx context.Context, tenantID string) ([]*model.Template, error) {
	r.mu.Lock()
	latest := map[string]*model.Template{}
	for _, t := range r.templates {
		if t.TenantID != tenantID {
			continue
		}
		if cur, ok := latest[t.TemplateID]; !ok || t.Version > cur.Version {
			latest[t.TemplateID] = t
		}
	}
	r.mu.Unlock()
	var out []*model.Template
	for _, t := range latest {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeTemplateCache struct {
	mu    sync.Mutex
	items map[string]*model.Template
}

func (c *fakeTemplateCache) Get(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[fmt.Sprintf("%s/%s/%d", tenantID, templateID, version)], nil
}

func (c *fakeTemplateCache) Set(ctx context.Context, tpl *model.Template) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string]*model.Template{}
	}
	c.items[fmt.Sprintf("%s/%s/%d", tpl.TenantID, tpl.TemplateID, tpl.Version)] = tpl
	return nil
}

// fakeSessionRepo applies answers with the same conditional semantics as
// the MongoDB update: in_progress and matching version, or nothing
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	// beforeApply runs before each ApplyAnswer under the lock
	beforeApply func(s *model.Session)
	applies     int
	lastLimit   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.Session{}}
}

func copySession(s *model.Session) *model.Session {
	cp := *s
	cp.Answers = make(map[string]model.StoredAnswer, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = copySession(s)
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, tenantID, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	return copySession(s), nil
}

func (r *fakeSessionRepo) ApplyAnswer(ctx context.Context, tenantID, id string, expectedVersion int64, w repository.AnswerWrite) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applies++
	s, ok := r.sessions[id]
	if !ok || s.TenantID != tenantID {
		return false, nil
	}
	if r.beforeApply != nil {
		r.beforeApply(s)
	}
	if s.Status != engine.StatusInProgress || s.Version != expectedVersion {
		return false, nil
	}
	s.Answers[w.QuestionID] = w.Answer
	s.Progress = w.Progress
	s.Status = w.Status
	s.UpdatedAt = w.At
	if w.Status == engine.StatusCompleted {
		at := w.At
		s.CompletedAt = &at
	}
	s.Version++
	return true, nil
}

func (r *fakeSessionRepo) ListByTemplate(ctx context.Context, tenantID, templateID string, limit int64) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	var out []*model.Session
	for _, s := range r.sessions {
		if s.TenantID == tenantID && s.TemplateID == templateID {
			out = append(out, copySession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeInsightRepo struct {
	mu      sync.Mutex
	records map[string]*model.InsightRecord
	creates int
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{records: map[string]*model.InsightRecord{}}
}

func (r *fakeInsightRepo) GetBySession(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[sessionID]
	if !ok || rec.TenantID != tenantID {
		return nil, nil
	}
	return rec, nil
}

func (r *fakeInsightRepo) CreateIfAbsent(ctx context.Context, rec *model.InsightRecord) (*model.InsightRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.records[rec.SessionID]; ok {
		return existing, false, nil
	}
	r.creates++
	r.records[rec.SessionID] = rec
	return rec, true, nil
}

type fakeInsightCache struct {
	mu    sync.Mutex
	items map[string]engine.Insight
	sets  int
}

func (c *fakeInsightCache) Get(ctx context.Context, tenantID, hash string) (*engine.Insight, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ins, ok := c.items[tenantID+hash]
	if !ok {
		return nil, nil
	}
	return &ins, nil
}

func (c *fakeInsightCache) Set(ctx context.Context, tenantID, hash string, insight engine.Insight) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[string]engine.Insight{}
	}
	c.items[tenantID+hash] = insight
	c.sets++
	return nil
}

type fakeRiskBoard struct {
	mu       sync.Mutex
	recorded map[string]engine.Risks
	top      []model.RiskBoardEntry
	err      error
}

func (b *fakeRiskBoard) Record(ctx context.Context, tenantID, sessionID string, risks engine.Risks) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.recorded == nil {
		b.recorded = map[string]engine.Risks{}
	}
	b.recorded[sessionID] = risks
	return nil
}

func (b *fakeRiskBoard) GetTop(ctx context.Context, tenantID string, metric engine.RiskKey, limit int) ([]model.RiskBoardEntry, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.top) > limit {
		return b.top[:limit], nil
	}
	return b.top, nil
}

// GetRank orders like ZREVRANK: higher scores first, ties by member descending
func (b *fakeRiskBoard) GetRank(ctx context.Context, tenantID string, metric engine.RiskKey, sessionID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return 0, b.err
	}
	own, ok := b.recorded[sessionID]
	if !ok {
		return -1, nil
	}
	score, _ := own.Get(metric)
	rank := int64(1)
	for id, risks := range b.recorded {
		v, _ := risks.Get(metric)
		if v > score || (v == score && id > sessionID) {
			rank++
		}
	}
	return rank, nil
}

type published struct {
	queue string
	event interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(ctx context.Context, queue string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{queue, event})
	return nil
}

func (p *fakePublisher) count(queue string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.queue == queue {
			n++
		}
	}
	return n
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	msgs []string
}

func (b *fakeBroadcaster) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msgType)
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.msgs...)
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, ok := r.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.users[email], nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id && u.TenantID == tenantID {
			return u, nil
		}
	}
	return nil, nil
}

type fakeAnalyticsRepo struct {
	stats    *model.TemplateStats
	err      error
	snapshot *model.TemplateStats
	computes int
	saved    int
}

func (r *fakeAnalyticsRepo) ComputeTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	r.computes++
	if r.err != nil {
		return nil, r.err
	}
	return r.stats, nil
}

func (r *fakeAnalyticsRepo) SaveSnapshot(ctx context.Context, stats *model.TemplateStats) error {
	r.saved++
	r.snapshot = stats
	return nil
}

func (r *fakeAnalyticsRepo) GetSnapshot(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	return r.snapshot, nil
}

type fakeAnalyticsCache struct {
	items map[string]*model.TemplateStats
}

func (c *fakeAnalyticsCache) GetTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	return c.items[tenantID+templateID], nil
}

func (c *fakeAnalyticsCache) SetTemplateStats(ctx context.Context, stats *model.TemplateStats) error {
	if c.items == nil {
		c.items = map[string]*model.TemplateStats{}
	}
	c.items[stats.TenantID+stats.TemplateID] = stats
	return nil
}

func (c *fakeAnalyticsCache) Invalidate(ctx context.Context, tenantID, templateID string) error {
	delete(c.items, tenantID+templateID)
	return nil
}

var errBoom = errors.New("boom")
