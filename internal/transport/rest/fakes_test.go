package rest

import (
	"anamnese/internal/cache"
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"context"
	"sync"
)

type memTemplates struct {
	mu   sync.Mutex
	list []*model.Template
}

func (m *memTemplates) Create(ctx context.Context, tpl *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.list {
		if t.TenantID == tpl.TenantID && t.TemplateID == tpl.TemplateID && t.Version == tpl.Version {
			return repository.ErrDuplicate
		}
	}
	m.list = append(m.list, tpl)
	return nil
}

func (m *memTemplates) GetLatest(ctx context.Context, tenantID, templateID string) (*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.Template
	for _, t := range m.list {
		if t.TenantID == tenantID && t.TemplateID == templateID && (latest == nil || t.Version > latest.Version) {
			latest = t
		}
	}
	return latest, nil
}

func (m *memTemplates) GetVersion(ctx context.Context, tenantID, templateID string, version int) (*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.list {
		if t.TenantID == tenantID && t.TemplateID == templateID && t.Version == version {
			return t, nil
		}
	}
	return nil, nil
}

func (m *memTemplates) ListLatest(ctx context.Context, tenantID string) ([]*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Template
	for _, t := range m.list {
		if t.TenantID == tenantID {
			out = append(out, t)
		}
	}
	return out, nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func (m *memSessions) Create(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessions) GetByID(ctx context.Context, tenantID, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, nil
	}
	cp := *s
	cp.Answers = make(map[string]model.StoredAnswer, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp, nil
}

func (m *memSessions) ApplyAnswer(ctx context.Context, tenantID, id string, expectedVersion int64, w repository.AnswerWrite) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.TenantID != tenantID || s.Status != engine.StatusInProgress || s.Version != expectedVersion {
		return false, nil
	}
	if s.Answers == nil {
		s.Answers = map[string]model.StoredAnswer{}
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

func (m *memSessions) ListByTemplate(ctx context.Context, tenantID, templateID string, limit int64) ([]*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Session
	for _, s := range m.sessions {
		if s.TenantID == tenantID && s.TemplateID == templateID {
			cp := *s
			out = append(out, &cp)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memInsights struct {
	mu      sync.Mutex
	records map[string]*model.InsightRecord
}

func (m *memInsights) GetBySession(ctx context.Context, tenantID, sessionID string) (*model.InsightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[sessionID]
	if !ok || rec.TenantID != tenantID {
		return nil, nil
	}
	return rec, nil
}

func (m *memInsights) CreateIfAbsent(ctx context.Context, rec *model.InsightRecord) (*model.InsightRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[rec.SessionID]; ok {
		return existing, false, nil
	}
	m.records[rec.SessionID] = rec
	return rec, true, nil
}

type memUsers struct {
	users map[string]*model.User
}

func (m *memUsers) Create(ctx context.Context, u *model.User) error {
	m.users[u.Email] = u
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.users[email], nil
}

func (m *memUsers) GetByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	return nil, nil
}

type memAnalytics struct{}

func (memAnalytics) ComputeTemplateStats(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	return &model.TemplateStats{TenantID: tenantID, TemplateID: templateID, Total: 1, Completed: 1, CompletionRate: 1}, nil
}

func (memAnalytics) SaveSnapshot(ctx context.Context, stats *model.TemplateStats) error { return nil }

func (memAnalytics) GetSnapshot(ctx context.Context, tenantID, templateID string) (*model.TemplateStats, error) {
	return nil, nil
}

type memBoard struct {
	mu      sync.Mutex
	entries []model.RiskBoardEntry
}

func (b *memBoard) Record(ctx context.Context, tenantID, sessionID string, risks engine.Risks) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, model.RiskBoardEntry{SessionID: sessionID, Score: risks.Stress, Rank: len(b.entries) + 1})
	return nil
}

func (b *memBoard) GetTop(ctx context.Context, tenantID string, metric engine.RiskKey, limit int) ([]model.RiskBoardEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.RiskBoardEntry(nil), b.entries...), nil
}

func (b *memBoard) GetRank(ctx context.Context, tenantID string, metric engine.RiskKey, sessionID string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.entries {
		if e.SessionID == sessionID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

type memIdempotency struct {
	mu      sync.Mutex
	pending map[string]string
	done    map[string]cache.StoredResponse
}

func (s *memIdempotency) Claim(ctx context.Context, key, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.done[key]; ok {
		return false, nil
	}
	if _, ok := s.pending[key]; ok {
		return false, nil
	}
	s.pending[key] = fingerprint
	return true, nil
}

func (s *memIdempotency) Get(ctx context.Context, key string) (*cache.StoredResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resp, ok := s.done[key]; ok {
		return &resp, false, nil
	}
	if fp, ok := s.pending[key]; ok {
		return &cache.StoredResponse{Fingerprint: fp}, true, nil
	}
	return nil, false, nil
}

func (s *memIdempotency) Complete(ctx context.Context, key string, resp cache.StoredResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	s.done[key] = resp
	return nil
}

func (s *memIdempotency) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
	return nil
}
