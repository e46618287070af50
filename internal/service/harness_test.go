package service

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"context"
	"encoding/json"
	"testing"
)

const (
	testTenant = "tenant-1"
	testUser   = "user-1"
)

var frequency = []string{"Nunca", "Raramente", "Às vezes", "Frequentemente", "Sempre"}

func stressSchema() engine.Schema {
	return engine.Schema{Questions: []engine.Question{
		{ID: "q3", Text: "Com que frequência você se sente estressado?", Type: engine.TypeSingle, Options: frequency, Required: true, Tags: []string{"stress"}},
		{
			ID:       "q4",
			Text:     "O que mais causa estresse?",
			Type:     engine.TypeText,
			ShowWhen: &engine.ShowWhen{QuestionID: "q3", Operator: engine.OpIn, Value: []string{"Frequentemente", "Sempre"}},
		},
	}}
}

type harness struct {
	auth         *AuthService
	templates    *TemplateService
	sessions     *SessionService
	insights     *InsightService
	templateRepo *fakeTemplateRepo
	sessionRepo  *fakeSessionRepo
	insightRepo  *fakeInsightRepo
	insightCache *fakeInsightCache
	board        *fakeRiskBoard
	publisher    *fakePublisher
	broadcaster  *fakeBroadcaster
	template     *model.Template
}

func newHarness(t *testing.T, schema engine.Schema) *harness {
	t.Helper()
	h := &harness{
		templateRepo: &fakeTemplateRepo{},
		sessionRepo:  newFakeSessionRepo(),
		insightRepo:  newFakeInsightRepo(),
		insightCache: &fakeInsightCache{},
		board:        &fakeRiskBoard{},
		publisher:    &fakePublisher{},
		broadcaster:  &fakeBroadcaster{},
	}
	logger := discardLogger()
	rules := engine.DefaultRules()

	h.auth = NewAuthService(&fakeUserRepo{users: map[string]*model.User{}}, "test-secret")
	h.templates = NewTemplateService(h.templateRepo, &fakeTemplateCache{}, logger)
	h.insights = NewInsightService(h.insightRepo, h.sessionRepo, h.templates, h.insightCache, h.board, rules, logger)
	h.insights.SetBroadcaster(h.broadcaster)
	h.insights.SetPublisher(h.publisher)
	h.sessions = NewSessionService(h.sessionRepo, h.templates, h.auth, rules, logger)
	h.sessions.SetBroadcaster(h.broadcaster)
	h.sessions.SetPublisher(h.publisher)
	h.sessions.SetInsightGenerator(h.insights)

	resp, err := h.templates.Create(context.Background(), testTenant, testUser, &model.TemplateRequest{
		Name:   "Anamnese inicial",
		Schema: schema,
	})
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	h.template = resp.Template
	return h
}

func (h *harness) start(t *testing.T) *model.StartSessionResponse {
	t.Helper()
	resp, err := h.sessions.Start(context.Background(), testTenant, testUser, &model.StartSessionRequest{TemplateID: h.template.TemplateID})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	return resp
}

func answer(questionID string, value interface{}) *model.SubmitAnswerRequest {
	raw, _ := json.Marshal(value)
	return &model.SubmitAnswerRequest{QuestionID: questionID, Value: raw}
}
