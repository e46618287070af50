package rest

import (
	"anamnese/internal/cache"
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/service"
	"anamnese/internal/transport/rest/handler"
	"anamnese/internal/transport/rest/middleware"
	"anamnese/internal/transport/ws"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const routerTenant = "clinic-1"

type testAPI struct {
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rules := engine.DefaultRules()

	users := &memUsers{users: map[string]*model.User{}}
	for _, u := range []struct {
		id, email string
		role      model.Role
	}{
		{"u-admin", "admin@clinic.test", model.RoleAdmin},
		{"u-clin", "clin@clinic.test", model.RoleClinician},
	} {
		hash, err := service.HashPassword("secret123")
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		users.users[u.email] = &model.User{ID: u.id, TenantID: routerTenant, Email: u.email, Role: u.role, PasswordHash: hash}
	}

	sessions := &memSessions{sessions: map[string]*model.Session{}}
	insights := &memInsights{records: map[string]*model.InsightRecord{}}
	board := &memBoard{}

	hub := ws.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	auth := service.NewAuthService(users, "router-secret")
	templates := service.NewTemplateService(&memTemplates{}, nil, logger)
	insightSvc := service.NewInsightService(insights, sessions, templates, nil, board, rules, logger)
	insightSvc.SetBroadcaster(hub)
	sessionSvc := service.NewSessionService(sessions, templates, auth, rules, logger)
	sessionSvc.SetBroadcaster(hub)
	sessionSvc.SetInsightGenerator(insightSvc)
	analytics := service.NewAnalyticsService(memAnalytics{}, nil, board, templates, logger)

	h := NewRouter(&Container{
		AuthService:      auth,
		TemplateService:  templates,
		SessionService:   sessionSvc,
		InsightService:   insightSvc,
		AnalyticsService: analytics,
		Idempotency:      &memIdempotency{pending: map[string]string{}, done: map[string]cache.StoredResponse{}},
		WSHub:            hub,
		HealthChecks: map[string]handler.Checker{
			"mongo": handler.CheckFunc(func(ctx context.Context) error { return nil }),
		},
		CORSOrigins: []string{"*"},
		Logger:      logger,
	})
	return &testAPI{handler: h}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Email: email, Password: "secret123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", email, rec.Code, rec.Body.String())
	}
	var resp model.LoginResponse
	decode(t, rec, &resp)
	return resp.Token
}

func (a *testAPI) createTemplate(t *testing.T, token string) *model.Template {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/v1/templates", token, model.TemplateRequest{
		Name: "Anamnese inicial",
		Schema: engine.Schema{Questions: []engine.Question{
			{ID: "q3", Text: "Com que frequência você se sente estressado?", Type: engine.TypeSingle,
				Options: []string{"Nunca", "Raramente", "Às vezes", "Frequentemente", "Sempre"}, Required: true, Tags: []string{"stress"}},
			{ID: "q4", Text: "O que mais causa estresse?", Type: engine.TypeText,
				ShowWhen: &engine.ShowWhen{QuestionID: "q3", Operator: engine.OpIn, Value: []string{"Frequentemente", "Sempre"}}},
		}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp model.TemplateResponse
	decode(t, rec, &resp)
	return resp.Template
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
}

func TestRouterIntakeFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@clinic.test")
	tpl := api.createTemplate(t, admin)

	rec := api.do(t, http.MethodPost, "/v1/sessions", admin, model.StartSessionRequest{TemplateID: tpl.TemplateID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var started model.StartSessionResponse
	decode(t, rec, &started)
	if started.Next.NextQuestion == nil || started.Next.NextQuestion.ID != "q3" {
		t.Fatalf("first question = %+v, want q3", started.Next.NextQuestion)
	}
	sessionID := started.Session.ID

	rec = api.do(t, http.MethodGet, "/v1/patient/session/next", started.PatientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("patient next: status = %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/v1/patient/session/answers", started.PatientToken,
		map[string]interface{}{"questionId": "q3", "value": "Nunca"})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var answered model.SubmitAnswerResponse
	decode(t, rec, &answered)
	if answered.Status != engine.StatusCompleted {
		t.Errorf("status = %s, want completed", answered.Status)
	}
	if answered.Insight == nil {
		t.Fatal("expected insight in completing response")
	}

	rec = api.do(t, http.MethodGet, "/v1/sessions/"+sessionID+"/insight", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get insight: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stored model.InsightRecord
	decode(t, rec, &stored)
	if stored.SessionID != sessionID || stored.Summary != answered.Insight.Summary {
		t.Errorf("stored insight = %+v, want the one returned on completion", stored)
	}

	rec = api.do(t, http.MethodPost, "/v1/patient/session/answers", started.PatientToken,
		map[string]interface{}{"questionId": "q3", "value": "Sempre"})
	if rec.Code != http.StatusConflict {
		t.Errorf("answer after completion: status = %d, want 409", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/v1/analytics/risk-board/stress", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("risk board: status = %d", rec.Code)
	}
	var entries []model.RiskBoardEntry
	decode(t, rec, &entries)
	if len(entries) != 1 || entries[0].SessionID != sessionID {
		t.Errorf("risk board = %+v, want the completed session", entries)
	}

	rec = api.do(t, http.MethodGet, "/v1/analytics/sessions/"+sessionID+"/ranks", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session ranks: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var ranks model.SessionRanks
	decode(t, rec, &ranks)
	if ranks.SessionID != sessionID || ranks.Ranks["stress"] != 1 {
		t.Errorf("session ranks = %+v, want first on stress", ranks)
	}

	rec = api.do(t, http.MethodGet, "/v1/templates/"+tpl.TemplateID+"/sessions?limit=10", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sessions []model.Session
	decode(t, rec, &sessions)
	if len(sessions) != 1 || sessions[0].ID != sessionID || sessions[0].Status != engine.StatusCompleted {
		t.Errorf("template sessions = %+v, want the completed session", sessions)
	}
}

func TestRouterStartWithNothingToAsk(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@clinic.test")

	rec := api.do(t, http.MethodPost, "/v1/templates", admin, model.TemplateRequest{Name: "Retorno"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created model.TemplateResponse
	decode(t, rec, &created)

	rec = api.do(t, http.MethodPost, "/v1/sessions", admin, model.StartSessionRequest{TemplateID: created.Template.TemplateID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var started model.StartSessionResponse
	decode(t, rec, &started)
	if started.Session.Status != engine.StatusCompleted || started.Next.NextQuestion != nil {
		t.Fatalf("session = %+v, next = %+v, want completed with nothing next", started.Session, started.Next)
	}
	if started.Insight == nil {
		t.Fatal("expected insight when the session completes on start")
	}

	rec = api.do(t, http.MethodGet, "/v1/sessions/"+started.Session.ID+"/insight", admin, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get insight: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = api.do(t, http.MethodGet, "/v1/patient/session/next", started.PatientToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("patient next: status = %d", rec.Code)
	}
	var next engine.Selection
	decode(t, rec, &next)
	if next.Reason != engine.ReasonCompleted {
		t.Errorf("reason = %s, want completed", next.Reason)
	}
}

func TestRouterAuthorization(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@clinic.test")
	clinician := api.login(t, "clin@clinic.test")
	tpl := api.createTemplate(t, clinician)

	rec := api.do(t, http.MethodPost, "/v1/sessions", admin, model.StartSessionRequest{TemplateID: tpl.TemplateID})
	var started model.StartSessionResponse
	decode(t, rec, &started)

	update := model.TemplateRequest{Name: "v2", Schema: tpl.Schema}
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/v1/templates", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/v1/templates", "nope", nil, http.StatusUnauthorized},
		{"patient token on staff route", http.MethodGet, "/v1/templates", started.PatientToken, nil, http.StatusUnauthorized},
		{"staff token on patient route", http.MethodGet, "/v1/patient/session/next", admin, nil, http.StatusUnauthorized},
		{"clinician cannot update", http.MethodPut, "/v1/templates/" + tpl.TemplateID, clinician, update, http.StatusForbidden},
		{"admin can update", http.MethodPut, "/v1/templates/" + tpl.TemplateID, admin, update, http.StatusOK},
		{"wrong password", http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Email: "admin@clinic.test", Password: "x"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestRouterErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@clinic.test")
	tpl := api.createTemplate(t, admin)

	rec := api.do(t, http.MethodPost, "/v1/sessions", admin, model.StartSessionRequest{TemplateID: tpl.TemplateID})
	var started model.StartSessionResponse
	decode(t, rec, &started)
	answers := "/v1/sessions/" + started.Session.ID + "/answers"

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown session", http.MethodGet, "/v1/sessions/missing", nil, http.StatusNotFound},
		{"unknown template", http.MethodPost, "/v1/sessions", model.StartSessionRequest{TemplateID: "missing"}, http.StatusNotFound},
		{"missing template id", http.MethodPost, "/v1/sessions", model.StartSessionRequest{}, http.StatusBadRequest},
		{"unknown question", http.MethodPost, answers, map[string]interface{}{"questionId": "q99", "value": "x"}, http.StatusUnprocessableEntity},
		{"empty answer", http.MethodPost, answers, map[string]interface{}{"questionId": "q3", "value": ""}, http.StatusUnprocessableEntity},
		{"insight before completion", http.MethodPost, "/v1/sessions/" + started.Session.ID + "/insight", nil, http.StatusConflict},
		{"no insight yet", http.MethodGet, "/v1/sessions/" + started.Session.ID + "/insight", nil, http.StatusNotFound},
		{"invalid risk metric", http.MethodGet, "/v1/analytics/risk-board/mood", nil, http.StatusBadRequest},
		{"unranked session", http.MethodGet, "/v1/analytics/sessions/" + started.Session.ID + "/ranks", nil, http.StatusNotFound},
		{"sessions of unknown template", http.MethodGet, "/v1/templates/missing/sessions", nil, http.StatusNotFound},
		{"invalid session limit", http.MethodGet, "/v1/templates/" + tpl.TemplateID + "/sessions?limit=ten", nil, http.StatusBadRequest},
		{"deepening not offered", http.MethodPost, answers, map[string]interface{}{"questionId": "deep_stress_level", "value": 9}, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, admin, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			var errResp handler.ErrorResponse
			decode(t, rec, &errResp)
			if errResp.Error == "" {
				t.Error("expected error message")
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader("{"))
		req.Header.Set("Authorization", "Bearer "+admin)
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRouterIdempotentStart(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@clinic.test")
	tpl := api.createTemplate(t, admin)
	body := model.StartSessionRequest{TemplateID: tpl.TemplateID}

	first := api.do(t, http.MethodPost, "/v1/sessions", admin, body, middleware.IdempotencyHeader, "start-1")
	second := api.do(t, http.MethodPost, "/v1/sessions", admin, body, middleware.IdempotencyHeader, "start-1")
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("statuses = %d, %d, want 201 twice", first.Code, second.Code)
	}
	if second.Header().Get(middleware.ReplayedHeader) != "true" {
		t.Error("expected replayed header on second response")
	}

	var a, b model.StartSessionResponse
	decode(t, first, &a)
	decode(t, second, &b)
	if a.Session.ID != b.Session.ID {
		t.Errorf("session ids = %s, %s, want the same session", a.Session.ID, b.Session.ID)
	}

	other := api.do(t, http.MethodPost, "/v1/sessions", admin, model.StartSessionRequest{TemplateID: tpl.TemplateID, PatientRef: "p-2"},
		middleware.IdempotencyHeader, "start-1")
	if other.Code != http.StatusUnprocessableEntity {
		t.Errorf("reused key with another body: status = %d, want 422", other.Code)
	}

	third := api.do(t, http.MethodPost, "/v1/sessions", admin, body, middleware.IdempotencyHeader, "start-2")
	var c model.StartSessionResponse
	decode(t, third, &c)
	if c.Session.ID == a.Session.ID {
		t.Error("new key must start a new session")
	}
}

func TestRouterHealthAndDocs(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status = %d", rec.Code)
	}
	var health map[string]interface{}
	decode(t, rec, &health)
	if health["status"] != "ok" {
		t.Errorf("health status = %v, want ok", health["status"])
	}

	rec = api.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("doc: status = %d", rec.Code)
	}
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	decode(t, rec, &doc)
	if doc.Info.Title == "" {
		t.Error("expected a title in swagger doc")
	}
	if _, ok := doc.Paths["/sessions"]; !ok {
		t.Error("expected /sessions in swagger doc")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	api := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/sessions", nil)
	req.Header.Set("Origin", "https://app.clinic.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected allow-origin header")
	}
}

func TestRouterTemplateStats(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@clinic.test")
	tpl := api.createTemplate(t, admin)

	rec := api.do(t, http.MethodGet, "/v1/analytics/templates/"+tpl.TemplateID, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var stats model.TemplateStats
	decode(t, rec, &stats)
	if stats.TemplateID != tpl.TemplateID || stats.TenantID != routerTenant {
		t.Errorf("stats = %+v, want scoped to template and tenant", stats)
	}

	rec = api.do(t, http.MethodGet, "/v1/analytics/templates/none", admin, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template: status = %d, want 404", rec.Code)
	}
}
