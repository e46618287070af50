package rest

import (
	"anamnese/docs"
	"anamnese/internal/cache"
	"anamnese/internal/model"
	"anamnese/internal/service"
	"anamnese/internal/transport/rest/handler"
	"anamnese/internal/transport/rest/middleware"
	"anamnese/internal/transport/ws"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/swaggest/swgui/v5emb"
	"github.com/swaggo/swag"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	TemplateService  *service.TemplateService
	SessionService   *service.SessionService
	InsightService   *service.InsightService
	AnalyticsService *service.AnalyticsService
	Idempotency      cache.IdempotencyCache // optional
	WSHub            *ws.Hub
	HealthChecks     map[string]handler.Checker
	CORSOrigins      []string
	Logger           *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	templateHandler := handler.NewTemplateHandler(c.TemplateService)
	sessionHandler := handler.NewSessionHandler(c.SessionService, c.InsightService)
	patientHandler := handler.NewPatientHandler(c.SessionService)
	analyticsHandler := handler.NewAnalyticsHandler(c.AnalyticsService)
	healthHandler := handler.NewHealthHandler(c.Logger, c.HealthChecks)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.SessionService, c.CORSOrigins, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	idempotent := func(next http.Handler) http.Handler { return next }
	if c.Idempotency != nil {
		idempotent = middleware.Idempotency(c.Idempotency, c.Logger)
	}

	// Health check and API docs
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")
	r.HandleFunc("/swagger/doc.json", serveSwaggerDoc).Methods("GET")
	r.PathPrefix("/docs/").Handler(v5emb.New(docs.SwaggerInfo.Title, "/swagger/doc.json", "/docs/"))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	// Patient routes (session-scoped token)
	patientRoutes := v1.PathPrefix("/patient").Subrouter()
	patientRoutes.Use(authMW.RequirePatient, idempotent)

	patientRoutes.HandleFunc("/session/next", patientHandler.Next).Methods("GET")
	patientRoutes.HandleFunc("/session/answers", patientHandler.SubmitAnswer).Methods("POST")

	// Staff routes
	staffRoutes := v1.NewRoute().Subrouter()
	staffRoutes.Use(authMW.RequireStaff, idempotent)

	staffRoutes.HandleFunc("/templates", templateHandler.List).Methods("GET")
	staffRoutes.HandleFunc("/templates", templateHandler.Create).Methods("POST")
	staffRoutes.HandleFunc("/templates/{templateId}", templateHandler.Get).Methods("GET")
	staffRoutes.Handle("/templates/{templateId}",
		authMW.RequireRole(model.RoleAdmin)(http.HandlerFunc(templateHandler.Update))).Methods("PUT")
	staffRoutes.HandleFunc("/templates/{templateId}/sessions", sessionHandler.ListByTemplate).Methods("GET")

	staffRoutes.HandleFunc("/sessions", sessionHandler.Start).Methods("POST")
	staffRoutes.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET")
	staffRoutes.HandleFunc("/sessions/{sessionId}/next", sessionHandler.Next).Methods("GET")
	staffRoutes.HandleFunc("/sessions/{sessionId}/answers", sessionHandler.SubmitAnswer).Methods("POST")
	staffRoutes.HandleFunc("/sessions/{sessionId}/insight", sessionHandler.GetInsight).Methods("GET")
	staffRoutes.HandleFunc("/sessions/{sessionId}/insight", sessionHandler.GenerateInsight).Methods("POST")

	staffRoutes.HandleFunc("/analytics/templates/{templateId}", analyticsHandler.TemplateStats).Methods("GET")
	staffRoutes.HandleFunc("/analytics/risk-board/{metric}", analyticsHandler.RiskBoard).Methods("GET")
	staffRoutes.HandleFunc("/analytics/sessions/{sessionId}/ranks", analyticsHandler.SessionRanks).Methods("GET")

	// Outermost first: request id, real ip, logging, panic recovery, CORS
	var h http.Handler = r
	h = middleware.CORS(c.CORSOrigins)(h)
	h = chimw.Recoverer(h)
	h = middleware.Logger(c.Logger)(h)
	h = chimw.RealIP(h)
	h = chimw.RequestID(h)
	return h
}

func serveSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
