package main

import (
	"anamnese/internal/cache"
	"anamnese/internal/config"
	"anamnese/internal/messaging"
	"anamnese/internal/repository"
	"anamnese/internal/service"
	"anamnese/internal/transport/rest"
	"anamnese/internal/transport/rest/handler"
	"anamnese/internal/transport/ws"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// @title Anamnese API
// @version 1.0
// @description Adaptive intake questionnaires with tag-scored insights
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return err
	}
	if cfg.RulesPath != "" {
		logger.Info("scoring rules loaded", "path", cfg.RulesPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return err
	}
	logger.Info("connected to MongoDB", "db", cfg.MongoDB)
	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return err
	}
	logger.Info("connected to Redis", "addr", redisOpts.Addr)

	// Event publisher
	var publisher service.Publisher = messaging.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rmq.Close()
		publisher = rmq
		logger.Info("connected to RabbitMQ")
	}

	// Initialize repositories
	templateRepo := repository.NewTemplateRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	insightRepo := repository.NewInsightRepo(db)
	userRepo := repository.NewUserRepo(db)
	analyticsRepo := repository.NewAnalyticsRepo(db)

	// Initialize caches
	templateCache := cache.NewTemplateCache(rdb)
	insightCache := cache.NewInsightCache(rdb, cfg.InsightCacheTTL)
	riskBoard := cache.NewRiskBoardCache(rdb)
	analyticsCache := cache.NewAnalyticsCache(rdb)
	idempotency := cache.NewIdempotencyCache(rdb, cfg.IdempotencyTTL)

	wsHub := ws.NewHub(logger)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	templateSvc := service.NewTemplateService(templateRepo, templateCache, logger)
	insightSvc := service.NewInsightService(insightRepo, sessionRepo, templateSvc, insightCache, riskBoard, rules, logger)
	sessionSvc := service.NewSessionService(sessionRepo, templateSvc, authSvc, rules, logger)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, analyticsCache, riskBoard, templateSvc, logger)

	insightSvc.SetBroadcaster(wsHub)
	insightSvc.SetPublisher(publisher)
	sessionSvc.SetBroadcaster(wsHub)
	sessionSvc.SetPublisher(publisher)
	sessionSvc.SetInsightGenerator(insightSvc)

	router := rest.NewRouter(&rest.Container{
		AuthService:      authSvc,
		TemplateService:  templateSvc,
		SessionService:   sessionSvc,
		InsightService:   insightSvc,
		AnalyticsService: analyticsSvc,
		Idempotency:      idempotency,
		WSHub:            wsHub,
		HealthChecks: map[string]handler.Checker{
			"mongo": handler.CheckFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis": handler.CheckFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		CORSOrigins: cfg.CORSAllowedOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wsHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}
