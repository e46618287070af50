package main

import (
	"anamnese/internal/engine"
	"anamnese/internal/model"
	"anamnese/internal/repository"
	"anamnese/internal/service"
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedConfig struct {
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB       string `env:"MONGO_DB" envDefault:"anamnese"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@clinica.local"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:"admin123"`
}

var frequency = []string{"Nunca", "Raramente", "Às vezes", "Frequentemente", "Sempre"}

func main() {
	tenantID := flag.String("tenant", "default", "tenant id to seed")
	tenantName := flag.String("tenant-name", "Clínica Padrão", "tenant display name")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	_ = godotenv.Load()
	cfg, err := env.ParseAs[seedConfig]()
	if err != nil {
		logger.Error("invalid environment", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB)

	if err := seed(ctx, db, cfg, *tenantID, *tenantName, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	logger.Info("seed complete", "tenant", *tenantID, "admin", cfg.AdminEmail)
}

func seed(ctx context.Context, db *mongo.Database, cfg seedConfig, tenantID, tenantName string, logger *slog.Logger) error {
	tenants := repository.NewTenantRepo(db)
	if err := tenants.Upsert(ctx, &model.Tenant{ID: tenantID, Name: tenantName, CreatedAt: time.Now()}); err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	email := strings.ToLower(cfg.AdminEmail)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	adminID := ""
	if existing != nil {
		adminID = existing.ID
		logger.Info("admin already exists", "email", email)
	} else {
		hash, err := service.HashPassword(cfg.AdminPassword)
		if err != nil {
			return err
		}
		admin := &model.User{
			ID:           uuid.NewString(),
			TenantID:     tenantID,
			Email:        email,
			Name:         "Administrador",
			Role:         model.RoleAdmin,
			PasswordHash: hash,
			CreatedAt:    time.Now(),
		}
		if err := users.Create(ctx, admin); err != nil {
			return err
		}
		adminID = admin.ID
		logger.Info("admin created", "email", email)
	}

	templates := service.NewTemplateService(repository.NewTemplateRepo(db), nil, logger)
	list, err := templates.List(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, tpl := range list {
		if tpl.Name == defaultTemplate().Name {
			logger.Info("template already exists", "templateId", tpl.TemplateID)
			return nil
		}
	}
	resp, err := templates.Create(ctx, tenantID, adminID, defaultTemplate())
	if err != nil {
		return err
	}
	for _, w := range resp.Warnings {
		logger.Warn("template lint", "warning", w)
	}
	logger.Info("template created", "templateId", resp.Template.TemplateID)
	return nil
}

func defaultTemplate() *model.TemplateRequest {
	return &model.TemplateRequest{
		Name:        "Anamnese nutricional inicial",
		Description: "Triagem de estresse, sono, alimentação emocional e prontidão para mudança.",
		Schema: engine.Schema{
			Tags: []string{"stress", "sleep", "food_emotional", "readiness"},
			Questions: []engine.Question{
				{ID: "q1", Text: "Qual é o seu principal objetivo?", Type: engine.TypeSingle, Required: true,
					Options: []string{"Perder peso", "Ganhar massa", "Melhorar a saúde", "Outro"}},
				{ID: "q1_other", Text: "Descreva o seu objetivo.", Type: engine.TypeText},
				{ID: "q2", Text: "Como você avalia a qualidade do seu sono?", Type: engine.TypeSingle, Required: true,
					Options: []string{"Muito ruim", "Ruim", "Regular", "Boa", "Excelente"}, Tags: []string{"sleep"}},
				{ID: "q3", Text: "Com que frequência você se sente estressado?", Type: engine.TypeSingle, Required: true,
					Options: frequency, Tags: []string{"stress"}},
				{ID: "q4", Text: "O que mais causa estresse no seu dia a dia?", Type: engine.TypeText,
					ShowWhen: &engine.ShowWhen{QuestionID: "q3", Operator: engine.OpIn, Value: []string{"Frequentemente", "Sempre"}}},
				{ID: "q5", Text: "Você come mais quando está ansioso ou triste?", Type: engine.TypeSingle, Required: true,
					Options: frequency, Tags: []string{"food_emotional"}},
				{ID: "q6", Text: "De 1 a 10, o quanto você está pronto para mudar seus hábitos?", Type: engine.TypeNumber, Required: true,
					Tags: []string{"readiness"}},
				{ID: "q7", Text: "Quais atividades físicas você pratica?", Type: engine.TypeMultiple,
					Options: []string{"Caminhada", "Musculação", "Corrida", "Natação", "Nenhuma"}, Tags: []string{"physical_activity"}},
			},
			ConditionalLogic: []engine.ConditionalRule{
				{IfQuestion: "q1", IfValue: "Outro", ThenShow: []string{"q1_other"}},
			},
		},
	}
}
