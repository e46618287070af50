package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server settings, read from the environment
type Config struct {
	HTTPAddr    string     `env:"HTTP_ADDR" envDefault:":8080"`
	MongoURI    string     `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string     `env:"MONGO_DB" envDefault:"anamnese"`
	RedisURL    string     `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RabbitMQURL string     `env:"RABBITMQ_URL"`
	JWTSecret   string     `env:"JWT_SECRET,required"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RulesPath   string     `env:"RULES_PATH"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	InsightCacheTTL time.Duration `env:"INSIGHT_CACHE_TTL" envDefault:"24h"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already set take precedence over the file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
