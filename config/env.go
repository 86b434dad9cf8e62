package config

import (
	"log"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment configuration
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8000"`

	// Database
	DatabaseHost     string `env:"DATABASE_HOST" envDefault:"localhost"`
	DatabasePort     string `env:"DATABASE_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	DatabaseName     string `env:"DATABASE_NAME" envDefault:"postgres"`

	// Authentication
	JWTSecret string `env:"JWT_SECRET" envDefault:"dummyjwt"`

	// Audit
	KafkaBroker      string `env:"KAFKA_BROKER"`
	AuditTopic       string `env:"AUDIT_TOPIC" envDefault:"tabulator-audit"`
	DiscordBotToken  string `env:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `env:"DISCORD_AUDIT_CHANNEL_ID"`

	// Engine policy
	AllowSelfApproval    bool `env:"ALLOW_SELF_APPROVAL" envDefault:"true"`
	ResultRefreshSeconds int  `env:"RESULT_REFRESH_SECONDS" envDefault:"5"`

	// Other
	CompetitionFile string `env:"COMPETITION_FILE"`
}

var (
	appConfig *Config
	onceEnv   sync.Once
)

func loadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		log.Fatalf("Invalid environment configuration: %v", err)
	}
	if cfg.IsProduction() && cfg.JWTSecret == "dummyjwt" {
		log.Fatal("JWT_SECRET must be set in production")
	}
	return &cfg
}

func Env() *Config {
	onceEnv.Do(func() {
		appConfig = loadConfig()
	})
	return appConfig
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
