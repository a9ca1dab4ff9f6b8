package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL    string        `env:"DATABASE_URL"`
	PGHost         string        `env:"PGHOST" envDefault:"localhost"`
	PGPort         int           `env:"PGPORT" envDefault:"5432"`
	PGUser         string        `env:"PGUSER" envDefault:"quiniela"`
	PGPassword     string        `env:"PGPASSWORD" envDefault:"quiniela"`
	PGDatabase     string        `env:"PGDATABASE" envDefault:"quiniela"`
	PGMaxConns     int32         `env:"PG_MAX_CONNS" envDefault:"20"`
	PGLockTimeout  time.Duration `env:"PG_LOCK_TIMEOUT" envDefault:"5s"`
	PGAppName      string        `env:"PG_APPLICATION_NAME" envDefault:"quiniela"`
	MigrateOnStart bool          `env:"MIGRATE_ON_START" envDefault:"false"`
	MigrationsDir  string        `env:"MIGRATIONS_DIR"`

	// Redis
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisEnabled bool   `env:"REDIS_ENABLED" envDefault:"false"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTUserExpiry  time.Duration `env:"JWT_USER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort         int           `env:"API_PORT" envDefault:"3100"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Betting
	MaxBatchSize    int           `env:"MAX_BATCH_SIZE" envDefault:"50"`
	PlaceBetsPerMin int           `env:"PLACE_BETS_PER_MINUTE" envDefault:"60"`
	IdempotencyTTL  time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"10m"`

	// Kafka
	KafkaBrokers     string        `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopicPrefix string        `env:"KAFKA_TOPIC_PREFIX" envDefault:"quiniela"`
	OutboxInterval   time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize  int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass the secret checks (local dev only).
func (c *Config) Validate() error {
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("MAX_BATCH_SIZE must be positive, got %d", c.MaxBatchSize)
	}
	if c.PlaceBetsPerMin <= 0 {
		return fmt.Errorf("PLACE_BETS_PER_MINUTE must be positive, got %d", c.PlaceBetsPerMin)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
