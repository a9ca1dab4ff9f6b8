package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3100, cfg.APIPort)
	assert.Equal(t, 50, cfg.MaxBatchSize)
	assert.Equal(t, 24*time.Hour, cfg.JWTUserExpiry)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 5*time.Second, cfg.PGLockTimeout)
	assert.Equal(t, 10*time.Minute, cfg.IdempotencyTTL)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("API_PORT", "8080")
	t.Setenv("MAX_BATCH_SIZE", "12")
	t.Setenv("OUTBOX_POLL_INTERVAL", "750ms")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 12, cfg.MaxBatchSize)
	assert.Equal(t, 750*time.Millisecond, cfg.OutboxInterval)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoadConfig_BadValue(t *testing.T) {
	t.Setenv("API_PORT", "not-a-port")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"insecure default secret", func(c *Config) {}, "insecure default"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "too short"},
		{"strong secret", func(c *Config) { c.JWTSecret = "0123456789abcdef0123456789abcdef" }, ""},
		{"dev bypass", func(c *Config) { c.AllowInsecureDefaults = true }, ""},
		{"zero batch size", func(c *Config) { c.AllowInsecureDefaults = true; c.MaxBatchSize = 0 }, "MAX_BATCH_SIZE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig()
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := &Config{PGUser: "u", PGPassword: "p", PGHost: "db", PGPort: 5433, PGDatabase: "quiniela"}
	assert.Equal(t, "postgres://u:p@db:5433/quiniela?sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://override"
	assert.Equal(t, "postgres://override", cfg.DSN())
}
