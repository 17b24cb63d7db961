package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ADDR", "ENV", "LOG_LEVEL", "LOG_FORMAT", "ENCRYPTION_KEY", "SENSITIVE_FIELDS",
	"ADMIN_API_TOKEN", "JWT_SIGNING_KEY", "JWT_ISSUER", "JWT_AUDIENCE", "AUDIT_STORE",
	"DATABASE_URL", "SQLITE_PATH", "AUDIT_TABLE", "AUDIT_STREAM", "REDIS_URL",
	"KAFKA_BROKERS", "ALERT_TOPIC", "ALERT_WEBHOOK_URL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"TRUSTED_PROXIES",
}

// clearEnv blanks every variable FromEnv reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, AuditStoreMemory, cfg.AuditStore)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.IsProduction())
	assert.Contains(t, cfg.Warnings, "ENCRYPTION_KEY not set: operations on sensitive fields will fail")
	assert.Contains(t, cfg.Warnings, "ADMIN_API_TOKEN not set: using insecure default")
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SENSITIVE_FIELDS", " gstin, ,billingAddress ")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("AUDIT_STORE", "SQLite")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"gstin", "billingAddress"}, cfg.SensitiveFields)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, AuditStoreSQLite, cfg.AuditStore)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.TrustedProxies)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad rps", map[string]string{"RATE_LIMIT_RPS": "fast"}, "invalid RATE_LIMIT_RPS"},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}, "must be positive"},
		{"bad trusted proxy", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,lb.internal"}, "invalid TRUSTED_PROXIES"},
		{"unknown store", map[string]string{"AUDIT_STORE": "mongo"}, "unknown AUDIT_STORE"},
		{"postgres without dsn", map[string]string{"AUDIT_STORE": "postgres"}, "DATABASE_URL is required"},
		{"redis without url", map[string]string{"AUDIT_STORE": "redis"}, "REDIS_URL is required"},
		{"production without key", map[string]string{"ENV": "production", "ADMIN_API_TOKEN": "x", "AUDIT_STORE": "sqlite"}, "ENCRYPTION_KEY must be set"},
		{"production default admin token", map[string]string{"ENV": "production", "ENCRYPTION_KEY": "k", "AUDIT_STORE": "sqlite"}, "ADMIN_API_TOKEN must be set"},
		{"production memory store", map[string]string{"ENV": "production", "ENCRYPTION_KEY": "k", "ADMIN_API_TOKEN": "x"}, "AUDIT_STORE=memory is not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9999")
	// godotenv only fills variables that are absent, not empty.
	require.NoError(t, os.Unsetenv("ALERT_TOPIC"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADDR=:7000\nALERT_TOPIC=from.dotenv\n"), 0o600))

	require.NoError(t, LoadDotEnv(path))

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr, "existing variables win")
	assert.Equal(t, "from.dotenv", cfg.AlertTopic)

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
