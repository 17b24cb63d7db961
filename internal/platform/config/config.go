// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/middleware/metadata"
	pstrings "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/strings"
)

// DefaultAdminToken is the development admin token. Refused in production.
const DefaultAdminToken = "dev-admin-token-change-in-production"

// Audit store backends.
const (
	AuditStoreMemory   = "memory"
	AuditStorePostgres = "postgres"
	AuditStoreSQLite   = "sqlite"
	AuditStoreRedis    = "redis"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the immutable process configuration, resolved once at startup.
type Config struct {
	Addr      string
	Env       string // "development" (default) or "production"
	LogLevel  string // debug, info, warn, error
	LogFormat string // json (default) or text

	EncryptionKey   string
	SensitiveFields []string // merged into the default sensitive field set

	AdminAPIToken string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	AuditStore  string
	DatabaseURL string
	SQLitePath  string
	AuditTable  string
	AuditStream string
	Redis       RedisConfig

	KafkaBrokers    []string
	AlertTopic      string
	AlertWebhookURL string

	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies lists proxy addresses or CIDR ranges whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadDotEnv loads variables from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:            getEnv("ADDR", ":8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		EncryptionKey:   os.Getenv("ENCRYPTION_KEY"),
		SensitiveFields: pstrings.SplitList(os.Getenv("SENSITIVE_FIELDS")),
		AdminAPIToken:   getEnv("ADMIN_API_TOKEN", DefaultAdminToken),
		JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:       os.Getenv("JWT_ISSUER"),
		JWTAudience:     os.Getenv("JWT_AUDIENCE"),
		AuditStore:      strings.ToLower(getEnv("AUDIT_STORE", AuditStoreMemory)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getEnv("SQLITE_PATH", "storefront_audit.db"),
		AuditTable:      getEnv("AUDIT_TABLE", "audit_log"),
		AuditStream:     getEnv("AUDIT_STREAM", "storefront:audit"),
		KafkaBrokers:    pstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
		AlertTopic:      getEnv("ALERT_TOPIC", "storefront.security.alerts"),
		AlertWebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		TrustedProxies:  pstrings.SplitList(os.Getenv("TRUSTED_PROXIES")),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	var err error
	if cfg.RateLimitRPS, err = parseFloat("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseInt("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if _, err := metadata.ParseTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	switch cfg.AuditStore {
	case AuditStoreMemory:
		cfg.Warnings = append(cfg.Warnings, "AUDIT_STORE=memory: audit entries are lost on restart")
	case AuditStorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when AUDIT_STORE=postgres")
		}
	case AuditStoreRedis:
		if cfg.Redis.URL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when AUDIT_STORE=redis")
		}
	case AuditStoreSQLite:
	default:
		return nil, fmt.Errorf("unknown AUDIT_STORE %q (want memory, postgres, sqlite or redis)", cfg.AuditStore)
	}

	if cfg.EncryptionKey == "" {
		cfg.Warnings = append(cfg.Warnings, "ENCRYPTION_KEY not set: operations on sensitive fields will fail")
	}
	if cfg.AdminAPIToken == DefaultAdminToken {
		cfg.Warnings = append(cfg.Warnings, "ADMIN_API_TOKEN not set: using insecure default")
	}
	if cfg.JWTSigningKey == "" {
		cfg.Warnings = append(cfg.Warnings, "JWT_SIGNING_KEY not set: bearer tokens will be rejected")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.EncryptionKey == "" {
			return nil, fmt.Errorf("ENCRYPTION_KEY must be set in production (ENV=production)")
		}
		if cfg.AdminAPIToken == DefaultAdminToken {
			return nil, fmt.Errorf("ADMIN_API_TOKEN must be set in production (ENV=production)")
		}
		if cfg.AuditStore == AuditStoreMemory {
			return nil, fmt.Errorf("AUDIT_STORE=memory is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}
