package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"devwise/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Anthropic     AnthropicConfig
	Brave         BraveConfig
	Storage       StorageConfig
	RateLimit     RateLimitConfig
	Budget        BudgetConfig
	Workers       WorkerConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"devwise"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     int    `envconfig:"HTTP_PORT" default:"8080"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis host is configured. Without one the
// service falls back to in-process rate limiting.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type AnthropicConfig struct {
	APIKey string `envconfig:"ANTHROPIC_API_KEY" required:"true"`
	Model  string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-5-20250929"`

	// Per-operation request timeouts
	ChatTimeout       time.Duration `envconfig:"ANTHROPIC_CHAT_TIMEOUT" default:"30s"`
	ResearchTimeout   time.Duration `envconfig:"ANTHROPIC_RESEARCH_TIMEOUT" default:"60s"`
	ExtractionTimeout time.Duration `envconfig:"ANTHROPIC_EXTRACTION_TIMEOUT" default:"120s"`
}

type BraveConfig struct {
	APIKey  string        `envconfig:"BRAVE_API_KEY" required:"true"`
	Timeout time.Duration `envconfig:"BRAVE_TIMEOUT" default:"10s"`

	// Free tier allows 1 request per second; the client paces itself
	RequestsPerSecond float64 `envconfig:"BRAVE_REQUESTS_PER_SECOND" default:"1"`
}

type StorageConfig struct {
	// Root directory for uploaded proposal documents
	Root string `envconfig:"STORAGE_ROOT" default:"/var/lib/devwise/proposals"`

	MaxUploadBytes int64 `envconfig:"STORAGE_MAX_UPLOAD_BYTES" default:"10485760"`
}

type RateLimitConfig struct {
	ExtractionPerHour int `envconfig:"RATE_LIMIT_EXTRACTIONS_PER_HOUR" default:"5"`
	UploadsPerHour    int `envconfig:"RATE_LIMIT_UPLOADS_PER_HOUR" default:"10"`
	ResearchPerHour   int `envconfig:"RATE_LIMIT_RESEARCH_PER_HOUR" default:"30"`
}

type BudgetConfig struct {
	DefaultDailyLimit   float64 `envconfig:"BUDGET_DEFAULT_DAILY_LIMIT" default:"20.00"`
	DefaultMonthlyLimit float64 `envconfig:"BUDGET_DEFAULT_MONTHLY_LIMIT" default:"100.00"`
}

// WorkerConfig contains intervals for background workers
type WorkerConfig struct {
	JobReaperInterval time.Duration `envconfig:"WORKER_JOB_REAPER_INTERVAL" default:"5m"`

	// A research job or extraction stuck in processing longer than its
	// deadline is transitioned to failed by the reaper
	ResearchStaleAfter   time.Duration `envconfig:"WORKER_RESEARCH_STALE_AFTER" default:"10m"`
	ExtractionStaleAfter time.Duration `envconfig:"WORKER_EXTRACTION_STALE_AFTER" default:"15m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
