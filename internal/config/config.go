package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Training     TrainingConfig
	Resolver     ResolverConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// StorageConfig controls where evidence uploads land and how their public
// URLs are formed.
type StorageConfig struct {
	Root    string
	BaseURL string
}

// TrainingConfig tunes the training gate.
type TrainingConfig struct {
	VideoDurationSeconds int
	SkipBufferSeconds    int
	FallbackDelaySeconds int
	DraftTTLHours        int
	AllowQuizRetry       bool
}

// ResolverConfig tunes credential resolution.
type ResolverConfig struct {
	CacheTTLMinutes int
	MaxAttempts     int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "agent-onboarding"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			Root:    getEnv("STORAGE_ROOT", "uploads"),
			BaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		},
		Training: TrainingConfig{
			VideoDurationSeconds: getEnvAsInt("TRAINING_VIDEO_DURATION_SECONDS", 600),
			SkipBufferSeconds:    getEnvAsInt("TRAINING_SKIP_BUFFER_SECONDS", 3),
			FallbackDelaySeconds: getEnvAsInt("TRAINING_FALLBACK_DELAY_SECONDS", 30),
			DraftTTLHours:        getEnvAsInt("WIZARD_DRAFT_TTL_HOURS", 24),
			AllowQuizRetry:       getEnvAsBool("TRAINING_ALLOW_QUIZ_RETRY", false),
		},
		Resolver: ResolverConfig{
			CacheTTLMinutes: getEnvAsInt("RESOLVER_CACHE_TTL_MINUTES", 30),
			MaxAttempts:     getEnvAsInt("RESOLVER_MAX_ATTEMPTS", 3),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheTTL returns the credential cache validity window.
func (r ResolverConfig) CacheTTL() time.Duration {
	if r.CacheTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(r.CacheTTLMinutes) * time.Minute
}

// DraftTTL returns how long an abandoned wizard draft is retained.
func (t TrainingConfig) DraftTTL() time.Duration {
	if t.DraftTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(t.DraftTTLHours) * time.Hour
}

// FallbackDelay returns the wait before a manual mark-as-watched is accepted.
func (t TrainingConfig) FallbackDelay() time.Duration {
	return time.Duration(t.FallbackDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
