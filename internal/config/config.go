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
	Notification NotificationConfig
	Lifecycle    LifecycleConfig
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
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig holds notification gateway settings.
type NotificationConfig struct {
	EmailFrom      string
	WebhookURL     string
	TimeoutSeconds int
}

// LifecycleConfig parametrizes the scheduled lifecycle runs.
type LifecycleConfig struct {
	SLAWarningHours        int
	SLAAutoEscalate        bool
	SLACronSpec            string
	AutoAssignCronSpec     string
	AutoAssignStaleMinutes int
	CutCloseCronSpec       string
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
			Name:                  getEnv("APP_NAME", "operations-service"),
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
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "noreply@solterra.example"),
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5),
		},
		Lifecycle: LifecycleConfig{
			SLAWarningHours:        getEnvAsInt("SLA_WARNING_HOURS", 4),
			SLAAutoEscalate:        getEnvAsBool("SLA_AUTO_ESCALATE", true),
			SLACronSpec:            getEnv("SLA_CRON_SPEC", "@every 5m"),
			AutoAssignCronSpec:     getEnv("AUTO_ASSIGN_CRON_SPEC", "@every 10m"),
			AutoAssignStaleMinutes: getEnvAsInt("AUTO_ASSIGN_STALE_MINUTES", 30),
			CutCloseCronSpec:       getEnv("CUT_CLOSE_CRON_SPEC", "5 0 * * *"),
		},
	}

	if cfg.Lifecycle.SLAWarningHours <= 0 {
		return nil, fmt.Errorf("SLA_WARNING_HOURS must be positive, got %d", cfg.Lifecycle.SLAWarningHours)
	}
	if cfg.Lifecycle.AutoAssignStaleMinutes <= 0 {
		return nil, fmt.Errorf("AUTO_ASSIGN_STALE_MINUTES must be positive, got %d", cfg.Lifecycle.AutoAssignStaleMinutes)
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

// Timeout returns the bounded per-send notification timeout.
func (n NotificationConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// StaleAfter returns the auto-assignment staleness threshold.
func (l LifecycleConfig) StaleAfter() time.Duration {
	return time.Duration(l.AutoAssignStaleMinutes) * time.Minute
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
