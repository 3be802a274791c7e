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
	Oracle       OracleConfig
	Notification NotificationConfig
	Scheduling   SchedulingConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	PipelineWorkers       int
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

// AuthConfig defines worker console authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// OracleConfig points at the external classification backend. The oracle is
// always optional: an empty URL disables it and the rule strategy runs alone.
type OracleConfig struct {
	URL            string
	TimeoutSeconds int
}

// NotificationConfig holds confirmation delivery endpoints.
type NotificationConfig struct {
	EmailFrom      string
	WebhookURL     string
	TimeoutSeconds int
}

// SchedulingConfig carries the slot allocation tunables. Lead hours set how
// far from submission each urgency starts its slot search.
type SchedulingConfig struct {
	HorizonDays       int
	CriticalLeadHours int
	HighLeadHours     int
	MediumLeadHours   int
	LowLeadHours      int
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
			Name:                  getEnv("APP_NAME", "frontline-case-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			PipelineWorkers:       getEnvAsInt("PIPELINE_WORKERS", 4),
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
		Oracle: OracleConfig{
			URL:            getEnv("ORACLE_URL", ""),
			TimeoutSeconds: getEnvAsInt("ORACLE_TIMEOUT_SECONDS", 5),
		},
		Notification: NotificationConfig{
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 5),
		},
		Scheduling: SchedulingConfig{
			HorizonDays:       getEnvAsInt("SCHEDULING_HORIZON_DAYS", 14),
			CriticalLeadHours: getEnvAsInt("SCHEDULING_CRITICAL_LEAD_HOURS", 0),
			HighLeadHours:     getEnvAsInt("SCHEDULING_HIGH_LEAD_HOURS", 4),
			MediumLeadHours:   getEnvAsInt("SCHEDULING_MEDIUM_LEAD_HOURS", 24),
			LowLeadHours:      getEnvAsInt("SCHEDULING_LOW_LEAD_HOURS", 72),
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

// Timeout returns the bound on a single oracle call.
func (o OracleConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// Enabled reports whether the oracle strategy should be constructed.
func (o OracleConfig) Enabled() bool {
	return o.URL != ""
}

// Timeout returns the bound on a single delivery attempt.
func (n NotificationConfig) Timeout() time.Duration {
	if n.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(n.TimeoutSeconds) * time.Second
}

// Horizon returns the slot scan bound as a duration.
func (s SchedulingConfig) Horizon() time.Duration {
	days := s.HorizonDays
	if days <= 0 {
		days = 14
	}
	return time.Duration(days) * 24 * time.Hour
}

// LeadTime returns how far from submission the slot search starts for an
// urgency. Critical cases search from now.
func (s SchedulingConfig) LeadTime(urgency string) time.Duration {
	hours := 0
	switch urgency {
	case "CRITICAL":
		hours = s.CriticalLeadHours
	case "HIGH":
		hours = s.HighLeadHours
	case "MEDIUM":
		hours = s.MediumLeadHours
	default:
		hours = s.LowLeadHours
	}
	if hours < 0 {
		hours = 0
	}
	return time.Duration(hours) * time.Hour
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
