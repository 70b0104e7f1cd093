// Package config reads the process configuration from environment variables.
// A .env file in the working directory is loaded first if it exists. Variables
// already set in the environment take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EventStoreDriver selects the event store engine and, for Postgres, the driver adapter.
type EventStoreDriver string

const (
	DriverPGX    EventStoreDriver = "pgx"
	DriverSQL    EventStoreDriver = "sql"
	DriverSQLX   EventStoreDriver = "sqlx"
	DriverMemory EventStoreDriver = "memory"
)

var (
	// ErrMissingVariables is returned by Load if required variables are not set.
	ErrMissingVariables = errors.New("required environment variables are not set")

	// ErrInvalidValue is returned by Load if a variable has a value that can not be used.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is read once at startup and treated as immutable.
type Config struct {
	// HTTP
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Event store
	EventStoreDriver   EventStoreDriver
	DatabaseURL        string
	DatabaseReplicaURL string
	RunMigrations      bool
	RetryMaxAttempts   int
	RetryBaseDelay     time.Duration

	// Auth
	DeviceAPIKey       string
	DeviceAPIKeyBcrypt string
	AdminJWTSecret     string

	// Rate limit for device endpoints, per client IP
	RateLimitRPS   float64
	RateLimitBurst int

	// Station cache
	RedisURL        string
	StationCacheTTL time.Duration

	// Notifications
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SMTPFrom              string
	NotificationQueueSize int
	NotificationWorkers   int

	// CampusLocation is the time zone due times are shown in
	CampusLocation *time.Location

	// Overdue warnings
	OverdueCronSpec string

	// Seed
	SeedFile string

	// Observability
	OTLPEndpoint string
	LogLevel     string
}

// Load reads the configuration. envFiles default to ".env"; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	cfg := &Config{
		HTTPAddr:        getEnvString("HTTP_ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		EventStoreDriver:   EventStoreDriver(strings.ToLower(getEnvString("EVENTSTORE_DRIVER", string(DriverPGX)))),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DatabaseReplicaURL: os.Getenv("DATABASE_REPLICA_URL"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RetryMaxAttempts:   getEnvInt("RETRY_MAX_ATTEMPTS", 6),
		RetryBaseDelay:     getEnvDuration("RETRY_BASE_DELAY", 10*time.Millisecond),

		DeviceAPIKey:       os.Getenv("DEVICE_API_KEY"),
		DeviceAPIKeyBcrypt: os.Getenv("DEVICE_API_KEY_BCRYPT"),
		AdminJWTSecret:     os.Getenv("ADMIN_JWT_SECRET"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		RedisURL:        os.Getenv("REDIS_URL"),
		StationCacheTTL: getEnvDuration("STATION_CACHE_TTL", 30*time.Second),

		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              getEnvInt("SMTP_PORT", 587),
		SMTPUsername:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:              getEnvString("SMTP_FROM", "PanAguas <no-reply@panaguas.local>"),
		NotificationQueueSize: getEnvInt("NOTIFICATION_QUEUE_SIZE", 256),
		NotificationWorkers:   getEnvInt("NOTIFICATION_WORKERS", 2),

		OverdueCronSpec: getEnvString("OVERDUE_CRON_SPEC", "@every 1m"),

		SeedFile: os.Getenv("SEED_FILE"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		LogLevel:     getEnvString("LOG_LEVEL", "info"),
	}

	campusTimeZone := getEnvString("CAMPUS_TIMEZONE", "UTC")
	location, err := time.LoadLocation(campusTimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: CAMPUS_TIMEZONE=%q", ErrInvalidValue, campusTimeZone)
	}
	cfg.CampusLocation = location

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	switch c.EventStoreDriver {
	case DriverPGX, DriverSQL, DriverSQLX:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: EVENTSTORE_DRIVER=%q", ErrInvalidValue, c.EventStoreDriver)
	}

	if c.DeviceAPIKey == "" && c.DeviceAPIKeyBcrypt == "" {
		missing = append(missing, "DEVICE_API_KEY or DEVICE_API_KEY_BCRYPT")
	}

	if c.AdminJWTSecret == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingVariables, missing)
	}

	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("%w: RETRY_MAX_ATTEMPTS must be at least 1", ErrInvalidValue)
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive", ErrInvalidValue)
	}

	return nil
}

// UsesPostgres reports whether the event store lives in Postgres.
func (c *Config) UsesPostgres() bool {
	return c.EventStoreDriver != DriverMemory
}

// EmailEnabled reports whether an SMTP host is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

// TracingEnabled reports whether an OTLP endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.OTLPEndpoint != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}

	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}

	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}

	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}

	return d
}
