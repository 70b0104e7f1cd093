package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrcrpro/panaguas/internal/config"
)

func Test_Load_Success_WithDefaults(t *testing.T) {
	// arrange
	givenMinimalEnvironment(t)

	// act
	cfg, err := config.Load(noEnvFile(t))

	// assert
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, config.DriverMemory, cfg.EventStoreDriver)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, 6, cfg.RetryMaxAttempts)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryBaseDelay)
	assert.Equal(t, 30*time.Second, cfg.StationCacheTTL)
	assert.Equal(t, 256, cfg.NotificationQueueSize)
	assert.Equal(t, "@every 1m", cfg.OverdueCronSpec)
	assert.False(t, cfg.EmailEnabled())
	assert.False(t, cfg.TracingEnabled())
}

func Test_Load_Success_OverridesFromEnvironment(t *testing.T) {
	// arrange
	givenMinimalEnvironment(t)
	t.Setenv("EVENTSTORE_DRIVER", "sqlx")
	t.Setenv("DATABASE_URL", "postgres://panaguas@localhost/panaguas")
	t.Setenv("STATION_CACHE_TTL", "5s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("SMTP_HOST", "smtp.example.edu")

	// act
	cfg, err := config.Load(noEnvFile(t))

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLX, cfg.EventStoreDriver)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, 5*time.Second, cfg.StationCacheTTL)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 0.001)
	assert.False(t, cfg.RunMigrations)
	assert.True(t, cfg.EmailEnabled())
}

func Test_Load_Success_ReadsEnvFile(t *testing.T) {
	// arrange
	givenMinimalEnvironment(t)
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HTTP_ADDR=:9090\n"), 0o600))

	// act
	cfg, err := config.Load(envFile)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
}

func Test_Load_Error_ReportsAllMissingVariables(t *testing.T) {
	// arrange
	t.Setenv("EVENTSTORE_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DEVICE_API_KEY", "")
	t.Setenv("DEVICE_API_KEY_BCRYPT", "")
	t.Setenv("ADMIN_JWT_SECRET", "")

	// act
	_, err := config.Load(noEnvFile(t))

	// assert
	require.ErrorIs(t, err, config.ErrMissingVariables)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "DEVICE_API_KEY")
	assert.Contains(t, err.Error(), "ADMIN_JWT_SECRET")
}

func Test_Load_Error_UnknownDriver(t *testing.T) {
	// arrange
	givenMinimalEnvironment(t)
	t.Setenv("EVENTSTORE_DRIVER", "mongo")

	// act
	_, err := config.Load(noEnvFile(t))

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func Test_Load_Success_CampusTimeZone(t *testing.T) {
	// arrange
	givenMinimalEnvironment(t)
	t.Setenv("CAMPUS_TIMEZONE", "America/Lima")

	// act
	cfg, err := config.Load(noEnvFile(t))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "America/Lima", cfg.CampusLocation.String())
}

func Test_Load_Error_UnknownCampusTimeZone(t *testing.T) {
	// arrange
	givenMinimalEnvironment(t)
	t.Setenv("CAMPUS_TIMEZONE", "Campus/Nowhere")

	// act
	_, err := config.Load(noEnvFile(t))

	// assert
	assert.ErrorIs(t, err, config.ErrInvalidValue)
}

func givenMinimalEnvironment(t *testing.T) {
	t.Helper()

	t.Setenv("EVENTSTORE_DRIVER", "memory")
	t.Setenv("DEVICE_API_KEY", "device-secret")
	t.Setenv("ADMIN_JWT_SECRET", "admin-secret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("CAMPUS_TIMEZONE", "")
}

func noEnvFile(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "missing.env")
}
