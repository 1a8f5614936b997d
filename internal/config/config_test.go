package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"ENVIRONMENT", "LOG_LEVEL", "LOG_OUTPUT", "HTTP_ADDR", "SHUTDOWN_TIMEOUT",
	"OTEL_SERVICE_NAME", "SERVICE_VERSION", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_METRIC_EXPORT_INTERVAL",
}

// clearEnv unsets every key Load reads. godotenv never overrides a variable
// that exists, even empty, so the keys are removed rather than blanked.
func clearEnv(t *testing.T) {
	for _, key := range managedKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogOutput)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "parking-payments", cfg.OTelConfig.ServiceName)
	assert.Equal(t, "1.0.0", cfg.OTelConfig.ServiceVersion)
	assert.Empty(t, cfg.OTelConfig.OTLPEndpoint)
	assert.Equal(t, 5*time.Second, cfg.OTelConfig.ExportInterval)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("OTEL_METRIC_EXPORT_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "development", cfg.OTelConfig.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "http://collector:4318", cfg.OTelConfig.OTLPEndpoint)
	assert.Equal(t, 30*time.Second, cfg.OTelConfig.ExportInterval)
}

func TestInvalidDurationFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	t.Setenv("OTEL_METRIC_EXPORT_INTERVAL", "-1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.OTelConfig.ExportInterval)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "payments.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=warn\nHTTP_ADDR=:7070\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	_, err := Load("does-not-exist.env")
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
