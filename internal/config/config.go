package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

type Config struct {
	Environment     string
	LogLevel        string
	LogOutput       string
	HTTPAddr        string
	ShutdownTimeout time.Duration
	OTelConfig      OTelConfig
}

type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint left empty disables export entirely.
	OTLPEndpoint   string
	ExportInterval time.Duration
}

// Load reads envFiles into the process environment, then builds the config
// from it. With no files given, a missing .env in the working directory is
// not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	environment := getEnv("ENVIRONMENT", "production")
	return &Config{
		Environment:     environment,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogOutput:       getEnv("LOG_OUTPUT", ""),
		HTTPAddr:        getEnv("HTTP_ADDR", ""),
		ShutdownTimeout: parseDuration(getEnv("SHUTDOWN_TIMEOUT", ""), 5*time.Second),
		OTelConfig: OTelConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "parking-payments"),
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			Environment:    environment,
			OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExportInterval: parseDuration(getEnv("OTEL_METRIC_EXPORT_INTERVAL", ""), 5*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
