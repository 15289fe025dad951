package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Classifier backends
const (
	BackendFile   = "file"
	BackendRemote = "remote"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port string
	Env  string

	StoreDriver  string
	DatabasePath string
	DatabaseURL  string

	ClassifierBackend string
	ModelPath         string
	MLServiceURL      string
	MLTimeout         time.Duration

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment, applying defaults where unset.
// Callers that want .env support load it with godotenv before calling Load.
func Load() (*Config, error) {
	mlTimeout, err := parseDuration("ML_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("GO_ENV", "development"),
		StoreDriver:       getEnv("STORE_DRIVER", DriverSQLite),
		DatabasePath:      getEnv("DATABASE_PATH", "weather_data.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		ClassifierBackend: getEnv("CLASSIFIER_BACKEND", BackendFile),
		ModelPath:         getEnv("MODEL_PATH", "model.json"),
		MLServiceURL:      getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		MLTimeout:         mlTimeout,
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		ShutdownTimeout:   shutdownTimeout,
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
		if cfg.DatabasePath == "" {
			return nil, errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.ClassifierBackend {
	case BackendFile:
		if cfg.ModelPath == "" {
			return nil, errors.New("MODEL_PATH is required for the file classifier")
		}
	case BackendRemote:
		if cfg.MLServiceURL == "" {
			return nil, errors.New("ML_SERVICE_URL is required for the remote classifier")
		}
	default:
		return nil, fmt.Errorf("invalid CLASSIFIER_BACKEND %q", cfg.ClassifierBackend)
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
