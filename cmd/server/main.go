package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/smartcity/weather-predictor/internal/classifier"
	"github.com/smartcity/weather-predictor/internal/config"
	"github.com/smartcity/weather-predictor/internal/delivery/http"
	"github.com/smartcity/weather-predictor/internal/observability"
	"github.com/smartcity/weather-predictor/internal/repository/memory"
	"github.com/smartcity/weather-predictor/internal/repository/postgres"
	"github.com/smartcity/weather-predictor/internal/repository/sqlite"
	"github.com/smartcity/weather-predictor/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := observability.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	if envErr != nil {
		log.Debug("no .env file found, using system environment")
	}
	metrics := observability.NewMetrics()

	// Storage
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("closing store", "error", err)
		}
	}()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	log.Info("observation store ready", "driver", cfg.StoreDriver)

	// Classifier
	clf, err := loadClassifier(ctx, cfg, log)
	if err != nil {
		return err
	}
	metrics.ModelLoaded.Set(1)

	// Dependency Injection: Services
	predictionSvc := service.NewPredictionService(store, clf, log, metrics)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "Weather Predictor v1.0",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          http.ErrorHandler,
		DisableStartupMessage: cfg.Env == "production",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, predictionSvc)

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		serverErr <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Warn("server forced to shutdown", "error", err)
	}
	log.Info("server exited gracefully")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (service.ObservationStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return memory.NewRepository(), nil
	default:
		return sqlite.Open(cfg.DatabasePath)
	}
}

func loadClassifier(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Classifier, error) {
	if cfg.ClassifierBackend == config.BackendRemote {
		clf, err := classifier.ConnectRemote(ctx, cfg.MLServiceURL, cfg.MLTimeout)
		if err != nil {
			return nil, err
		}
		log.Info("remote classifier connected", "url", cfg.MLServiceURL)
		return clf, nil
	}

	clf, err := classifier.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	log.Info("model loaded", "path", clf.Path(), "kind", clf.Kind())
	return clf, nil
}
