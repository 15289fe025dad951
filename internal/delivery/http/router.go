package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smartcity/weather-predictor/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, predictionSvc *service.PredictionService) {
	handler := NewHandler(predictionSvc)

	// Health check and scrape endpoint
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/observations", handler.ListObservations)
		api.Post("/observations", handler.SubmitObservation)
	}
}
