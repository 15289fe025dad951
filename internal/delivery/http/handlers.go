package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/weather-predictor/internal/domain"
	"github.com/smartcity/weather-predictor/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	predictionSvc *service.PredictionService
}

// NewHandler creates a new handler
func NewHandler(predictionSvc *service.PredictionService) *Handler {
	return &Handler{predictionSvc: predictionSvc}
}

// observationRequest accepts either a JSON body or a submitted form.
// Only type coercion is applied; the date is free text.
type observationRequest struct {
	Date          string  `json:"date" form:"date"`
	Precipitation float64 `json:"precipitation" form:"precipitation"`
	TempMax       float64 `json:"temp_max" form:"temp_max"`
	TempMin       float64 `json:"temp_min" form:"temp_min"`
	Wind          float64 `json:"wind" form:"wind"`
}

func (r observationRequest) reading() domain.Reading {
	return domain.Reading{
		Date:          r.Date,
		Precipitation: r.Precipitation,
		TempMax:       r.TempMax,
		TempMin:       r.TempMin,
		Wind:          r.Wind,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status, code, storage := "ok", fiber.StatusOK, "ok"
	if err := h.predictionSvc.Health(c.Context()); err != nil {
		status, code, storage = "degraded", fiber.StatusServiceUnavailable, err.Error()
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"service": "weather-predictor",
		"version": "1.0.0",
		"storage": storage,
	})
}

// SubmitObservation records a reading and returns its predicted weather
func (h *Handler) SubmitObservation(c *fiber.Ctx) error {
	ctx := c.Context()

	var req observationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	// form coercion accepts "NaN" and "Inf"
	reading := req.reading()
	if err := reading.CheckFinite(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.predictionSvc.SubmitObservation(ctx, reading)
	if err != nil {
		var predErr *domain.PredictionError
		if errors.Is(err, domain.ErrInvalidReading) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if errors.As(err, &predErr) {
			return fiber.NewError(fiber.StatusBadGateway, "Failed to predict weather")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to save observation")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ListObservations returns every stored observation in insertion order
func (h *Handler) ListObservations(c *fiber.Ctx) error {
	ctx := c.Context()

	data, err := h.predictionSvc.ListObservations(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch observations")
	}
	if data == nil {
		data = []domain.Observation{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// ErrorHandler renders fiber errors as {"error":true,"message":...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
