package handler

import (
	"errors"
	"strconv"

	"stockcast-api/internal/lock"
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"
	"stockcast-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ForecastHandler struct {
	service service.ForecastService
}

func NewForecastHandler(s service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: s}
}

// Generate produces or refreshes the forecast for one (product, region)
// POST /api/v1/forecasts/generate
func (h *ForecastHandler) Generate(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	forecast, created, err := h.service.GenerateForecast(c.Context(), userID, req)
	switch {
	case errors.Is(err, service.ErrNoHistoricalData):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrOracleUnavailable):
		// Detail stays in the logs; the oracle is a third party.
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate AI forecast"})
	case errors.Is(err, lock.ErrBusy):
		return c.Status(409).JSON(fiber.Map{"error": "Another operation for this account is in progress"})
	case err != nil:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	message := "Forecast updated successfully (replaced previous forecast for this product/region)"
	if created {
		message = "Forecast generated successfully"
	}

	return c.JSON(fiber.Map{"message": message, "forecast": forecast})
}

// List returns the user's live forecasts with optional filters
// GET /api/v1/forecasts
func (h *ForecastHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	filter := repository.ForecastFilter{
		ProductID: c.Query("productId"),
		Region:    c.Query("region"),
		RiskLevel: model.RiskLevel(c.Query("riskLevel")),
	}
	if filter.RiskLevel != "" && !filter.RiskLevel.IsValid() {
		return c.Status(400).JSON(fiber.Map{"error": "riskLevel must be LOW, MEDIUM, or HIGH"})
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	forecasts, err := h.service.GetForecasts(userID, filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"forecasts": forecasts, "count": len(forecasts)})
}

// GetByID returns a single forecast owned by the user
// GET /api/v1/forecasts/:id
func (h *ForecastHandler) GetByID(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid forecast ID"})
	}

	forecast, err := h.service.GetForecastByID(userID, id)
	if errors.Is(err, service.ErrForecastNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Forecast not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"forecast": forecast})
}
