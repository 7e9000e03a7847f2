package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"stockcast-api/internal/lock"
	"stockcast-api/internal/repository"
	"stockcast-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service        service.InventoryService
	maxUploadBytes int64
}

func NewInventoryHandler(s service.InventoryService, maxUploadBytes int64) *InventoryHandler {
	return &InventoryHandler{service: s, maxUploadBytes: maxUploadBytes}
}

// Helper to take the authenticated user's ID from JWT context (set by auth middleware)
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals("user_id")
	if raw == nil {
		return uuid.Nil, errors.New("missing user context")
	}
	return uuid.Parse(raw.(string))
}

// UploadCSV replaces the user's whole inventory snapshot
// POST /api/v1/inventory/upload
func (h *InventoryHandler) UploadCSV(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	fileHeader, err := c.FormFile("csv")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "CSV file is required"})
	}
	if fileHeader.Size > h.maxUploadBytes {
		return c.Status(413).JSON(fiber.Map{"error": "CSV file exceeds the upload size limit"})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		return c.Status(400).JSON(fiber.Map{"error": "Only CSV files are allowed"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Failed to read uploaded file"})
	}
	defer file.Close()

	result, err := h.service.UploadSnapshot(c.Context(), userID, file)
	switch {
	case errors.Is(err, service.ErrNoValidRows):
		return c.Status(400).JSON(fiber.Map{
			"error":  "No valid data found in CSV",
			"errors": result.Errors,
		})
	case errors.Is(err, service.ErrBadCSV):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, lock.ErrBusy):
		return c.Status(409).JSON(fiber.Map{"error": "Another operation for this account is in progress"})
	case err != nil:
		return c.Status(500).JSON(fiber.Map{"error": "Failed to upload CSV"})
	}

	return c.JSON(fiber.Map{
		"message":          "CSV uploaded successfully. All previous data has been replaced with this fresh snapshot.",
		"records_inserted": result.RecordsInserted,
		"records_deleted":  result.RecordsDeleted,
		"total_processed":  result.TotalProcessed,
		"errors":           result.Errors,
	})
}

// GetData lists inventory records with optional filters
// GET /api/v1/inventory/data
func (h *InventoryHandler) GetData(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	filter := repository.InventoryFilter{
		ProductID: c.Query("productId"),
		Region:    c.Query("region"),
	}
	if v := c.Query("startDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("endDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.EndDate = &t
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	records, err := h.service.GetInventoryData(userID, filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"data": records, "count": len(records)})
}

// GetProducts lists the distinct products present in the user's snapshot
// GET /api/v1/inventory/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	products, err := h.service.GetProducts(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"products": products})
}
