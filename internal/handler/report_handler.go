package handler

import (
	"time"

	"stockcast-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// Export streams the user's forecasts and inventory as a spreadsheet
// GET /api/v1/reports/export
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	workbook, err := h.service.BuildWorkbook(userID, service.ReportFilter{
		ProductID: c.Query("productId"),
		Region:    c.Query("region"),
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build report"})
	}
	defer workbook.Close()

	filename := "stockcast-report-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	if err := workbook.Write(c.Response().BodyWriter()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to write report"})
	}
	return nil
}
