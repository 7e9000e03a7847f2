package service

import (
	"fmt"

	"stockcast-api/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ReportFilter narrows what goes into an exported report.
type ReportFilter struct {
	ProductID string
	Region    string
}

type ReportService interface {
	// BuildWorkbook renders the user's live forecasts and recent inventory
	// into a spreadsheet. The caller owns closing the file.
	BuildWorkbook(userID uuid.UUID, filter ReportFilter) (*excelize.File, error)
}

type reportService struct {
	invRepo      repository.InventoryRepository
	forecastRepo repository.ForecastRepository
}

func NewReportService(invRepo repository.InventoryRepository, forecastRepo repository.ForecastRepository) ReportService {
	return &reportService{invRepo: invRepo, forecastRepo: forecastRepo}
}

const (
	forecastSheet  = "Forecasts"
	inventorySheet = "Inventory"
)

func (s *reportService) BuildWorkbook(userID uuid.UUID, filter ReportFilter) (*excelize.File, error) {
	forecasts, err := s.forecastRepo.FindAll(userID, repository.ForecastFilter{
		ProductID: filter.ProductID,
		Region:    filter.Region,
		Limit:     50,
	})
	if err != nil {
		return nil, err
	}

	records, err := s.invRepo.FindFiltered(userID, repository.InventoryFilter{
		ProductID: filter.ProductID,
		Region:    filter.Region,
		Limit:     100,
	})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", forecastSheet)
	if _, err := f.NewSheet(inventorySheet); err != nil {
		f.Close()
		return nil, err
	}

	// Forecast sheet headers
	forecastHeaders := []string{
		"ProductID", "ProductName", "Region", "CurrentStock", "PredictedDemand",
		"ConfidenceScore", "RiskLevel", "RecommendedAction", "ForecastDate", "DataPoints",
	}
	for i, h := range forecastHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(forecastSheet, cell, h)
	}
	for i, fc := range forecasts {
		row := i + 2
		f.SetCellValue(forecastSheet, "A"+fmt.Sprint(row), fc.ProductID)
		f.SetCellValue(forecastSheet, "B"+fmt.Sprint(row), fc.ProductName)
		f.SetCellValue(forecastSheet, "C"+fmt.Sprint(row), fc.Region)
		f.SetCellValue(forecastSheet, "D"+fmt.Sprint(row), fc.CurrentStock)
		f.SetCellValue(forecastSheet, "E"+fmt.Sprint(row), fc.PredictedDemand)
		f.SetCellValue(forecastSheet, "F"+fmt.Sprint(row), fc.ConfidenceScore)
		f.SetCellValue(forecastSheet, "G"+fmt.Sprint(row), string(fc.RiskLevel))
		f.SetCellValue(forecastSheet, "H"+fmt.Sprint(row), fc.RecommendedAction)
		f.SetCellValue(forecastSheet, "I"+fmt.Sprint(row), fc.ForecastDate.Format("2006-01-02"))
		f.SetCellValue(forecastSheet, "J"+fmt.Sprint(row), fc.DataPointsUsed)
	}

	// Inventory sheet headers
	inventoryHeaders := []string{"ProductID", "ProductName", "Region", "Date", "UnitsSold", "StockAvailable"}
	for i, h := range inventoryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(inventorySheet, cell, h)
	}
	for i, r := range records {
		row := i + 2
		f.SetCellValue(inventorySheet, "A"+fmt.Sprint(row), r.ProductID)
		f.SetCellValue(inventorySheet, "B"+fmt.Sprint(row), r.ProductName)
		f.SetCellValue(inventorySheet, "C"+fmt.Sprint(row), r.Region)
		f.SetCellValue(inventorySheet, "D"+fmt.Sprint(row), r.Date.Format("2006-01-02"))
		f.SetCellValue(inventorySheet, "E"+fmt.Sprint(row), r.UnitsSold)
		f.SetCellValue(inventorySheet, "F"+fmt.Sprint(row), r.StockAvailable)
	}

	return f, nil
}
