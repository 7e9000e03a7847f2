package service

import (
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"

	"github.com/google/uuid"
)

// DashboardSummary is the overview card data for one user.
type DashboardSummary struct {
	TotalProducts  int64 `json:"total_products"`
	TotalRecords   int64 `json:"total_records"`
	TotalForecasts int64 `json:"total_forecasts"`
	HighRiskCount  int64 `json:"high_risk_count"`
}

type DashboardService interface {
	GetSummary(userID uuid.UUID) (*DashboardSummary, error)
}

type dashboardService struct {
	invRepo      repository.InventoryRepository
	forecastRepo repository.ForecastRepository
}

func NewDashboardService(invRepo repository.InventoryRepository, forecastRepo repository.ForecastRepository) DashboardService {
	return &dashboardService{invRepo: invRepo, forecastRepo: forecastRepo}
}

func (s *dashboardService) GetSummary(userID uuid.UUID) (*DashboardSummary, error) {
	var summary DashboardSummary
	var err error

	if summary.TotalProducts, err = s.invRepo.CountProducts(userID); err != nil {
		return nil, err
	}
	if summary.TotalRecords, err = s.invRepo.CountByUser(userID); err != nil {
		return nil, err
	}
	if summary.TotalForecasts, err = s.forecastRepo.CountByUser(userID); err != nil {
		return nil, err
	}
	if summary.HighRiskCount, err = s.forecastRepo.CountByRisk(userID, model.RiskHigh); err != nil {
		return nil, err
	}

	return &summary, nil
}
