package model

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel classifies reorder urgency for a product/region.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// IsValid reports whether the value is one of LOW, MEDIUM, HIGH.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ForecastAnalytics is the analytics snapshot embedded in a forecast.
// Forecasts are only valid against the data they were derived from, so the
// signals are stored alongside the prediction.
type ForecastAnalytics struct {
	MovingAverage      float64 `json:"movingAverage"`
	GrowthRate         float64 `json:"growthRate"`
	SalesVelocity      float64 `json:"salesVelocity"`
	RegionalVolatility float64 `json:"regionalVolatility"`
}

// Forecast is the persisted demand prediction for one (user, product, region).
// At most one live forecast exists per key; regeneration updates in place.
type Forecast struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_forecast_key,priority:1" json:"-"`
	ProductID   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_forecast_key,priority:2" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Region      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_forecast_key,priority:3" json:"region"`

	CurrentStock      float64   `gorm:"not null" json:"current_stock"`
	PredictedDemand   float64   `gorm:"not null" json:"predicted_demand"`
	ConfidenceScore   float64   `gorm:"not null" json:"confidence_score"`
	RiskLevel         RiskLevel `gorm:"type:varchar(10);not null;index" json:"risk_level"`
	Reasoning         string    `gorm:"type:text;not null" json:"reasoning"`
	RecommendedAction string    `gorm:"type:text;not null" json:"recommended_action"`

	Analytics ForecastAnalytics `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`

	ForecastDate   time.Time `gorm:"not null" json:"forecast_date"`
	DataPointsUsed int       `gorm:"not null" json:"data_points_used"`
}

// TableName specifies the table name for GORM
func (Forecast) TableName() string {
	return "forecasts"
}
