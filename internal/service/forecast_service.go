package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockcast-api/internal/lock"
	"stockcast-api/internal/model"
	"stockcast-api/internal/repository"
	"stockcast-api/internal/ws"
	"stockcast-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNoHistoricalData  = errors.New("no historical data")
	ErrOracleUnavailable = errors.New("forecast generation failed")
	ErrForecastNotFound  = errors.New("forecast not found")
)

// Oracle is the external prediction service. It takes a text prompt and
// returns free text expected to contain a JSON forecast; schema compliance
// is not guaranteed and callers must validate defensively.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ForecastRequest identifies the series to forecast.
type ForecastRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`
	Region      string `json:"region" validate:"required"`
}

type ForecastService interface {
	// GenerateForecast produces or refreshes the single live forecast for
	// (user, product, region). The bool result is true when a new record
	// was created, false when an existing one was updated in place.
	GenerateForecast(ctx context.Context, userID uuid.UUID, req ForecastRequest) (*model.Forecast, bool, error)
	GetForecasts(userID uuid.UUID, filter repository.ForecastFilter) ([]model.Forecast, error)
	GetForecastByID(userID, id uuid.UUID) (*model.Forecast, error)
}

type forecastService struct {
	invRepo      repository.InventoryRepository
	forecastRepo repository.ForecastRepository
	oracle       Oracle
	locker       lock.Locker
	wsHub        *ws.Hub
	logger       *logrus.Logger
}

func NewForecastService(
	invRepo repository.InventoryRepository,
	forecastRepo repository.ForecastRepository,
	oracle Oracle,
	locker lock.Locker,
	hub *ws.Hub,
	logger *logrus.Logger,
) ForecastService {
	return &forecastService{
		invRepo:      invRepo,
		forecastRepo: forecastRepo,
		oracle:       oracle,
		locker:       locker,
		wsHub:        hub,
		logger:       logger,
	}
}

// userLockKey scopes uploads and forecast generation to one lock per user so
// a forecast can never race a snapshot replacement for the same account.
func userLockKey(userID uuid.UUID) string {
	return "stockcast:user:" + userID.String()
}

const userLockTTL = time.Minute

func (s *forecastService) GenerateForecast(ctx context.Context, userID uuid.UUID, req ForecastRequest) (*model.Forecast, bool, error) {
	if errs := validator.ValidateStruct(&req); len(errs) > 0 {
		return nil, false, errors.New("Validation failed: " + errs[0].Message())
	}

	release, err := s.locker.Acquire(ctx, userLockKey(userID), userLockTTL)
	if err != nil {
		return nil, false, err
	}
	defer release()

	records, err := s.invRepo.FindSeries(userID, req.ProductID, req.Region)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, fmt.Errorf(
			"%w for product %q in region %q. Please upload CSV data for this product and region combination",
			ErrNoHistoricalData, req.ProductID, req.Region,
		)
	}

	analytics := ComputeAnalytics(records)

	prompt := buildForecastPrompt(req.ProductName, req.Region, analytics)
	content, err := s.oracle.Complete(ctx, prompt)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id":    userID,
			"product_id": req.ProductID,
			"region":     req.Region,
		}).WithError(err).Error("oracle call failed")
		return nil, false, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	prediction := decodeOraclePrediction(content)

	// Business rule: predicted demand above current stock is always HIGH
	// risk, whatever the oracle said.
	riskLevel := prediction.RiskLevel
	action := prediction.RecommendedAction
	if prediction.PredictedDemand > analytics.CurrentStock {
		riskLevel = model.RiskHigh
		action = fmt.Sprintf(
			"URGENT: Reorder required. Predicted demand (%.0f) exceeds current stock (%.0f). %s",
			prediction.PredictedDemand, analytics.CurrentStock, action,
		)
	}

	forecast, created, err := s.upsertForecast(userID, req, analytics, prediction, riskLevel, action)
	if err != nil {
		return nil, false, err
	}

	if s.wsHub != nil {
		go s.wsHub.BroadcastEvent(ws.EventForecastGenerated, userID, map[string]interface{}{
			"product_id": forecast.ProductID,
			"region":     forecast.Region,
			"risk_level": forecast.RiskLevel,
		})
	}

	return forecast, created, nil
}

func (s *forecastService) upsertForecast(
	userID uuid.UUID,
	req ForecastRequest,
	analytics AnalyticsResult,
	prediction oraclePrediction,
	riskLevel model.RiskLevel,
	action string,
) (*model.Forecast, bool, error) {
	snapshot := model.ForecastAnalytics{
		MovingAverage:      analytics.MovingAverage,
		GrowthRate:         analytics.GrowthRate,
		SalesVelocity:      analytics.SalesVelocity,
		RegionalVolatility: analytics.RegionalVolatility,
	}

	existing, err := s.forecastRepo.FindByKey(userID, req.ProductID, req.Region)
	switch {
	case err == nil:
		existing.ProductName = req.ProductName
		existing.CurrentStock = analytics.CurrentStock
		existing.PredictedDemand = prediction.PredictedDemand
		existing.ConfidenceScore = prediction.ConfidenceScore
		existing.RiskLevel = riskLevel
		existing.Reasoning = prediction.Reasoning
		existing.RecommendedAction = action
		existing.Analytics = snapshot
		existing.ForecastDate = time.Now().UTC()
		existing.DataPointsUsed = analytics.DataPoints
		if err := s.forecastRepo.Save(existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		forecast := &model.Forecast{
			UserID:            userID,
			ProductID:         req.ProductID,
			ProductName:       req.ProductName,
			Region:            req.Region,
			CurrentStock:      analytics.CurrentStock,
			PredictedDemand:   prediction.PredictedDemand,
			ConfidenceScore:   prediction.ConfidenceScore,
			RiskLevel:         riskLevel,
			Reasoning:         prediction.Reasoning,
			RecommendedAction: action,
			Analytics:         snapshot,
			ForecastDate:      time.Now().UTC(),
			DataPointsUsed:    analytics.DataPoints,
		}
		if err := s.forecastRepo.Create(forecast); err != nil {
			return nil, false, err
		}
		return forecast, true, nil

	default:
		return nil, false, err
	}
}

func (s *forecastService) GetForecasts(userID uuid.UUID, filter repository.ForecastFilter) ([]model.Forecast, error) {
	return s.forecastRepo.FindAll(userID, filter)
}

func (s *forecastService) GetForecastByID(userID, id uuid.UUID) (*model.Forecast, error) {
	forecast, err := s.forecastRepo.FindByID(userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrForecastNotFound
	}
	if err != nil {
		return nil, err
	}
	return forecast, nil
}

// buildForecastPrompt embeds the analytics signals into the instruction the
// oracle answers with a structured JSON forecast.
func buildForecastPrompt(productName, region string, analytics AnalyticsResult) string {
	return fmt.Sprintf(`You are a business inventory analyst with expertise in demand forecasting and supply chain management. Analyze the following inventory data and provide a professional forecast.

Product: %s
Region: %s

Analytics Summary:
- 7-Day Moving Average: %.2f units/day
- Growth Rate: %.2f%%
- Sales Velocity: %.2f units/day
- Regional Volatility: %.2f%%
- Current Stock: %.0f units
- Historical Data Points: %d

Based on these deterministic signals, provide your analysis as a JSON object with exactly these fields:
{
  "predictedDemand": <number representing expected demand for next period>,
  "confidenceScore": <number 0-100 representing confidence in the prediction>,
  "riskLevel": "LOW" | "MEDIUM" | "HIGH",
  "reasoning": "<plain English explanation of your analysis, trends observed, and factors considered>",
  "recommendedAction": "<clear, actionable recommendation in plain English>"
}

Consider:
- The moving average indicates recent sales trends
- Growth rate shows whether demand is increasing or decreasing
- Sales velocity indicates the pace of sales
- Volatility indicates demand stability
- Current stock levels relative to predicted demand

IMPORTANT: Respond with ONLY a valid JSON object. No markdown, no code blocks, no additional text. Just the JSON object.`,
		productName, region,
		analytics.MovingAverage, analytics.GrowthRate, analytics.SalesVelocity,
		analytics.RegionalVolatility, analytics.CurrentStock, analytics.DataPoints,
	)
}

// oraclePrediction is the validated structured forecast from the oracle.
type oraclePrediction struct {
	PredictedDemand   float64
	ConfidenceScore   float64
	RiskLevel         model.RiskLevel
	Reasoning         string
	RecommendedAction string
}

// rawOraclePrediction uses pointers so a missing number is distinguishable
// from an explicit zero.
type rawOraclePrediction struct {
	PredictedDemand   *float64 `json:"predictedDemand"`
	ConfidenceScore   *float64 `json:"confidenceScore"`
	RiskLevel         string   `json:"riskLevel"`
	Reasoning         string   `json:"reasoning"`
	RecommendedAction string   `json:"recommendedAction"`
}

// fallbackPrediction is substituted whenever the oracle's reply violates the
// schema, keeping the pipeline total instead of failing the request.
func fallbackPrediction() oraclePrediction {
	return oraclePrediction{
		PredictedDemand:   0,
		ConfidenceScore:   0,
		RiskLevel:         model.RiskMedium,
		Reasoning:         "Unable to parse AI response. Please review data manually.",
		RecommendedAction: "Review inventory data and generate forecast manually.",
	}
}

// decodeOraclePrediction strictly decodes and validates the oracle's reply.
// Code fences are tolerated since models wrap JSON in them despite
// instructions; everything else must match the schema or the deterministic
// fallback is used.
func decodeOraclePrediction(content string) oraclePrediction {
	jsonText := strings.TrimSpace(content)
	jsonText = strings.ReplaceAll(jsonText, "```json", "")
	jsonText = strings.ReplaceAll(jsonText, "```", "")

	start := strings.Index(jsonText, "{")
	end := strings.LastIndex(jsonText, "}")
	if start < 0 || end <= start {
		return fallbackPrediction()
	}
	jsonText = jsonText[start : end+1]

	var raw rawOraclePrediction
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return fallbackPrediction()
	}

	if raw.PredictedDemand == nil || raw.ConfidenceScore == nil {
		return fallbackPrediction()
	}
	if *raw.ConfidenceScore < 0 || *raw.ConfidenceScore > 100 {
		return fallbackPrediction()
	}
	risk := model.RiskLevel(raw.RiskLevel)
	if !risk.IsValid() {
		return fallbackPrediction()
	}
	if raw.Reasoning == "" || raw.RecommendedAction == "" {
		return fallbackPrediction()
	}

	return oraclePrediction{
		PredictedDemand:   *raw.PredictedDemand,
		ConfidenceScore:   *raw.ConfidenceScore,
		RiskLevel:         risk,
		Reasoning:         raw.Reasoning,
		RecommendedAction: raw.RecommendedAction,
	}
}
