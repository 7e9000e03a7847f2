package repository

import (
	"stockcast-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForecastFilter narrows forecast listings.
type ForecastFilter struct {
	ProductID string
	Region    string
	RiskLevel model.RiskLevel
	Limit     int
}

type ForecastRepository interface {
	// FindByKey returns the live forecast for one (user, product, region),
	// or gorm.ErrRecordNotFound.
	FindByKey(userID uuid.UUID, productID, region string) (*model.Forecast, error)
	FindByID(userID, id uuid.UUID) (*model.Forecast, error)
	FindAll(userID uuid.UUID, filter ForecastFilter) ([]model.Forecast, error)
	Create(forecast *model.Forecast) error
	Save(forecast *model.Forecast) error
	CountByUser(userID uuid.UUID) (int64, error)
	CountByRisk(userID uuid.UUID, risk model.RiskLevel) (int64, error)
	// DeleteByUser runs inside the snapshot-replacement transaction.
	DeleteByUser(tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type forecastRepo struct {
	db *gorm.DB
}

func NewForecastRepo(db *gorm.DB) ForecastRepository {
	return &forecastRepo{db}
}

func (r *forecastRepo) FindByKey(userID uuid.UUID, productID, region string) (*model.Forecast, error) {
	var forecast model.Forecast
	err := r.db.
		Where("user_id = ? AND product_id = ? AND region = ?", userID, productID, region).
		First(&forecast).Error
	if err != nil {
		return nil, err
	}
	return &forecast, nil
}

func (r *forecastRepo) FindByID(userID, id uuid.UUID) (*model.Forecast, error) {
	var forecast model.Forecast
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&forecast).Error
	if err != nil {
		return nil, err
	}
	return &forecast, nil
}

func (r *forecastRepo) FindAll(userID uuid.UUID, filter ForecastFilter) ([]model.Forecast, error) {
	query := r.db.Where("user_id = ?", userID)

	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.RiskLevel != "" {
		query = query.Where("risk_level = ?", filter.RiskLevel)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var forecasts []model.Forecast
	err := query.Order("updated_at DESC").Limit(limit).Find(&forecasts).Error
	return forecasts, err
}

func (r *forecastRepo) Create(forecast *model.Forecast) error {
	return r.db.Create(forecast).Error
}

func (r *forecastRepo) Save(forecast *model.Forecast) error {
	return r.db.Save(forecast).Error
}

func (r *forecastRepo) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Forecast{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *forecastRepo) CountByRisk(userID uuid.UUID, risk model.RiskLevel) (int64, error) {
	var count int64
	err := r.db.Model(&model.Forecast{}).
		Where("user_id = ? AND risk_level = ?", userID, risk).
		Count(&count).Error
	return count, err
}

func (r *forecastRepo) DeleteByUser(tx *gorm.DB, userID uuid.UUID) (int64, error) {
	result := tx.Where("user_id = ?", userID).Delete(&model.Forecast{})
	return result.RowsAffected, result.Error
}
