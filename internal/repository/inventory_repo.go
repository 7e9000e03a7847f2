package repository

import (
	"time"

	"stockcast-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryFilter narrows inventory queries.
type InventoryFilter struct {
	ProductID string
	Region    string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// ProductSummary is one distinct product present in a user's snapshot.
type ProductSummary struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Regions     []string  `json:"regions"`
	LastUpdated time.Time `json:"last_updated"`
}

type InventoryRepository interface {
	// FindSeries returns the full series for one (user, product, region),
	// ordered by date then record ID so repeated reads are reproducible.
	FindSeries(userID uuid.UUID, productID, region string) ([]model.InventoryRecord, error)
	FindFiltered(userID uuid.UUID, filter InventoryFilter) ([]model.InventoryRecord, error)
	ListProducts(userID uuid.UUID) ([]ProductSummary, error)
	CountByUser(userID uuid.UUID) (int64, error)
	CountProducts(userID uuid.UUID) (int64, error)
	// DeleteByUser and BulkInsert take the surrounding transaction so the
	// delete-then-insert snapshot replacement stays atomic.
	DeleteByUser(tx *gorm.DB, userID uuid.UUID) (int64, error)
	BulkInsert(tx *gorm.DB, records []model.InventoryRecord) error
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindSeries(userID uuid.UUID, productID, region string) ([]model.InventoryRecord, error) {
	var records []model.InventoryRecord
	err := r.db.
		Where("user_id = ? AND product_id = ? AND region = ?", userID, productID, region).
		Order("date ASC, id ASC").
		Find(&records).Error
	return records, err
}

func (r *inventoryRepo) FindFiltered(userID uuid.UUID, filter InventoryFilter) ([]model.InventoryRecord, error) {
	query := r.db.Where("user_id = ?", userID)

	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}

	var records []model.InventoryRecord
	err := query.Order("date DESC").Limit(limit).Find(&records).Error
	return records, err
}

func (r *inventoryRepo) ListProducts(userID uuid.UUID) ([]ProductSummary, error) {
	rows, err := r.db.Model(&model.InventoryRecord{}).
		Select("product_id, MIN(product_name) as product_name, region, MAX(date) as last_updated").
		Where("user_id = ?", userID).
		Group("product_id, region").
		Order("product_name ASC, product_id ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Fold the per-region rows into one summary per product.
	byProduct := make(map[string]*ProductSummary)
	var order []string
	for rows.Next() {
		var (
			productID   string
			productName string
			region      string
			lastUpdated time.Time
		)
		if err := rows.Scan(&productID, &productName, &region, &lastUpdated); err != nil {
			return nil, err
		}

		summary, ok := byProduct[productID]
		if !ok {
			summary = &ProductSummary{ProductID: productID, ProductName: productName}
			byProduct[productID] = summary
			order = append(order, productID)
		}
		summary.Regions = append(summary.Regions, region)
		if lastUpdated.After(summary.LastUpdated) {
			summary.LastUpdated = lastUpdated
		}
	}

	summaries := make([]ProductSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *byProduct[id])
	}
	return summaries, nil
}

func (r *inventoryRepo) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.InventoryRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *inventoryRepo) CountProducts(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.InventoryRecord{}).
		Where("user_id = ?", userID).
		Distinct("product_id").
		Count(&count).Error
	return count, err
}

func (r *inventoryRepo) DeleteByUser(tx *gorm.DB, userID uuid.UUID) (int64, error) {
	result := tx.Where("user_id = ?", userID).Delete(&model.InventoryRecord{})
	return result.RowsAffected, result.Error
}

func (r *inventoryRepo) BulkInsert(tx *gorm.DB, records []model.InventoryRecord) error {
	return tx.CreateInBatches(records, 500).Error
}
