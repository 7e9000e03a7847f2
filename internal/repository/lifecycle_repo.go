package repository

import (
	"stockcast-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotResult reports what a snapshot replacement removed.
type SnapshotResult struct {
	RecordsDeleted   int64
	ForecastsDeleted int64
}

// LifecycleRepository owns the full-snapshot replacement: deleting a user's
// inventory records and forecasts must complete before the new rows are
// inserted, and the three steps commit or roll back together.
type LifecycleRepository interface {
	ReplaceUserData(userID uuid.UUID, records []model.InventoryRecord) (SnapshotResult, error)
}

type lifecycleRepo struct {
	db           *gorm.DB
	invRepo      InventoryRepository
	forecastRepo ForecastRepository
}

func NewLifecycleRepo(db *gorm.DB, invRepo InventoryRepository, forecastRepo ForecastRepository) LifecycleRepository {
	return &lifecycleRepo{db: db, invRepo: invRepo, forecastRepo: forecastRepo}
}

func (r *lifecycleRepo) ReplaceUserData(userID uuid.UUID, records []model.InventoryRecord) (SnapshotResult, error) {
	var result SnapshotResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		deleted, err := r.invRepo.DeleteByUser(tx, userID)
		if err != nil {
			return err
		}
		result.RecordsDeleted = deleted

		// Forecasts computed against the superseded snapshot must not linger.
		forecastsDeleted, err := r.forecastRepo.DeleteByUser(tx, userID)
		if err != nil {
			return err
		}
		result.ForecastsDeleted = forecastsDeleted

		return r.invRepo.BulkInsert(tx, records)
	})
	if err != nil {
		return SnapshotResult{}, err
	}
	return result, nil
}
