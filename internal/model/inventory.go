package model

import (
	"time"

	"github.com/google/uuid"
)

// InventoryRecord is one row of a user's uploaded sales/stock snapshot.
// Uploads always replace the whole snapshot for a user, never merge into it.
type InventoryRecord struct {
	BaseModel
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_inventory_series,priority:1" json:"-" validate:"uuid_required"`
	ProductID      string    `gorm:"type:varchar(100);not null;index:idx_inventory_series,priority:2" json:"product_id" validate:"required"`
	ProductName    string    `gorm:"type:varchar(255);not null" json:"product_name" validate:"required"`
	Region         string    `gorm:"type:varchar(100);not null;index:idx_inventory_series,priority:3" json:"region" validate:"required"`
	Date           time.Time `gorm:"not null;index" json:"date" validate:"required"`
	UnitsSold      float64   `gorm:"not null" json:"units_sold" validate:"gte=0"`
	StockAvailable float64   `gorm:"not null" json:"stock_available" validate:"gte=0"`
}

// TableName specifies the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}
