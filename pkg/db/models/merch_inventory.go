package models

import (
	"time"

	"github.com/google/uuid"
)

// MerchInventory tracks total/reserved counts per merch item and size.
type MerchInventory struct {
	MerchID   uuid.UUID `gorm:"column:merch_id;type:uuid;primaryKey"`
	Size      string    `gorm:"column:size;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	Reserved  int       `gorm:"column:reserved;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements gorm's Tabler.
func (MerchInventory) TableName() string {
	return "merch_inventory"
}
