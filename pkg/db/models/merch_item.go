package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MerchItem is a catalog entry for apparel or accessories. Sizes are stocked
// independently; see MerchInventory.
type MerchItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;uniqueIndex;not null"`
	PriceCents int       `gorm:"column:price_cents;not null;default:0"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Inventory []MerchInventory `gorm:"foreignKey:MerchID;references:ID"`
}

// TableName implements gorm's Tabler.
func (MerchItem) TableName() string {
	return "merch_items"
}

// BeforeCreate assigns the id when the caller has not.
func (m *MerchItem) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
