package models

import (
	"time"

	"github.com/fulluproar/commerce-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is a single line of an order. Size is empty for games.
type OrderItem struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID      `gorm:"column:order_id;type:uuid;not null;index"`
	Kind           enums.ItemKind `gorm:"column:kind;not null"`
	SubjectID      uuid.UUID      `gorm:"column:subject_id;type:uuid;not null"`
	Size           string         `gorm:"column:size;not null;default:''"`
	Qty            int            `gorm:"column:qty;not null"`
	UnitPriceCents int            `gorm:"column:unit_price_cents;not null"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// TableName implements gorm's Tabler.
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeCreate assigns the id when the caller has not.
func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
