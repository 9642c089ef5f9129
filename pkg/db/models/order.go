package models

import (
	"time"

	"github.com/fulluproar/commerce-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a storefront order. Items hold the reservation quantities applied
// against inventory while the order is pending.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CustomerEmail string            `gorm:"column:customer_email;not null;index"`
	Status        enums.OrderStatus `gorm:"column:status;not null;default:'pending';index"`
	SubtotalCents int               `gorm:"column:subtotal_cents;not null;default:0"`
	TaxCents      int               `gorm:"column:tax_cents;not null;default:0"`
	TotalCents    int               `gorm:"column:total_cents;not null;default:0"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName implements gorm's Tabler.
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the id when the caller has not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
