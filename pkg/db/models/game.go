package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Game is a catalog entry for a boxed game.
type Game struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title      string    `gorm:"column:title;not null"`
	Slug       string    `gorm:"column:slug;uniqueIndex;not null"`
	PriceCents int       `gorm:"column:price_cents;not null;default:0"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Inventory *GameInventory `gorm:"foreignKey:GameID;references:ID"`
}

// TableName implements gorm's Tabler.
func (Game) TableName() string {
	return "games"
}

// BeforeCreate assigns the id when the caller has not.
func (g *Game) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
