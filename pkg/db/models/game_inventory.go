package models

import (
	"time"

	"github.com/google/uuid"
)

// GameInventory tracks total/reserved counts per game. Available stock is
// always quantity - reserved; both columns only move through the conditional
// updates in internal/inventory.
type GameInventory struct {
	GameID    uuid.UUID `gorm:"column:game_id;type:uuid;primaryKey"`
	Quantity  int       `gorm:"column:quantity;not null;default:0"`
	Reserved  int       `gorm:"column:reserved;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements gorm's Tabler.
func (GameInventory) TableName() string {
	return "game_inventory"
}
