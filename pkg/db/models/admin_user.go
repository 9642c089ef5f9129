package models

import (
	"time"

	"github.com/fulluproar/commerce-backend/pkg/db/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminUser is a staff account with a role list consumed by the permission
// evaluator.
type AdminUser struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email        string         `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Roles        types.RoleList `gorm:"column:roles;type:text;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName implements gorm's Tabler.
func (AdminUser) TableName() string {
	return "admin_users"
}

// BeforeCreate assigns the id when the caller has not.
func (u *AdminUser) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
