package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	"github.com/fulluproar/commerce-backend/pkg/pagination"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the order and its items inside the caller's transaction.
func (r *Repository) Create(tx *gorm.DB, order *models.Order) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(order).Error
}

// FindByID loads the order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads the order inside the transaction for a status
// transition.
func (r *Repository) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// TransitionStatus applies a guarded status change. Zero rows affected means
// the order was not in the expected source status.
func (r *Repository) TransitionStatus(tx *gorm.DB, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns a page of orders newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status enums.OrderStatus, params pagination.Params) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if status != "" {
		query = query.Where("status = ?", status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GamePriceCents returns the price of an active game.
func (r *Repository) GamePriceCents(ctx context.Context, id uuid.UUID) (int, bool, error) {
	var game models.Game
	err := r.db.WithContext(ctx).
		Select("id", "price_cents").
		Where("id = ? AND is_active = ?", id, true).
		First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return game.PriceCents, true, nil
}

// MerchPriceCents returns the price of an active merch item.
func (r *Repository) MerchPriceCents(ctx context.Context, id uuid.UUID) (int, bool, error) {
	var item models.MerchItem
	err := r.db.WithContext(ctx).
		Select("id", "price_cents").
		Where("id = ? AND is_active = ?", id, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return item.PriceCents, true, nil
}
