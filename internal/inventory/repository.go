package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
)

// Repository owns all SQL against the two stock tables. Mutations only happen
// through the conditional/atomic statements here; nothing reads a row and
// writes it back.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// StockLevel is one row of a stock read.
type StockLevel struct {
	Key       string
	Quantity  int
	Reserved  int
	Available int
}

// LowStockRow is one row of the low-stock report.
type LowStockRow struct {
	Kind      enums.ItemKind `json:"kind"`
	SubjectID uuid.UUID      `json:"subject_id"`
	Size      string         `json:"size,omitempty"`
	Name      string         `json:"name"`
	Quantity  int            `json:"quantity"`
	Reserved  int            `json:"reserved"`
}

// Reserve applies the conditional reservation for a single item inside the
// caller's transaction. Zero rows affected means the item cannot be covered
// by the remaining availability and the whole transaction must abort.
func (r *Repository) Reserve(tx *gorm.DB, item Item) error {
	var result *gorm.DB
	switch item.Kind {
	case enums.ItemKindGame:
		result = tx.Model(&models.GameInventory{}).
			Where("game_id = ? AND quantity - reserved >= ?", item.SubjectID, item.Qty).
			Update("reserved", gorm.Expr("reserved + ?", item.Qty))
	case enums.ItemKindMerch:
		result = tx.Model(&models.MerchInventory{}).
			Where("merch_id = ? AND size = ? AND quantity - reserved >= ?", item.SubjectID, item.Size, item.Qty).
			Update("reserved", gorm.Expr("reserved + ?", item.Qty))
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		available := r.availableInTx(tx, item)
		return pkgerrors.New(
			pkgerrors.CodeInsufficientStock,
			fmt.Sprintf("insufficient stock for %s: requested %d, available %d", item.Label(), item.Qty, available),
		).WithDetails(map[string]any{
			"key":       item.Key(),
			"requested": item.Qty,
			"available": available,
		})
	}
	return nil
}

// Release decrements reserved by the item quantity, floored at zero. The CASE
// clamp keeps duplicate or out-of-order releases from driving the column
// negative.
func (r *Repository) Release(tx *gorm.DB, item Item) error {
	clamp := gorm.Expr("CASE WHEN reserved > ? THEN reserved - ? ELSE 0 END", item.Qty, item.Qty)
	switch item.Kind {
	case enums.ItemKindGame:
		return tx.Model(&models.GameInventory{}).
			Where("game_id = ?", item.SubjectID).
			Update("reserved", clamp).Error
	case enums.ItemKindMerch:
		return tx.Model(&models.MerchInventory{}).
			Where("merch_id = ? AND size = ?", item.SubjectID, item.Size).
			Update("reserved", clamp).Error
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
}

// Commit finalizes a reservation: quantity and reserved both drop by the item
// quantity, each floored at zero. Availability is not re-validated; the prior
// reservation already enforced the invariant.
func (r *Repository) Commit(tx *gorm.DB, item Item) error {
	updates := map[string]any{
		"quantity": gorm.Expr("CASE WHEN quantity > ? THEN quantity - ? ELSE 0 END", item.Qty, item.Qty),
		"reserved": gorm.Expr("CASE WHEN reserved > ? THEN reserved - ? ELSE 0 END", item.Qty, item.Qty),
	}
	switch item.Kind {
	case enums.ItemKindGame:
		return tx.Model(&models.GameInventory{}).
			Where("game_id = ?", item.SubjectID).
			Updates(updates).Error
	case enums.ItemKindMerch:
		return tx.Model(&models.MerchInventory{}).
			Where("merch_id = ? AND size = ?", item.SubjectID, item.Size).
			Updates(updates).Error
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
}

// StockLevel reads the current counters for one item.
func (r *Repository) StockLevel(db *gorm.DB, item Item) (StockLevel, error) {
	switch item.Kind {
	case enums.ItemKindGame:
		var row models.GameInventory
		if err := db.First(&row, "game_id = ?", item.SubjectID).Error; err != nil {
			return StockLevel{}, err
		}
		return StockLevel{Key: item.Key(), Quantity: row.Quantity, Reserved: row.Reserved, Available: row.Quantity - row.Reserved}, nil
	case enums.ItemKindMerch:
		var row models.MerchInventory
		if err := db.First(&row, "merch_id = ? AND size = ?", item.SubjectID, item.Size).Error; err != nil {
			return StockLevel{}, err
		}
		return StockLevel{Key: item.Key(), Quantity: row.Quantity, Reserved: row.Reserved, Available: row.Quantity - row.Reserved}, nil
	default:
		return StockLevel{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
}

// LowStock returns every stock record at or below the threshold across both
// families, joined with display names, games first then merch.
func (r *Repository) LowStock(db *gorm.DB, threshold int) ([]LowStockRow, error) {
	var games []LowStockRow
	err := db.Model(&models.GameInventory{}).
		Select("'game' AS kind, game_inventory.game_id AS subject_id, '' AS size, games.title AS name, game_inventory.quantity, game_inventory.reserved").
		Joins("JOIN games ON games.id = game_inventory.game_id").
		Where("game_inventory.quantity <= ?", threshold).
		Order("game_inventory.quantity ASC").
		Scan(&games).Error
	if err != nil {
		return nil, err
	}

	var merch []LowStockRow
	err = db.Model(&models.MerchInventory{}).
		Select("'merch' AS kind, merch_inventory.merch_id AS subject_id, merch_inventory.size, merch_items.name AS name, merch_inventory.quantity, merch_inventory.reserved").
		Joins("JOIN merch_items ON merch_items.id = merch_inventory.merch_id").
		Where("merch_inventory.quantity <= ?", threshold).
		Order("merch_inventory.quantity ASC").
		Scan(&merch).Error
	if err != nil {
		return nil, err
	}

	return append(games, merch...), nil
}

// SetStock upserts the total quantity for a record, leaving reserved intact.
func (r *Repository) SetStock(tx *gorm.DB, item Item, quantity int) error {
	if quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}
	switch item.Kind {
	case enums.ItemKindGame:
		row := models.GameInventory{GameID: item.SubjectID, Quantity: quantity}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": quantity}),
		}).Create(&row).Error
	case enums.ItemKindMerch:
		row := models.MerchInventory{MerchID: item.SubjectID, Size: item.Size, Quantity: quantity}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "merch_id"}, {Name: "size"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": quantity}),
		}).Create(&row).Error
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown item kind %q", item.Kind))
	}
}

func (r *Repository) availableInTx(tx *gorm.DB, item Item) int {
	level, err := r.StockLevel(tx, item)
	if err != nil {
		return 0
	}
	return level.Available
}
