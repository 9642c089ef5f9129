package inventory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
)

// Item is one order line item as seen by the reservation engine. Size is only
// meaningful for merch; games have a single variant.
type Item struct {
	Kind      enums.ItemKind
	SubjectID uuid.UUID
	Size      string
	Qty       int
}

// Key returns the deterministic composite key used for stock-level maps and
// cache entries: "game:<id>" or "merch:<id>:<size>".
func (i Item) Key() string {
	if i.Kind == enums.ItemKindMerch {
		return fmt.Sprintf("%s:%s:%s", i.Kind, i.SubjectID, i.Size)
	}
	return fmt.Sprintf("%s:%s", i.Kind, i.SubjectID)
}

// Label is the human-readable form used in error messages and logs.
func (i Item) Label() string {
	if i.Kind == enums.ItemKindMerch && i.Size != "" {
		return fmt.Sprintf("%s %s (size %s)", i.Kind, i.SubjectID, i.Size)
	}
	return fmt.Sprintf("%s %s", i.Kind, i.SubjectID)
}

// ValidateItems enforces the shared preconditions of every engine operation:
// a non-empty list, positive quantities, known kinds, and a size on every
// merch line.
func ValidateItems(items []Item) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for idx, item := range items {
		if !item.Kind.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unknown kind %q", idx, item.Kind))
		}
		if item.SubjectID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: subject id is required", idx))
		}
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", idx))
		}
		if item.Kind == enums.ItemKindMerch && strings.TrimSpace(item.Size) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: merch items require a size", idx))
		}
	}
	return nil
}
