package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fulluproar/commerce-backend/api/responses"
	"github.com/fulluproar/commerce-backend/api/validators"
	"github.com/fulluproar/commerce-backend/internal/inventory"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
)

type inventoryService interface {
	CheckAvailability(ctx context.Context, items []inventory.Item) bool
	StockLevels(ctx context.Context, items []inventory.Item) (map[string]int, error)
	LowStock(ctx context.Context, threshold int) ([]inventory.LowStockRow, error)
	SetStock(ctx context.Context, item inventory.Item, quantity int) error
}

type ItemRequest struct {
	Kind      string    `json:"kind" validate:"required"`
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	Size      string    `json:"size,omitempty"`
	Qty       int       `json:"qty" validate:"omitempty,gt=0"`
}

type ItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SetStockRequest struct {
	Kind      string    `json:"kind" validate:"required"`
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity" validate:"min=0"`
}

// InventoryAvailability answers a boolean can-we-fulfill query without
// reserving anything.
func InventoryAvailability(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body ItemsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := toItems(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"available": svc.CheckAvailability(r.Context(), items)})
	}
}

// InventoryStockLevels returns the available count per requested item key.
func InventoryStockLevels(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body ItemsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := toItems(body.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		levels, err := svc.StockLevels(r.Context(), items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"levels": levels})
	}
}

// InventoryLowStock lists items at or below the threshold, joined with their
// catalog names for the admin dashboard.
func InventoryLowStock(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		threshold, err := validators.ParseQueryInt(r, "threshold", 0, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.LowStock(r.Context(), threshold)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}

// InventorySetStock overwrites the physical quantity for one item.
func InventorySetStock(svc inventoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body SetStockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseItemKind(body.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item kind"))
			return
		}

		item := inventory.Item{Kind: kind, SubjectID: body.SubjectID, Size: body.Size, Qty: 1}
		if err := svc.SetStock(r.Context(), item, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"key": item.Key(), "quantity": body.Quantity})
	}
}

func toItems(requests []ItemRequest) ([]inventory.Item, error) {
	items := make([]inventory.Item, 0, len(requests))
	for _, req := range requests {
		kind, err := enums.ParseItemKind(req.Kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item kind")
		}
		qty := req.Qty
		if qty <= 0 {
			qty = 1
		}
		items = append(items, inventory.Item{
			Kind:      kind,
			SubjectID: req.SubjectID,
			Size:      req.Size,
			Qty:       qty,
		})
	}
	return items, nil
}
