package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/fulluproar/commerce-backend/pkg/enums"
)

// LineInput is one requested order line.
type LineInput struct {
	Kind      enums.ItemKind `json:"kind" validate:"required"`
	SubjectID uuid.UUID      `json:"subject_id" validate:"required"`
	Size      string         `json:"size,omitempty"`
	Qty       int            `json:"qty" validate:"required,gt=0"`
}

// CreateOrderInput is the request payload for order creation.
type CreateOrderInput struct {
	CustomerEmail string      `json:"customer_email" validate:"required,email"`
	Items         []LineInput `json:"items" validate:"required,min=1,dive"`
}

// LineView is one order line as returned by the API.
type LineView struct {
	Kind           enums.ItemKind `json:"kind"`
	SubjectID      uuid.UUID      `json:"subject_id"`
	Size           string         `json:"size,omitempty"`
	Qty            int            `json:"qty"`
	UnitPriceCents int            `json:"unit_price_cents"`
}

// OrderView is the API shape of an order.
type OrderView struct {
	ID            uuid.UUID         `json:"id"`
	CustomerEmail string            `json:"customer_email"`
	Status        enums.OrderStatus `json:"status"`
	SubtotalCents int               `json:"subtotal_cents"`
	TaxCents      int               `json:"tax_cents"`
	TotalCents    int               `json:"total_cents"`
	Items         []LineView        `json:"items"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OrderPage is a cursor-paginated order listing.
type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
