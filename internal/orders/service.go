package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fulluproar/commerce-backend/internal/inventory"
	"github.com/fulluproar/commerce-backend/pkg/config"
	dbpkg "github.com/fulluproar/commerce-backend/pkg/db"
	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
	"github.com/fulluproar/commerce-backend/pkg/metrics"
	"github.com/fulluproar/commerce-backend/pkg/outbox"
	"github.com/fulluproar/commerce-backend/pkg/pagination"
)

type txRunner interface {
	DB() *gorm.DB
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inventoryEngine interface {
	ReserveItems(ctx context.Context, tx *gorm.DB, items []inventory.Item, orderID uuid.UUID) error
	ReleaseItems(ctx context.Context, tx *gorm.DB, items []inventory.Item, orderID uuid.UUID) error
	CommitItems(ctx context.Context, tx *gorm.DB, items []inventory.Item, orderID uuid.UUID) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns the order lifecycle. Creation reserves inventory inside the
// same serializable transaction that persists the order, so an insufficient
// line item rolls back the whole order. Serialization conflicts retry with
// backoff up to the configured attempt budget.
type Service struct {
	runner    txRunner
	repo      *Repository
	inventory inventoryEngine
	events    eventEmitter
	metrics   *metrics.InventoryMetrics
	logg      *logger.Logger
	cfg       config.CheckoutConfig
	sleep     func(time.Duration)
}

func NewService(runner txRunner, repo *Repository, engine inventoryEngine, events eventEmitter, m *metrics.InventoryMetrics, logg *logger.Logger, cfg config.CheckoutConfig) *Service {
	return &Service{
		runner:    runner,
		repo:      repo,
		inventory: engine,
		events:    events,
		metrics:   m,
		logg:      logg,
		cfg:       cfg,
		sleep:     time.Sleep,
	}
}

// Create places an order: prices the lines, reserves stock, persists the
// order, and queues an order.created event, all in one transaction.
func (s *Service) Create(ctx context.Context, input CreateOrderInput, actor *outbox.ActorRef) (*OrderView, error) {
	items := toInventoryItems(input.Items)
	if err := inventory.ValidateItems(items); err != nil {
		return nil, err
	}

	lines, subtotal, err := s.priceLines(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	taxCents, totalCents, err := s.totals(subtotal)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:            uuid.New(),
		CustomerEmail: input.CustomerEmail,
		Status:        enums.OrderStatusPending,
		SubtotalCents: subtotal,
		TaxCents:      taxCents,
		TotalCents:    totalCents,
		Items:         lines,
	}
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}

	err = s.withSerializableRetry(ctx, "create_order", func(tx *gorm.DB) error {
		if err := s.inventory.ReserveItems(ctx, tx, items, order.ID); err != nil {
			return err
		}
		if err := s.repo.Create(tx, order); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderCreated,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: map[string]any{
				"customer_email": order.CustomerEmail,
				"total_cents":    order.TotalCents,
				"line_count":     len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "order created")
	}
	view := toView(order)
	return &view, nil
}

// Cancel releases the reservation and moves a pending order to cancelled.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*OrderView, error) {
	return s.transition(ctx, orderID, enums.OrderStatusCancelled, enums.OutboxEventOrderCancelled, actor, s.inventory.ReleaseItems)
}

// MarkPaid commits the reservation and moves a pending order to paid.
func (s *Service) MarkPaid(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef) (*OrderView, error) {
	return s.transition(ctx, orderID, enums.OrderStatusPaid, enums.OutboxEventOrderPaid, actor, s.inventory.CommitItems)
}

type stockMutation func(ctx context.Context, tx *gorm.DB, items []inventory.Item, orderID uuid.UUID) error

func (s *Service) transition(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus, eventType enums.OutboxEventType, actor *outbox.ActorRef, mutate stockMutation) (*OrderView, error) {
	var view OrderView
	err := s.withSerializableRetry(ctx, "transition_"+string(to), func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(tx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		moved, err := s.repo.TransitionStatus(tx, orderID, enums.OrderStatusPending, to)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
		}
		if !moved {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s, only pending orders can move to %s", order.Status, to),
			)
		}

		if err := mutate(ctx, tx, itemsFromModel(order.Items), orderID); err != nil {
			return err
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   orderID,
			Actor:         actor,
			Data:          map[string]any{"status": to},
		}); err != nil {
			return err
		}

		order.Status = to
		view = toView(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order "+string(to))
	}
	return &view, nil
}

// Get returns one order.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	view := toView(order)
	return &view, nil
}

// List returns a cursor page of orders, newest first.
func (s *Service) List(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*OrderPage, error) {
	if status != "" && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown status "+string(status))
	}
	rows, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	trimmed, hasMore := pagination.TrimPage(rows, params.Limit)
	page := &OrderPage{Orders: make([]OrderView, 0, len(trimmed))}
	for i := range trimmed {
		page.Orders = append(page.Orders, toView(&trimmed[i]))
	}
	if hasMore && len(trimmed) > 0 {
		last := trimmed[len(trimmed)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// withSerializableRetry reruns fn on serialization conflicts up to the
// configured attempt budget. Conflicts that outlive the budget surface as a
// retryable DEPENDENCY_ERROR for the caller.
func (s *Service) withSerializableRetry(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	attempts := s.cfg.ReserveMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = s.runner.WithSerializableTx(ctx, fn)
		if err == nil || !dbpkg.IsSerializationFailure(err) {
			return err
		}
		s.metrics.IncSerializationRetry()
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"operation": operation,
				"attempt":   attempt,
			}), "serialization conflict, retrying")
		}
		if attempt < attempts && s.cfg.ReserveRetryBackoff > 0 {
			s.sleep(time.Duration(attempt) * s.cfg.ReserveRetryBackoff)
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transaction kept conflicting, try again")
}

func (s *Service) priceLines(ctx context.Context, inputs []LineInput) ([]models.OrderItem, int, error) {
	lines := make([]models.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, input := range inputs {
		var (
			priceCents int
			found      bool
			err        error
		)
		switch input.Kind {
		case enums.ItemKindGame:
			priceCents, found, err = s.repo.GamePriceCents(ctx, input.SubjectID)
		case enums.ItemKindMerch:
			priceCents, found, err = s.repo.MerchPriceCents(ctx, input.SubjectID)
		default:
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown item kind "+string(input.Kind))
		}
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "pricing order line")
		}
		if !found {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %s is not available for sale", input.Kind, input.SubjectID))
		}

		lines = append(lines, models.OrderItem{
			Kind:           input.Kind,
			SubjectID:      input.SubjectID,
			Size:           input.Size,
			Qty:            input.Qty,
			UnitPriceCents: priceCents,
		})
		subtotal = subtotal.Add(decimal.NewFromInt(int64(priceCents)).Mul(decimal.NewFromInt(int64(input.Qty))))
	}
	return lines, int(subtotal.IntPart()), nil
}

func (s *Service) totals(subtotalCents int) (taxCents, totalCents int, err error) {
	rate, err := decimal.NewFromString(s.cfg.TaxRatePercent)
	if err != nil {
		return 0, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parsing tax rate")
	}
	subtotal := decimal.NewFromInt(int64(subtotalCents))
	tax := subtotal.Mul(rate).Div(decimal.NewFromInt(100)).Round(0)
	taxCents = int(tax.IntPart())
	return taxCents, subtotalCents + taxCents, nil
}

func toInventoryItems(inputs []LineInput) []inventory.Item {
	items := make([]inventory.Item, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, inventory.Item{
			Kind:      input.Kind,
			SubjectID: input.SubjectID,
			Size:      input.Size,
			Qty:       input.Qty,
		})
	}
	return items
}

func itemsFromModel(lines []models.OrderItem) []inventory.Item {
	items := make([]inventory.Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, inventory.Item{
			Kind:      line.Kind,
			SubjectID: line.SubjectID,
			Size:      line.Size,
			Qty:       line.Qty,
		})
	}
	return items
}

func toView(order *models.Order) OrderView {
	view := OrderView{
		ID:            order.ID,
		CustomerEmail: order.CustomerEmail,
		Status:        order.Status,
		SubtotalCents: order.SubtotalCents,
		TaxCents:      order.TaxCents,
		TotalCents:    order.TotalCents,
		CreatedAt:     order.CreatedAt,
		Items:         make([]LineView, 0, len(order.Items)),
	}
	for _, line := range order.Items {
		view.Items = append(view.Items, LineView{
			Kind:           line.Kind,
			SubjectID:      line.SubjectID,
			Size:           line.Size,
			Qty:            line.Qty,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return view
}
