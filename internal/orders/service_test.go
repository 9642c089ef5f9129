package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fulluproar/commerce-backend/internal/inventory"
	"github.com/fulluproar/commerce-backend/pkg/config"
	"github.com/fulluproar/commerce-backend/pkg/db/models"
	"github.com/fulluproar/commerce-backend/pkg/enums"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/outbox"
	"github.com/fulluproar/commerce-backend/pkg/pagination"
)

type testRunner struct {
	db *gorm.DB
}

func (r *testRunner) DB() *gorm.DB {
	return r.db
}

func (r *testRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *testRunner) WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type testEnv struct {
	service    *Service
	db         *gorm.DB
	outboxRepo *outbox.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Game{},
		&models.MerchItem{},
		&models.GameInventory{},
		&models.MerchInventory{},
		&models.Order{},
		&models.OrderItem{},
		&models.OutboxEvent{},
	))

	runner := &testRunner{db: db}
	engine := inventory.NewService(
		runner,
		inventory.NewRepository(),
		nil,
		nil,
		nil,
		config.InventoryConfig{LowStockThreshold: 5},
	)
	outboxRepo := outbox.NewRepository(db)
	events := outbox.NewService(outboxRepo, nil)
	cfg := config.CheckoutConfig{
		ReserveMaxAttempts:  3,
		ReserveRetryBackoff: time.Millisecond,
		TaxRatePercent:      "20",
	}
	service := NewService(runner, NewRepository(db), engine, events, nil, nil, cfg)
	service.sleep = func(time.Duration) {}

	return &testEnv{service: service, db: db, outboxRepo: outboxRepo}
}

func (e *testEnv) seedGame(t *testing.T, priceCents, quantity int) uuid.UUID {
	t.Helper()
	game := models.Game{ID: uuid.New(), Title: "Chaos Engine", Slug: "chaos-engine-" + uuid.NewString(), PriceCents: priceCents, IsActive: true}
	require.NoError(t, e.db.Create(&game).Error)
	require.NoError(t, e.db.Create(&models.GameInventory{GameID: game.ID, Quantity: quantity}).Error)
	return game.ID
}

func (e *testEnv) gameInventory(t *testing.T, id uuid.UUID) models.GameInventory {
	t.Helper()
	var row models.GameInventory
	require.NoError(t, e.db.First(&row, "game_id = ?", id).Error)
	return row
}

func TestCreateOrderReservesAndPersists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gameID := env.seedGame(t, 2500, 5)

	view, err := env.service.Create(ctx, CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: gameID, Qty: 2}},
	}, &outbox.ActorRef{Email: "player@example.com"})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, view.Status)
	assert.Equal(t, 5000, view.SubtotalCents)
	assert.Equal(t, 1000, view.TaxCents)
	assert.Equal(t, 6000, view.TotalCents)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2500, view.Items[0].UnitPriceCents)

	row := env.gameInventory(t, gameID)
	assert.Equal(t, 5, row.Quantity)
	assert.Equal(t, 2, row.Reserved)

	events, err := env.outboxRepo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, enums.OutboxEventOrderCreated, events[0].EventType)
	assert.Equal(t, view.ID, events[0].AggregateID)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gameID := env.seedGame(t, 2500, 1)

	_, err := env.service.Create(ctx, CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: gameID, Qty: 3}},
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	var orderCount int64
	require.NoError(t, env.db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	events, err := env.outboxRepo.FetchUnpublished(10)
	require.NoError(t, err)
	assert.Empty(t, events)

	row := env.gameInventory(t, gameID)
	assert.Zero(t, row.Reserved)
}

func TestCreateOrderAllOrNothingAcrossLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plentyID := env.seedGame(t, 1000, 10)
	scarceID := env.seedGame(t, 1000, 1)

	_, err := env.service.Create(ctx, CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items: []LineInput{
			{Kind: enums.ItemKindGame, SubjectID: plentyID, Qty: 2},
			{Kind: enums.ItemKindGame, SubjectID: scarceID, Qty: 2},
		},
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock), "got %v", err)

	assert.Zero(t, env.gameInventory(t, plentyID).Reserved)
	assert.Zero(t, env.gameInventory(t, scarceID).Reserved)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.Create(context.Background(), CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: uuid.New(), Qty: 1}},
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCancelReleasesReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gameID := env.seedGame(t, 2500, 5)

	view, err := env.service.Create(ctx, CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: gameID, Qty: 2}},
	}, nil)
	require.NoError(t, err)

	cancelled, err := env.service.Cancel(ctx, view.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	row := env.gameInventory(t, gameID)
	assert.Equal(t, 5, row.Quantity)
	assert.Zero(t, row.Reserved)

	// a second cancel hits the status guard
	_, err = env.service.Cancel(ctx, view.ID, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
}

func TestMarkPaidCommitsReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gameID := env.seedGame(t, 2500, 10)

	view, err := env.service.Create(ctx, CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: gameID, Qty: 2}},
	}, nil)
	require.NoError(t, err)

	paid, err := env.service.MarkPaid(ctx, view.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, paid.Status)

	row := env.gameInventory(t, gameID)
	assert.Equal(t, 8, row.Quantity)
	assert.Zero(t, row.Reserved)

	// paid is terminal
	_, err = env.service.Cancel(ctx, view.ID, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	events, err := env.outboxRepo.FetchUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, enums.OutboxEventOrderPaid, events[1].EventType)
}

func TestTransitionUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.Cancel(context.Background(), uuid.New(), nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListOrdersPaginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	gameID := env.seedGame(t, 1000, 100)

	for i := 0; i < 5; i++ {
		_, err := env.service.Create(ctx, CreateOrderInput{
			CustomerEmail: "player@example.com",
			Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: gameID, Qty: 1}},
		}, nil)
		require.NoError(t, err)
	}

	page, err := env.service.List(ctx, "", pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := env.service.List(ctx, "", pagination.Params{Limit: 10, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Orders, 3)
	assert.Empty(t, rest.NextCursor)

	pending, err := env.service.List(ctx, enums.OrderStatusPending, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, pending.Orders, 5)

	paid, err := env.service.List(ctx, enums.OrderStatusPaid, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, paid.Orders)

	_, err = env.service.List(ctx, enums.OrderStatus("shipped"), pagination.Params{Limit: 10})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

type conflictRunner struct {
	attempts int
}

func (r *conflictRunner) DB() *gorm.DB { return nil }

func (r *conflictRunner) WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	r.attempts++
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func TestSerializationConflictRetriesThenSurfaces(t *testing.T) {
	env := newTestEnv(t)
	gameID := env.seedGame(t, 1000, 10)

	runner := &conflictRunner{}
	cfg := config.CheckoutConfig{ReserveMaxAttempts: 3, ReserveRetryBackoff: time.Millisecond, TaxRatePercent: "0"}
	var sleeps int
	service := NewService(runner, NewRepository(env.db), env.service.inventory, env.service.events, nil, nil, cfg)
	service.sleep = func(time.Duration) { sleeps++ }

	_, err := service.Create(context.Background(), CreateOrderInput{
		CustomerEmail: "player@example.com",
		Items:         []LineInput{{Kind: enums.ItemKindGame, SubjectID: gameID, Qty: 1}},
	}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency), "got %v", err)
	assert.Equal(t, 3, runner.attempts)
	assert.Equal(t, 2, sleeps)
}
