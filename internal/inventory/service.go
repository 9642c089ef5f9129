package inventory

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/fulluproar/commerce-backend/pkg/config"
	pkgerrors "github.com/fulluproar/commerce-backend/pkg/errors"
	"github.com/fulluproar/commerce-backend/pkg/logger"
	"github.com/fulluproar/commerce-backend/pkg/metrics"
)

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithSerializableTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	StockLevelKey(itemKey string) string
}

// Service is the inventory reservation engine. All writes run through
// serializable transactions and the repository's conditional updates; reads
// are advisory and may go through the short-TTL cache.
type Service struct {
	runner  txRunner
	repo    *Repository
	cache   stockCache
	logg    *logger.Logger
	metrics *metrics.InventoryMetrics
	cfg     config.InventoryConfig
}

func NewService(runner txRunner, repo *Repository, cache stockCache, logg *logger.Logger, m *metrics.InventoryMetrics, cfg config.InventoryConfig) *Service {
	return &Service{
		runner:  runner,
		repo:    repo,
		cache:   cache,
		logg:    logg,
		metrics: m,
		cfg:     cfg,
	}
}

// ReserveItems applies the conditional reservation for every line item inside
// the caller's transaction. The first item that cannot be covered aborts the
// whole set; the caller's rollback undoes any earlier increments.
func (s *Service) ReserveItems(ctx context.Context, tx *gorm.DB, items []Item, orderID uuid.UUID) error {
	if err := ValidateItems(items); err != nil {
		return err
	}
	for _, item := range items {
		if err := s.repo.Reserve(tx, item); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
				s.metrics.IncInsufficientStock()
			}
			return err
		}
		s.auditLog(ctx, "inventory reserved", item, orderID)
	}
	return nil
}

// ReleaseItems undoes a reservation inside the caller's transaction.
func (s *Service) ReleaseItems(ctx context.Context, tx *gorm.DB, items []Item, orderID uuid.UUID) error {
	if err := ValidateItems(items); err != nil {
		return err
	}
	for _, item := range items {
		if err := s.repo.Release(tx, item); err != nil {
			return err
		}
		s.auditLog(ctx, "inventory released", item, orderID)
	}
	return nil
}

// CommitItems finalizes a reservation inside the caller's transaction.
func (s *Service) CommitItems(ctx context.Context, tx *gorm.DB, items []Item, orderID uuid.UUID) error {
	if err := ValidateItems(items); err != nil {
		return err
	}
	for _, item := range items {
		if err := s.repo.Commit(tx, item); err != nil {
			return err
		}
		s.auditLog(ctx, "inventory committed", item, orderID)
	}
	return nil
}

// Reserve runs ReserveItems in its own serializable transaction. Callers that
// need the reservation tied to other writes (order creation) use ReserveItems
// with their own transaction instead.
func (s *Service) Reserve(ctx context.Context, items []Item, orderID uuid.UUID) error {
	return s.instrumented(ctx, "reserve", items, func(tx *gorm.DB) error {
		return s.ReserveItems(ctx, tx, items, orderID)
	})
}

// Release runs ReleaseItems in its own serializable transaction.
func (s *Service) Release(ctx context.Context, items []Item, orderID uuid.UUID) error {
	return s.instrumented(ctx, "release", items, func(tx *gorm.DB) error {
		return s.ReleaseItems(ctx, tx, items, orderID)
	})
}

// Commit runs CommitItems in its own serializable transaction.
func (s *Service) Commit(ctx context.Context, items []Item, orderID uuid.UUID) error {
	return s.instrumented(ctx, "commit", items, func(tx *gorm.DB) error {
		return s.CommitItems(ctx, tx, items, orderID)
	})
}

func (s *Service) instrumented(ctx context.Context, operation string, items []Item, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	err := s.runner.WithSerializableTx(ctx, fn)
	s.metrics.ObserveDuration(operation, time.Since(start))
	switch {
	case err == nil:
		s.metrics.IncOutcome(operation, "success")
		s.invalidateCache(ctx, items)
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		s.metrics.IncOutcome(operation, "insufficient_stock")
	default:
		s.metrics.IncOutcome(operation, "error")
	}
	return err
}

// CheckAvailability reports whether every item could currently be reserved.
// Advisory only: the answer can go stale immediately. Any read error counts
// as unavailable; this method never returns an error to the caller.
func (s *Service) CheckAvailability(ctx context.Context, items []Item) bool {
	if err := ValidateItems(items); err != nil {
		return false
	}
	db := s.runner.DB().WithContext(ctx)
	for _, item := range items {
		level, err := s.repo.StockLevel(db, item)
		if err != nil {
			s.logError(ctx, "availability read failed, treating as unavailable", err)
			return false
		}
		if level.Available < item.Qty {
			return false
		}
	}
	return true
}

// StockLevels returns available counts keyed by item key, reading through the
// short-TTL cache when configured. Cache errors degrade to the database.
func (s *Service) StockLevels(ctx context.Context, items []Item) (map[string]int, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	db := s.runner.DB().WithContext(ctx)
	levels := make(map[string]int, len(items))
	for _, item := range items {
		if cached, ok := s.cachedLevel(ctx, item); ok {
			levels[item.Key()] = cached
			continue
		}
		level, err := s.repo.StockLevel(db, item)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no stock record for "+item.Label())
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stock level")
		}
		levels[item.Key()] = level.Available
		s.cacheLevel(ctx, item, level.Available)
	}
	return levels, nil
}

// LowStock returns every record whose total quantity is at or below the
// threshold. A non-positive threshold falls back to the configured default.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockRow, error) {
	if threshold <= 0 {
		threshold = s.cfg.LowStockThreshold
	}
	rows, err := s.repo.LowStock(s.runner.DB().WithContext(ctx), threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading low stock report")
	}
	return rows, nil
}

// SetStock upserts the total quantity for one record and drops its cache entry.
func (s *Service) SetStock(ctx context.Context, item Item, quantity int) error {
	if err := ValidateItems([]Item{{Kind: item.Kind, SubjectID: item.SubjectID, Size: item.Size, Qty: 1}}); err != nil {
		return err
	}
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.SetStock(tx, item, quantity)
	})
	if err != nil {
		return err
	}
	s.invalidateCache(ctx, []Item{item})
	return nil
}

func (s *Service) cachedLevel(ctx context.Context, item Item) (int, bool) {
	if s.cache == nil || s.cfg.StockCacheTTL <= 0 {
		return 0, false
	}
	raw, err := s.cache.Get(ctx, s.cache.StockLevelKey(item.Key()))
	if err != nil {
		if err != redislib.Nil {
			s.logError(ctx, "stock cache read failed", err)
		}
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (s *Service) cacheLevel(ctx context.Context, item Item, available int) {
	if s.cache == nil || s.cfg.StockCacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, s.cache.StockLevelKey(item.Key()), available, s.cfg.StockCacheTTL); err != nil {
		s.logError(ctx, "stock cache write failed", err)
	}
}

// invalidateCache drops cache entries best-effort after a successful write.
// Failures are logged, never propagated; the TTL bounds staleness anyway.
func (s *Service) invalidateCache(ctx context.Context, items []Item) {
	if s.cache == nil {
		return
	}
	var errs error
	for _, item := range items {
		if err := s.cache.Del(ctx, s.cache.StockLevelKey(item.Key())); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		s.logError(ctx, "stock cache invalidation failed", errs)
	}
}

func (s *Service) auditLog(ctx context.Context, msg string, item Item, orderID uuid.UUID) {
	if s.logg == nil {
		return
	}
	fields := map[string]any{
		"item_key": item.Key(),
		"qty":      item.Qty,
	}
	if orderID != uuid.Nil {
		fields["order_id"] = orderID.String()
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), msg)
}

func (s *Service) logError(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
