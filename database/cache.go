package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"expense-tracker-backend/models"
	"expense-tracker-backend/services"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	expenseListKey = "expenses:all"
	// bumped on every write; a fill only lands if it is unchanged since the read began
	expenseGenKey = "expenses:gen"
)

// CachedExpenseStore caches the full expense list in Redis. Writes go to the
// wrapped store and drop the cached list. Redis failures are logged and the
// wrapped store answers instead.
type CachedExpenseStore struct {
	next   services.ExpenseStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedExpenseStore(next services.ExpenseStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedExpenseStore {
	return &CachedExpenseStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("cache"),
	}
}

func (s *CachedExpenseStore) Create(ctx context.Context, expense *models.Expense) error {
	if err := s.next.Create(ctx, expense); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedExpenseStore) FindAll(ctx context.Context) ([]models.Expense, error) {
	raw, err := s.client.Get(ctx, expenseListKey).Bytes()
	switch {
	case err == nil:
		var expenses []models.Expense
		if err := json.Unmarshal(raw, &expenses); err == nil {
			return expenses, nil
		}
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", expenseListKey))
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Cache read failed", zap.Error(err))
	}

	gen, genErr := s.generation(ctx, s.client)
	expenses, err := s.next.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		s.logger.Warn("Cache generation read failed", zap.Error(genErr))
		return expenses, nil
	}
	if err := s.fill(ctx, gen, expenses); err != nil {
		s.logger.Warn("Cache write failed", zap.Error(err))
	}
	return expenses, nil
}

// fill stores the list only if no write invalidated the cache after gen was
// read. A write racing the WATCH aborts the transaction and the fill is dropped.
func (s *CachedExpenseStore) fill(ctx context.Context, gen int64, expenses []models.Expense) error {
	payload, err := json.Marshal(expenses)
	if err != nil {
		return err
	}
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, expenseListKey, payload, s.ttl)
			return nil
		})
		return err
	}, expenseGenKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *CachedExpenseStore) generation(ctx context.Context, c stringGetter) (int64, error) {
	gen, err := c.Get(ctx, expenseGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (s *CachedExpenseStore) DeleteByID(ctx context.Context, id uint) error {
	if err := s.next.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CachedExpenseStore) invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, expenseGenKey)
		pipe.Del(ctx, expenseListKey)
		return nil
	})
	if err != nil {
		s.logger.Warn("Cache invalidation failed", zap.Error(err))
	}
}
