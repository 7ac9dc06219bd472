package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hpp_checkout/internal/domain/entities"
	"hpp_checkout/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultProductCacheTTL = time.Minute

// CachedProductRepository serves product prices from Redis and falls back to
// the wrapped repository. Misses are never cached, and a failing cache only
// costs a log line.

type CachedProductRepository struct {
	next   interfaces.IProductRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

var _ interfaces.IProductRepository = (*CachedProductRepository)(nil)

func NewCachedProductRepository(next interfaces.IProductRepository, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedProductRepository {
	if ttl <= 0 {
		ttl = defaultProductCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProductRepository{next: next, rdb: rdb, ttl: ttl, logger: logger.Named("product_cache")}
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (entities.Product, error) {
	key := productCacheKey(id)

	cached, err := r.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		price, perr := decimal.NewFromString(cached)
		if perr == nil {
			return entities.Product{ID: id, Price: price}, nil
		}
		r.logger.Warn("dropping corrupt cache entry", zap.String("product_id", id), zap.Error(perr))
		_ = r.rdb.Del(ctx, key).Err()
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
	}

	p, err := r.next.GetByID(ctx, id)
	if err != nil || p.ID == "" {
		return p, err
	}

	if err := r.rdb.Set(ctx, key, p.Price.String(), r.ttl).Err(); err != nil {
		r.logger.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
	}
	return p, nil
}

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s:price", id)
}
