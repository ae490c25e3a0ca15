package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/trolley/backend/internal/domain"
	"go.uber.org/zap"
)

// CachedPriceLookup serves store prices from cache, falling through to the
// wrapped lookup on a miss. Lookup errors are never cached.
type CachedPriceLookup struct {
	next  domain.PriceLookup
	cache domain.CacheRepository
	ttl   time.Duration

	mu          sync.RWMutex
	generations map[string]int // per-store key generation, bumped on invalidation
}

// NewCachedPriceLookup wraps next with cache. A zero ttl defaults to 15 minutes.
func NewCachedPriceLookup(next domain.PriceLookup, cache domain.CacheRepository, ttl time.Duration) *CachedPriceLookup {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &CachedPriceLookup{
		next:        next,
		cache:       cache,
		ttl:         ttl,
		generations: make(map[string]int),
	}
}

// LookupPrices implements domain.PriceLookup
func (c *CachedPriceLookup) LookupPrices(ctx context.Context, itemName, storeID string) ([]domain.StorePrice, error) {
	key := priceCacheKey(itemName, storeID, c.generation(storeID))

	var cached []domain.StorePrice
	err := c.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, domain.ErrCacheMiss):
		// Unreadable entry; drop it so the fresh result replaces it
		zap.L().Warn("price cache: get failed", zap.String("key", key), zap.Error(err))
		if derr := c.cache.Delete(ctx, key); derr != nil {
			zap.L().Warn("price cache: delete failed", zap.String("key", key), zap.Error(derr))
		}
	}

	prices, err := c.next.LookupPrices(ctx, itemName, storeID)
	if err != nil {
		return nil, err
	}
	if prices == nil {
		prices = []domain.StorePrice{}
	}

	if err := c.cache.Set(ctx, key, prices, c.ttl); err != nil {
		zap.L().Warn("price cache: set failed", zap.String("key", key), zap.Error(err))
	}
	return prices, nil
}

// InvalidateStore makes every cached entry for storeID unreachable. Old
// entries age out through the cache TTL.
func (c *CachedPriceLookup) InvalidateStore(storeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[storeID]++
}

func (c *CachedPriceLookup) generation(storeID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[storeID]
}

// priceCacheKey builds "prices:{store}:{item}". The store ID is escaped, not
// folded, and gains a ":g{n}" suffix once the store has been invalidated. The
// item name is folded the same way the SQLite listing lookup folds it.
func priceCacheKey(itemName, storeID string, gen int) string {
	store := url.QueryEscape(storeID)
	if gen > 0 {
		store = fmt.Sprintf("%s:g%d", store, gen)
	}
	return fmt.Sprintf("prices:%s:%s", store, foldItemName(itemName))
}

// foldItemName lowercases s and collapses runs of whitespace
func foldItemName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
