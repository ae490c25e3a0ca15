package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Get decodes the stored value into dest and returns ErrCacheMiss when the key
// is absent or expired.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PriceLookup returns the sizes and prices a store sells an item in.
// An empty result means the store has no data for the item; an error means the
// lookup itself failed.
type PriceLookup interface {
	LookupPrices(ctx context.Context, itemName, storeID string) ([]StorePrice, error)
}

// ListRepository defines persistence for shopping lists
type ListRepository interface {
	GetList(ctx context.Context, id string) (*ShoppingList, error)
	CreateList(ctx context.Context, list *ShoppingList) error
	// SaveList replaces the list and all of its items atomically
	SaveList(ctx context.Context, list *ShoppingList) error
}

// PriceRepository defines persistence for store price listings
type PriceRepository interface {
	PriceLookup
	ReplaceStorePrices(ctx context.Context, storeID string, listings []StoreListing) error
}
