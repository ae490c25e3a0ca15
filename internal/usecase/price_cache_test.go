package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trolley/backend/internal/domain"
)

func TestNewCachedPriceLookup(t *testing.T) {
	c := NewCachedPriceLookup(NewMockPriceLookup(), NewMockCacheRepository(), 0)
	assert.Equal(t, 15*time.Minute, c.ttl)

	c = NewCachedPriceLookup(NewMockPriceLookup(), NewMockCacheRepository(), time.Hour)
	assert.Equal(t, time.Hour, c.ttl)
}

func TestCachedPriceLookup_LookupPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetPrices("tesco", "Milk", domain.StorePrice{Size: "2pt", Price: 1.45})
		cache := NewMockCacheRepository()
		c := NewCachedPriceLookup(next, cache, time.Minute)

		first, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)
		second, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, []domain.StorePrice{{Size: "2pt", Price: 1.45}}, second)
		assert.Equal(t, 1, next.Calls("tesco", "Milk"))
		assert.Equal(t, 1, cache.setCalled)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetError("tesco", "Milk", errors.New("feed down"))
		cache := NewMockCacheRepository()
		c := NewCachedPriceLookup(next, cache, time.Minute)

		_, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.Error(t, err)
		_, err = c.LookupPrices(ctx, "Milk", "tesco")
		require.Error(t, err)

		assert.Equal(t, 2, next.Calls("tesco", "Milk"))
		assert.Equal(t, 0, cache.setCalled)
	})

	t.Run("empty results are cached", func(t *testing.T) {
		next := NewMockPriceLookup()
		cache := NewMockCacheRepository()
		c := NewCachedPriceLookup(next, cache, time.Minute)

		prices, err := c.LookupPrices(ctx, "Caviar", "aldi")
		require.NoError(t, err)
		assert.NotNil(t, prices)
		assert.Empty(t, prices)

		prices, err = c.LookupPrices(ctx, "Caviar", "aldi")
		require.NoError(t, err)
		assert.Empty(t, prices)
		assert.Equal(t, 1, next.Calls("aldi", "Caviar"))
	})

	t.Run("cache failures fall through", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetPrices("tesco", "Milk", domain.StorePrice{Size: "2pt", Price: 1.45})
		cache := NewMockCacheRepository()
		cache.getError = errors.New("cache unavailable")
		cache.setError = errors.New("cache unavailable")
		c := NewCachedPriceLookup(next, cache, time.Minute)

		prices, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)
		assert.Len(t, prices, 1)
	})

	t.Run("names differing in case share an entry", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetPrices("tesco", "Milk", domain.StorePrice{Size: "2pt", Price: 1.45})
		cache := NewMockCacheRepository()
		c := NewCachedPriceLookup(next, cache, time.Minute)

		_, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)
		prices, err := c.LookupPrices(ctx, " MILK ", "tesco")
		require.NoError(t, err)
		assert.Len(t, prices, 1)
		assert.Zero(t, next.Calls("tesco", " MILK "))
	})

	t.Run("names differing in punctuation are separate entries", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetPrices("tesco", "Jam (Strawberry)", domain.StorePrice{Size: "340g", Price: 1.20})
		next.SetPrices("tesco", "Jam Strawberry", domain.StorePrice{Size: "454g", Price: 2.50})
		c := NewCachedPriceLookup(next, NewMockCacheRepository(), time.Minute)

		first, err := c.LookupPrices(ctx, "Jam (Strawberry)", "tesco")
		require.NoError(t, err)
		second, err := c.LookupPrices(ctx, "Jam Strawberry", "tesco")
		require.NoError(t, err)

		assert.Equal(t, []domain.StorePrice{{Size: "340g", Price: 1.20}}, first)
		assert.Equal(t, []domain.StorePrice{{Size: "454g", Price: 2.50}}, second)
		assert.Equal(t, 1, next.Calls("tesco", "Jam Strawberry"))
	})

	t.Run("store IDs are not folded", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetPrices("co-op", "Milk", domain.StorePrice{Size: "2pt", Price: 1.65})
		next.SetPrices("coop", "Milk", domain.StorePrice{Size: "4pt", Price: 9.99})
		c := NewCachedPriceLookup(next, NewMockCacheRepository(), time.Minute)

		first, err := c.LookupPrices(ctx, "Milk", "co-op")
		require.NoError(t, err)
		second, err := c.LookupPrices(ctx, "Milk", "coop")
		require.NoError(t, err)

		assert.Equal(t, "2pt", first[0].Size)
		assert.Equal(t, "4pt", second[0].Size)
		assert.Equal(t, 1, next.Calls("coop", "Milk"))
	})

	t.Run("unreadable entries are replaced", func(t *testing.T) {
		next := NewMockPriceLookup()
		next.SetPrices("tesco", "Milk", domain.StorePrice{Size: "2pt", Price: 1.45})
		cache := NewMockCacheRepository()
		key := priceCacheKey("Milk", "tesco", 0)
		cache.data[key] = []byte{0xc1}
		c := NewCachedPriceLookup(next, cache, time.Minute)

		prices, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)
		assert.Equal(t, []domain.StorePrice{{Size: "2pt", Price: 1.45}}, prices)
		assert.Equal(t, 1, cache.deleteCalled)

		prices, err = c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)
		assert.Len(t, prices, 1)
		assert.Equal(t, 1, next.Calls("tesco", "Milk"))
	})

	t.Run("misses do not delete", func(t *testing.T) {
		next := NewMockPriceLookup()
		cache := NewMockCacheRepository()
		c := NewCachedPriceLookup(next, cache, time.Minute)

		_, err := c.LookupPrices(ctx, "Milk", "tesco")
		require.NoError(t, err)
		assert.Zero(t, cache.deleteCalled)
	})
}

func TestPriceCacheKey(t *testing.T) {
	tests := []struct {
		item, store, want string
	}{
		{"Milk", "tesco", "prices:tesco:milk"},
		{"Semi-Skimmed  Milk!", "Tesco", "prices:Tesco:semi-skimmed milk!"},
		{"  Free Range Eggs ", "aldi-uk", "prices:aldi-uk:free range eggs"},
		{"Jam (Strawberry)", "co op", "prices:co+op:jam (strawberry)"},
		{"Milk", "a:g1", "prices:a%3Ag1:milk"},
		{"", "", "prices::"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, priceCacheKey(tt.item, tt.store, 0))
	}
	assert.Equal(t, "prices:tesco:g2:milk", priceCacheKey("Milk", "tesco", 2))
}

func TestCachedPriceLookup_InvalidateStore(t *testing.T) {
	ctx := context.Background()
	next := NewMockPriceLookup()
	next.SetPrices("tesco", "Milk", domain.StorePrice{Size: "2pt", Price: 1.45})
	next.SetPrices("aldi", "Milk", domain.StorePrice{Size: "2pt", Price: 1.30})
	c := NewCachedPriceLookup(next, NewMockCacheRepository(), time.Minute)

	_, err := c.LookupPrices(ctx, "Milk", "tesco")
	require.NoError(t, err)
	_, err = c.LookupPrices(ctx, "Milk", "aldi")
	require.NoError(t, err)

	next.SetPrices("tesco", "Milk", domain.StorePrice{Size: "2pt", Price: 1.55})
	c.InvalidateStore("tesco")

	prices, err := c.LookupPrices(ctx, "Milk", "tesco")
	require.NoError(t, err)
	assert.Equal(t, 1.55, prices[0].Price)
	assert.Equal(t, 2, next.Calls("tesco", "Milk"))

	_, err = c.LookupPrices(ctx, "Milk", "aldi")
	require.NoError(t, err)
	assert.Equal(t, 1, next.Calls("aldi", "Milk"))
}
