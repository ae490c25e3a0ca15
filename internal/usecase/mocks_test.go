package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/trolley/backend/internal/domain"
)

// MockPriceLookup is a mock implementation of domain.PriceLookup keyed by
// store and item name
type MockPriceLookup struct {
	mu     sync.Mutex
	prices map[string][]domain.StorePrice
	errs   map[string]error
	calls  map[string]int
}

func NewMockPriceLookup() *MockPriceLookup {
	return &MockPriceLookup{
		prices: make(map[string][]domain.StorePrice),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func lookupKey(storeID, itemName string) string {
	return storeID + "|" + itemName
}

func (m *MockPriceLookup) SetPrices(storeID, itemName string, prices ...domain.StorePrice) {
	m.prices[lookupKey(storeID, itemName)] = prices
}

func (m *MockPriceLookup) SetError(storeID, itemName string, err error) {
	m.errs[lookupKey(storeID, itemName)] = err
}

func (m *MockPriceLookup) Calls(storeID, itemName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[lookupKey(storeID, itemName)]
}

func (m *MockPriceLookup) LookupPrices(ctx context.Context, itemName, storeID string) ([]domain.StorePrice, error) {
	key := lookupKey(storeID, itemName)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[key]++
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	return m.prices[key], nil
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	getCalled    int
	setCalled    int
	deleteCalled int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string, dest any) error {
	m.getCalled++
	if m.getError != nil {
		return m.getError
	}
	raw, ok := m.data[key]
	if !ok {
		return domain.ErrCacheMiss
	}
	return msgpack.Unmarshal(raw, dest)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.setCalled++
	if m.setError != nil {
		return m.setError
	}
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.deleteCalled++
	delete(m.data, key)
	return nil
}

// MockListRepository is an in-memory domain.ListRepository
type MockListRepository struct {
	mu        sync.Mutex
	lists     map[string]domain.ShoppingList
	saveError error
	saves     int
}

func NewMockListRepository() *MockListRepository {
	return &MockListRepository{lists: make(map[string]domain.ShoppingList)}
}

func (m *MockListRepository) CreateList(ctx context.Context, list *domain.ShoppingList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[list.ID] = cloneList(*list)
	return nil
}

func (m *MockListRepository) GetList(ctx context.Context, id string) (*domain.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list, ok := m.lists[id]
	if !ok {
		return nil, domain.ErrListNotFound
	}
	out := cloneList(list)
	return &out, nil
}

func (m *MockListRepository) SaveList(ctx context.Context, list *domain.ShoppingList) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	if _, ok := m.lists[list.ID]; !ok {
		return domain.ErrListNotFound
	}
	m.saves++
	m.lists[list.ID] = cloneList(*list)
	return nil
}

func cloneList(l domain.ShoppingList) domain.ShoppingList {
	items := make([]domain.ListItem, len(l.Items))
	for i, item := range l.Items {
		if item.EstimatedPrice != nil {
			p := *item.EstimatedPrice
			item.EstimatedPrice = &p
		}
		items[i] = item
	}
	l.Items = items
	return l
}

func ptr(v float64) *float64 { return &v }
