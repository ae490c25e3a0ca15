package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/trolley/backend/internal/domain"
	"go.uber.org/zap"
)

// ListServiceConfig holds configuration for the list service
type ListServiceConfig struct {
	AutoMatchTolerance float64
	LookupConcurrency  int
	EnableDebugLogging bool
}

// ListService owns shopping lists and runs store switches against them.
// Switches on the same list are serialized; switches on different lists run
// concurrently.
type ListService struct {
	lists    domain.ListRepository
	prices   domain.PriceLookup
	repricer *Repricer

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewListService creates a new list service with dependencies
func NewListService(
	lists domain.ListRepository,
	prices domain.PriceLookup,
	config ListServiceConfig,
) *ListService {
	return &ListService{
		lists:  lists,
		prices: prices,
		repricer: NewRepricer(RepricerConfig{
			AutoMatchTolerance: config.AutoMatchTolerance,
			LookupConcurrency:  config.LookupConcurrency,
			EnableDebugLogging: config.EnableDebugLogging,
		}),
		locks: make(map[string]*sync.Mutex),
	}
}

// CreateList validates and stores a new list, assigning IDs where missing
func (s *ListService) CreateList(ctx context.Context, list *domain.ShoppingList) (*domain.ShoppingList, error) {
	if list == nil || strings.TrimSpace(list.Name) == "" {
		return nil, domain.ErrInvalidRequest
	}

	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	for i := range list.Items {
		item := &list.Items[i]
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("%w: item %d has no name", domain.ErrInvalidRequest, i)
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
	}
	list.UpdatedAt = time.Now().UTC()

	if err := s.lists.CreateList(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetList returns a stored list
func (s *ListService) GetList(ctx context.Context, id string) (*domain.ShoppingList, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.lists.GetList(ctx, id)
}

// SwitchStore re-prices the list against storeID and persists the result.
// Flow: lock list -> load -> prefetch prices -> reduce -> save -> unlock.
// A failed price lookup leaves the stored list untouched.
func (s *ListService) SwitchStore(ctx context.Context, listID, storeID string) (*domain.SwitchResult, error) {
	if listID == "" || strings.TrimSpace(storeID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	unlock := s.lockList(listID)
	defer unlock()

	list, err := s.lists.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	result, err := s.repricer.RepriceOnStoreSwitch(ctx, list, storeID, s.prices)
	if err != nil {
		if errors.Is(err, domain.ErrPriceLookupFailed) {
			zap.L().Warn("switch store: aborted",
				zap.String("list", listID),
				zap.String("store", storeID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	list.UpdatedAt = time.Now().UTC()
	if err := s.lists.SaveList(ctx, list); err != nil {
		return nil, fmt.Errorf("save repriced list: %w", err)
	}

	zap.L().Info("switch store: applied",
		zap.String("list", listID),
		zap.String("from", result.FromStoreID),
		zap.String("to", storeID),
		zap.Int("itemsUpdated", result.ItemsUpdated),
		zap.Float64("savings", result.Savings),
	)
	return result, nil
}

// lockList acquires the per-list mutex and returns its release func
func (s *ListService) lockList(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
