package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/trolley/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RepricerConfig holds configuration for the store-switch repricer
type RepricerConfig struct {
	AutoMatchTolerance float64
	LookupConcurrency  int
	EnableDebugLogging bool
}

// Repricer re-prices a shopping list when the user switches store
type Repricer struct {
	tolerance          float64
	lookupConcurrency  int
	enableDebugLogging bool
}

// SwitchPlan is the fully computed outcome of a store switch, not yet applied
type SwitchPlan struct {
	Items  []domain.ListItem
	Result domain.SwitchResult
}

// NewRepricer creates a repricer with the given configuration
func NewRepricer(config RepricerConfig) *Repricer {
	tolerance := config.AutoMatchTolerance
	if tolerance <= 0 {
		tolerance = domain.DefaultAutoMatchTolerance
	}

	concurrency := config.LookupConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}

	return &Repricer{
		tolerance:          tolerance,
		lookupConcurrency:  concurrency,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// RepriceOnStoreSwitch re-prices every item on list for newStoreID.
// Prices are fetched for all items first; if any lookup fails the list is left
// exactly as it was and the error is returned. Otherwise the list is updated in
// place and the change set returned.
func (r *Repricer) RepriceOnStoreSwitch(
	ctx context.Context,
	list *domain.ShoppingList,
	newStoreID string,
	lookup domain.PriceLookup,
) (*domain.SwitchResult, error) {
	if list == nil || strings.TrimSpace(newStoreID) == "" || lookup == nil {
		return nil, domain.ErrInvalidRequest
	}

	listings, err := r.fetchListings(ctx, list.Items, newStoreID, lookup)
	if err != nil {
		return nil, err
	}

	plan := r.Plan(list, newStoreID, listings)

	list.Items = plan.Items
	list.StoreID = newStoreID
	return &plan.Result, nil
}

// fetchListings looks up every distinct item name at the store concurrently.
// Items with a price override are never looked up.
func (r *Repricer) fetchListings(
	ctx context.Context,
	items []domain.ListItem,
	storeID string,
	lookup domain.PriceLookup,
) (map[string][]domain.StorePrice, error) {
	names := make([]string, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		if item.PriceOverride || seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		names = append(names, item.Name)
	}

	var mu sync.Mutex
	listings := make(map[string][]domain.StorePrice, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.lookupConcurrency)
	for _, name := range names {
		g.Go(func() error {
			prices, err := lookup.LookupPrices(gctx, name, storeID)
			if err != nil {
				return fmt.Errorf("%w: item %q at store %q: %w", domain.ErrPriceLookupFailed, name, storeID, err)
			}
			mu.Lock()
			listings[name] = prices
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

// Plan computes the switch as a pure reduction over the list's items. It does
// not modify list.
func (r *Repricer) Plan(
	list *domain.ShoppingList,
	newStoreID string,
	listings map[string][]domain.StorePrice,
) SwitchPlan {
	result := domain.SwitchResult{
		ListID:           list.ID,
		FromStoreID:      list.StoreID,
		ToStoreID:        newStoreID,
		SizeChanges:      []domain.SizeChange{},
		PriceChanges:     []domain.PriceChange{},
		PreservedItemIDs: []string{},
		PreviousTotal:    roundCurrency(list.Total()),
	}

	items := make([]domain.ListItem, len(list.Items))
	for i, item := range list.Items {
		next, outcome := r.repriceItem(item, list.StoreID, newStoreID, listings[item.Name])
		items[i] = next

		if outcome.preserved {
			result.ManualOverridesPreserved++
			result.PreservedItemIDs = append(result.PreservedItemIDs, item.ID)
		}
		if outcome.sizeChange != nil {
			result.SizeChanges = append(result.SizeChanges, *outcome.sizeChange)
		}
		if outcome.priceChange != nil {
			result.PriceChanges = append(result.PriceChanges, *outcome.priceChange)
		}
		if outcome.sizeChange != nil || outcome.priceChange != nil {
			result.ItemsUpdated++
		}
	}

	repriced := domain.ShoppingList{Items: items}
	result.NewTotal = roundCurrency(repriced.Total())
	result.Savings = roundCurrency(result.PreviousTotal - result.NewTotal)

	if r.enableDebugLogging {
		zap.L().Debug("reprice: plan complete",
			zap.String("list", list.ID),
			zap.String("from", list.StoreID),
			zap.String("to", newStoreID),
			zap.Int("updated", result.ItemsUpdated),
			zap.Int("preserved", result.ManualOverridesPreserved),
			zap.Float64("savings", result.Savings),
		)
	}

	return SwitchPlan{Items: items, Result: result}
}

// itemOutcome records what repricing did to one item
type itemOutcome struct {
	preserved   bool
	sizeChange  *domain.SizeChange
	priceChange *domain.PriceChange
}

// resolution is the store size chosen for an item
type resolution struct {
	option      domain.StorePrice
	isExact     bool
	percentDiff float64
}

func (r *Repricer) repriceItem(
	item domain.ListItem,
	fromStoreID, toStoreID string,
	options []domain.StorePrice,
) (domain.ListItem, itemOutcome) {
	var outcome itemOutcome

	if item.PriceOverride {
		r.debugItem(item, "price override, preserved")
		outcome.preserved = true
		return item, outcome
	}

	if item.SizeOverride {
		match, ok := FindExactSizeMatch(item.Size, options)
		if !ok {
			r.debugItem(item, "size override, size not sold at store")
			return item, outcome
		}
		outcome.priceChange = applyPrice(&item, match.Price)
		r.debugItem(item, "size override, price refreshed")
		return item, outcome
	}

	if len(options) == 0 {
		r.debugItem(item, "no price data at store, kept")
		return item, outcome
	}

	restoring := isSwitchBack(item, fromStoreID, toStoreID, options)
	target := item.Size
	if restoring {
		target = item.OriginalSize
	}

	res := r.resolveSize(target, options)
	oldSize := item.Size
	oldPrice := priceOf(item)
	sizeChanged := !sameSize(oldSize, res.option.Size)
	restored := false

	switch {
	case restoring:
		restored = sameSize(res.option.Size, target)
		item.OriginalSize = ""
		item.OriginalStoreID = ""
	case sizeChanged && item.OriginalSize == "" && oldSize != "":
		item.OriginalSize = oldSize
		item.OriginalStoreID = fromStoreID
	case sizeChanged && item.OriginalSize != "" && sameSize(item.OriginalSize, res.option.Size):
		// Landed on the original size at a third store
		restored = true
		item.OriginalSize = ""
		item.OriginalStoreID = ""
	}

	if sizeChanged {
		item.Size = res.option.Size
	}
	outcome.priceChange = applyPrice(&item, res.option.Price)

	if sizeChanged {
		outcome.sizeChange = &domain.SizeChange{
			ItemID:      item.ID,
			ItemName:    item.Name,
			OldSize:     oldSize,
			NewSize:     item.Size,
			OldPrice:    oldPrice,
			NewPrice:    res.option.Price,
			IsExact:     res.isExact,
			PercentDiff: res.percentDiff,
			Restored:    restored,
		}
	}

	if r.enableDebugLogging {
		zap.L().Debug("reprice: item resolved",
			zap.String("item", item.Name),
			zap.String("target", target),
			zap.String("resolved", res.option.Size),
			zap.Bool("exact", res.isExact),
			zap.Bool("restoring", restoring),
			zap.Bool("restored", restored),
			zap.Float64("percentDiff", res.percentDiff),
		)
	}

	return item, outcome
}

// resolveSize picks a store size for target: an exact match, then the closest
// size within tolerance, then the cheapest size on offer.
func (r *Repricer) resolveSize(target string, options []domain.StorePrice) resolution {
	if match, ok := FindExactSizeMatch(target, options); ok {
		return resolution{option: match, isExact: true}
	}

	closest := FindClosestPriced(target, options, r.tolerance)
	if closest.HasAutoMatch {
		best := closest.BestMatch
		return resolution{
			option:      domain.StorePrice{Size: best.Size, Price: best.Price},
			isExact:     best.IsExact,
			percentDiff: best.PercentDiff,
		}
	}

	cheapest, _ := CheapestOption(options)
	diff, _ := PercentDiff(target, cheapest.Size)
	return resolution{option: cheapest, isExact: false, percentDiff: diff}
}

// isSwitchBack reports whether the list is returning to the store that sold
// the item's original size. When that store was never recorded, the new store
// listing the original size exactly counts as a return.
func isSwitchBack(item domain.ListItem, fromStoreID, toStoreID string, options []domain.StorePrice) bool {
	if item.OriginalSize == "" || fromStoreID == toStoreID {
		return false
	}
	if item.OriginalStoreID != "" {
		return item.OriginalStoreID == toStoreID
	}
	_, ok := FindExactSizeMatch(item.OriginalSize, options)
	return ok
}

// applyPrice sets the item's price and returns the change, or nil if unchanged
func applyPrice(item *domain.ListItem, price float64) *domain.PriceChange {
	if item.EstimatedPrice != nil && *item.EstimatedPrice == price {
		return nil
	}
	change := &domain.PriceChange{
		ItemID:   item.ID,
		ItemName: item.Name,
		Size:     item.Size,
		OldPrice: priceOf(*item),
		NewPrice: price,
	}
	p := price
	item.EstimatedPrice = &p
	return change
}

func priceOf(item domain.ListItem) float64 {
	if item.EstimatedPrice == nil {
		return 0
	}
	return *item.EstimatedPrice
}

// sameSize treats differently phrased equivalent sizes as the same size
func sameSize(a, b string) bool {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return true
	}
	return AreEquivalent(a, b)
}

func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *Repricer) debugItem(item domain.ListItem, msg string) {
	if !r.enableDebugLogging {
		return
	}
	zap.L().Debug("reprice: "+msg,
		zap.String("item", item.Name),
		zap.String("size", item.Size),
	)
}
