package domain

import "time"

// ShoppingList is a user's list, priced against one store at a time
type ShoppingList struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StoreID   string     `json:"storeId"`
	Items     []ListItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ListItem is a single line on a shopping list.
// PriceOverride and SizeOverride are set by explicit user edits and are never
// cleared by repricing.
type ListItem struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Quantity        int      `json:"quantity"`
	Size            string   `json:"size,omitempty"`
	OriginalSize    string   `json:"originalSize,omitempty"`
	OriginalStoreID string   `json:"originalStoreId,omitempty"` // Store that listed OriginalSize
	EstimatedPrice  *float64 `json:"estimatedPrice,omitempty"`
	PriceOverride   bool     `json:"priceOverride"`
	SizeOverride    bool     `json:"sizeOverride"`
}

// LineTotal returns price x quantity, treating a missing price as zero and a
// non-positive quantity as one.
func (i ListItem) LineTotal() float64 {
	if i.EstimatedPrice == nil {
		return 0
	}
	qty := i.Quantity
	if qty <= 0 {
		qty = 1
	}
	return *i.EstimatedPrice * float64(qty)
}

// Total sums the line totals of every item on the list
func (l *ShoppingList) Total() float64 {
	var total float64
	for _, item := range l.Items {
		total += item.LineTotal()
	}
	return total
}

// StorePrice is one size a store sells an item in, and its price
type StorePrice struct {
	Size  string  `json:"size" msgpack:"size"`
	Price float64 `json:"price" msgpack:"price"`
}

// StoreListing is a store's price for a named item in a given size
type StoreListing struct {
	ID       string  `json:"id"`
	StoreID  string  `json:"storeId"`
	ItemName string  `json:"itemName" binding:"required"`
	Size     string  `json:"size" binding:"required"`
	Price    float64 `json:"price" binding:"gt=0"`
}

// SizeChange records an item whose size was changed by a store switch
type SizeChange struct {
	ItemID      string  `json:"itemId"`
	ItemName    string  `json:"itemName"`
	OldSize     string  `json:"oldSize"`
	NewSize     string  `json:"newSize"`
	OldPrice    float64 `json:"oldPrice"`
	NewPrice    float64 `json:"newPrice"`
	IsExact     bool    `json:"isExact"`
	PercentDiff float64 `json:"percentDiff"`
	Restored    bool    `json:"restored"` // Size went back to the item's original size
}

// PriceChange records an item whose price was changed by a store switch
type PriceChange struct {
	ItemID   string  `json:"itemId"`
	ItemName string  `json:"itemName"`
	Size     string  `json:"size"`
	OldPrice float64 `json:"oldPrice"`
	NewPrice float64 `json:"newPrice"`
}

// SwitchResult is the change set produced by one store switch
type SwitchResult struct {
	ListID                   string        `json:"listId"`
	FromStoreID              string        `json:"fromStoreId"`
	ToStoreID                string        `json:"toStoreId"`
	ItemsUpdated             int           `json:"itemsUpdated"`
	SizeChanges              []SizeChange  `json:"sizeChanges"`
	PriceChanges             []PriceChange `json:"priceChanges"`
	ManualOverridesPreserved int           `json:"manualOverridesPreserved"`
	PreservedItemIDs         []string      `json:"preservedItemIds"`
	PreviousTotal            float64       `json:"previousTotal"`
	NewTotal                 float64       `json:"newTotal"`
	Savings                  float64       `json:"savings"`
}
