package pricefeed

import (
	"strings"

	"github.com/trolley/backend/internal/domain"
)

// PriceResponse is the feed's response for one item at one store
type PriceResponse struct {
	StoreID  string    `json:"storeId"`
	Products []Product `json:"products"`
}

// Product is a single product line in the feed
type Product struct {
	SKU     string  `json:"sku"`
	Title   string  `json:"title"`
	Size    string  `json:"size,omitempty"`
	Price   float64 `json:"price"`
	InStock *bool   `json:"inStock,omitempty"` // Missing means in stock
}

// MapToStorePrices converts feed products to store prices. Out-of-stock and
// unpriced products are dropped; a product without a size falls back to the
// size in its title when extract is set, and is dropped otherwise.
func MapToStorePrices(products []Product, extract SizeFromTitle) []domain.StorePrice {
	prices := make([]domain.StorePrice, 0, len(products))
	for _, p := range products {
		if p.InStock != nil && !*p.InStock {
			continue
		}
		if p.Price <= 0 {
			continue
		}

		size := strings.TrimSpace(p.Size)
		if size == "" && extract != nil {
			size, _ = extract(p.Title)
		}
		if size == "" {
			continue
		}

		prices = append(prices, domain.StorePrice{Size: size, Price: p.Price})
	}
	return prices
}
