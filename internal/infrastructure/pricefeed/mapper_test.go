package pricefeed

import (
	"testing"

	"github.com/trolley/backend/internal/domain"
)

func TestMapToStorePrices(t *testing.T) {
	inStock, outOfStock := true, false
	titleSize := func(title string) (string, bool) {
		if title == "Eggs 6 pack" {
			return "6 pack", true
		}
		return "", false
	}

	tests := []struct {
		name     string
		products []Product
		extract  SizeFromTitle
		want     []domain.StorePrice
	}{
		{
			name: "keeps sized in-stock products",
			products: []Product{
				{Title: "Milk", Size: "2pt", Price: 1.45, InStock: &inStock},
				{Title: "Milk", Size: " 4 pints ", Price: 1.95},
			},
			want: []domain.StorePrice{
				{Size: "2pt", Price: 1.45},
				{Size: "4 pints", Price: 1.95},
			},
		},
		{
			name: "drops out of stock and unpriced products",
			products: []Product{
				{Title: "Milk", Size: "2pt", Price: 1.45, InStock: &outOfStock},
				{Title: "Milk", Size: "1pt", Price: 0},
			},
			want: []domain.StorePrice{},
		},
		{
			name: "falls back to title size",
			products: []Product{
				{Title: "Eggs 6 pack", Price: 2.10},
				{Title: "Loose eggs", Price: 0.30},
			},
			extract: titleSize,
			want:    []domain.StorePrice{{Size: "6 pack", Price: 2.10}},
		},
		{
			name:     "drops unsized products without extractor",
			products: []Product{{Title: "Eggs 6 pack", Price: 2.10}},
			want:     []domain.StorePrice{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapToStorePrices(tt.products, tt.extract)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("prices[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
