package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trolley/backend/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		value      float64
		unit       domain.Unit
		category   domain.Category
		normalized float64
		display    string
	}{
		{"pints", "2pt", 2, domain.UnitPint, domain.CategoryVolume, 1136, "2pt"},
		{"spelled pints", "2 pints", 2, domain.UnitPint, domain.CategoryVolume, 1136, "2pt"},
		{"ml shown as pints", "568ml", 568, domain.UnitMillilitre, domain.CategoryVolume, 568, "1pt"},
		{"ml shown as litres", "1000ml", 1000, domain.UnitMillilitre, domain.CategoryVolume, 1000, "1L"},
		{"decimal litres", "1.5l", 1.5, domain.UnitLitre, domain.CategoryVolume, 1500, "1.5L"},
		{"leading decimal point", ".5L", 0.5, domain.UnitLitre, domain.CategoryVolume, 500, "500ml"},
		{"centilitres restated in ml", "75cl", 750, domain.UnitMillilitre, domain.CategoryVolume, 750, "750ml"},
		{"half kilo", "0.5kg", 0.5, domain.UnitKilogram, domain.CategoryWeight, 500, "500g"},
		{"grams", "500 g", 500, domain.UnitGram, domain.CategoryWeight, 500, "500g"},
		{"pound", "1lb", 1, domain.UnitPound, domain.CategoryWeight, 453.6, "453.6g"},
		{"ounces", "16oz", 16, domain.UnitOunce, domain.CategoryWeight, 453.6, "453.6g"},
		{"multipack weight", "4x100g", 400, domain.UnitGram, domain.CategoryWeight, 400, "400g"},
		{"multipack with spaces", "6 x 500ml", 3000, domain.UnitMillilitre, domain.CategoryVolume, 3000, "3L"},
		{"multiplication sign", "4×100g", 400, domain.UnitGram, domain.CategoryWeight, 400, "400g"},
		{"hyphenated pack", "6-pack", 6, domain.UnitPack, domain.CategoryCount, 6, "6pk"},
		{"each", "12 each", 12, domain.UnitEach, domain.CategoryCount, 12, "12 each"},
		{"upper case", "2KG", 2, domain.UnitKilogram, domain.CategoryWeight, 2000, "2kg"},
		{"full-width digits", "２pt", 2, domain.UnitPint, domain.CategoryVolume, 1136, "2pt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			require.True(t, ok, "Parse(%q) failed", tt.input)
			assert.Equal(t, tt.value, got.Value)
			assert.Equal(t, tt.unit, got.Unit)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.normalized, got.NormalizedValue)
			assert.Equal(t, tt.display, got.Display)
		})
	}
}

func TestParse_Failures(t *testing.T) {
	for _, input := range []string{"", "   ", "500", "abc", "g500", "500 furlongs", "-2pt", "2pt milk"} {
		t.Run(input, func(t *testing.T) {
			_, ok := Parse(input)
			assert.False(t, ok, "Parse(%q) should fail", input)
		})
	}
}

func TestParse_KeepsTrimmedOriginal(t *testing.T) {
	got, ok := Parse("  2 Pints \t")
	require.True(t, ok)
	assert.Equal(t, "2 Pints", got.Original)
}

func TestParse_UKPintRoundTrip(t *testing.T) {
	for _, tt := range []struct {
		input      string
		normalized float64
	}{
		{"1pt", 568},
		{"2pt", 1136},
		{"4pt", 2272},
		{"6pt", 3408},
	} {
		t.Run(tt.input, func(t *testing.T) {
			p, ok := Parse(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.normalized, p.NormalizedValue)
			assert.Equal(t, tt.input, p.Display)
			assert.Equal(t, p.Display, Normalize(p.Display))
		})
	}
}

func TestParse_PintRangeBounds(t *testing.T) {
	// Seven pints is past the pint display range
	p, ok := Parse("3976ml")
	require.True(t, ok)
	assert.Equal(t, "4L", p.Display)

	// Half a pint is not a whole pint
	p, ok = Parse("284ml")
	require.True(t, ok)
	assert.Equal(t, "284ml", p.Display)
}

func TestParse_EquivalentPhrasings(t *testing.T) {
	a, ok := Parse("0.5kg")
	require.True(t, ok)
	b, ok := Parse("500g")
	require.True(t, ok)
	assert.Equal(t, a.NormalizedValue, b.NormalizedValue)

	c, ok := Parse("1.1l")
	require.True(t, ok)
	assert.Equal(t, 1100.0, c.NormalizedValue)
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2, "2"},
		{2.0000001, "2"},
		{1.5, "1.5"},
		{1.25, "1.3"},
		{453.6, "453.6"},
		{0.75, "0.8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatQuantity(tt.in), "formatQuantity(%v)", tt.in)
	}
}
