package domain

import "sort"

// Conversion factors that are part of the public contract
const (
	PintFactor  = 568.0 // UK pint in ml
	PoundFactor = 453.6 // lb in g
	OunceFactor = 28.35 // oz in g
)

// UnitDefinition maps one alias onto its normalized unit and base-unit factor.
// Factor is always relative to the category base unit: ml, g, or 1 for counts.
type UnitDefinition struct {
	Alias    string
	Factor   float64
	Unit     Unit
	Category Category
}

// unitTable is built once at init and never mutated afterwards
var unitTable = buildUnitTable()

func buildUnitTable() map[string]UnitDefinition {
	groups := []struct {
		unit     Unit
		category Category
		factor   float64
		aliases  []string
	}{
		// Volume
		{UnitMillilitre, CategoryVolume, 1, []string{
			"ml", "mls", "millilitre", "millilitres", "milliliter", "milliliters",
		}},
		{UnitMillilitre, CategoryVolume, 10, []string{
			"cl", "centilitre", "centilitres", "centiliter", "centiliters",
		}},
		{UnitLitre, CategoryVolume, 1000, []string{
			"l", "ltr", "ltrs", "litre", "litres", "liter", "liters",
		}},
		{UnitPint, CategoryVolume, PintFactor, []string{
			"pt", "pts", "pint", "pints",
		}},

		// Weight
		{UnitGram, CategoryWeight, 1, []string{
			"g", "gr", "grm", "gram", "grams", "gramme", "grammes",
		}},
		{UnitKilogram, CategoryWeight, 1000, []string{
			"kg", "kgs", "kilo", "kilos", "kilogram", "kilograms", "kilogramme", "kilogrammes",
		}},
		{UnitOunce, CategoryWeight, OunceFactor, []string{
			"oz", "ounce", "ounces",
		}},
		{UnitPound, CategoryWeight, PoundFactor, []string{
			"lb", "lbs", "pound", "pounds",
		}},

		// Count
		{UnitPack, CategoryCount, 1, []string{
			"pk", "pks", "pck", "pack", "packs", "multipack",
		}},
		{UnitEach, CategoryCount, 1, []string{
			"each", "ea", "ct", "count", "pc", "pcs", "piece", "pieces", "item", "items",
		}},
	}

	table := make(map[string]UnitDefinition)
	for _, g := range groups {
		for _, alias := range g.aliases {
			if _, dup := table[alias]; dup {
				panic("duplicate unit alias: " + alias)
			}
			table[alias] = UnitDefinition{
				Alias:    alias,
				Factor:   g.factor,
				Unit:     g.unit,
				Category: g.category,
			}
		}
	}
	return table
}

// LookupUnit returns the definition registered for alias. The lookup is
// case-sensitive; callers lowercase first.
func LookupUnit(alias string) (UnitDefinition, bool) {
	def, ok := unitTable[alias]
	return def, ok
}

// BaseUnitLabel returns the per-unit price label for a category
func BaseUnitLabel(c Category) string {
	switch c {
	case CategoryVolume:
		return "/100ml"
	case CategoryWeight:
		return "/100g"
	default:
		return "/each"
	}
}

// canonicalFactors gives the base-unit factor of each normalized unit
var canonicalFactors = map[Unit]float64{
	UnitMillilitre: 1,
	UnitLitre:      1000,
	UnitPint:       PintFactor,
	UnitGram:       1,
	UnitKilogram:   1000,
	UnitOunce:      OunceFactor,
	UnitPound:      PoundFactor,
	UnitPack:       1,
	UnitEach:       1,
}

// CanonicalFactor returns how many base units one u is worth
func CanonicalFactor(u Unit) float64 {
	if f, ok := canonicalFactors[u]; ok {
		return f
	}
	return 1
}

// UnitAliases returns every registered alias, longest first
func UnitAliases() []string {
	aliases := make([]string, 0, len(unitTable))
	for alias := range unitTable {
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})
	return aliases
}
