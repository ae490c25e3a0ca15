package domain

// Category groups units whose magnitudes can be compared with each other.
// Sizes in different categories are never compared numerically.
type Category string

const (
	CategoryVolume Category = "volume"
	CategoryWeight Category = "weight"
	CategoryCount  Category = "count"
)

// Unit is the normalized unit symbol a size was written in
type Unit string

const (
	UnitMillilitre Unit = "ml"
	UnitLitre      Unit = "l"
	UnitPint       Unit = "pt"
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitOunce      Unit = "oz"
	UnitPound      Unit = "lb"
	UnitPack       Unit = "pk"
	UnitEach       Unit = "each"
)

// Matching constants shared by the comparator and the repricer
const (
	DefaultAutoMatchTolerance = 0.20 // Max percent difference for an automatic match
	ExactMatchTolerance       = 0.01 // Max percent difference to call two sizes the same
)

// ParsedSize is the structured form of a free-text size such as "2 pints" or "4x100g"
type ParsedSize struct {
	Value           float64  `json:"value"`
	Unit            Unit     `json:"unit"`
	Category        Category `json:"category"`
	NormalizedValue float64  `json:"normalizedValue"` // Value in the category base unit (ml, g or 1)
	Display         string   `json:"display"`
	Original        string   `json:"original"`
}

// MatchCandidate is a candidate size scored against a target size
type MatchCandidate struct {
	Size            string  `json:"size"`
	Price           float64 `json:"price"`
	PercentDiff     float64 `json:"percentDiff"`
	IsExact         bool    `json:"isExact"`
	IsAutoMatchable bool    `json:"isAutoMatchable"`
	MatchScore      float64 `json:"matchScore"` // PercentDiff / tolerance; 1.0 sits on the boundary
}

// SizeMatchResult is the outcome of a closest-size search
type SizeMatchResult struct {
	BestMatch     *MatchCandidate  `json:"bestMatch"`
	AllMatches    []MatchCandidate `json:"allMatches"`
	HasExactMatch bool             `json:"hasExactMatch"`
	HasAutoMatch  bool             `json:"hasAutoMatch"`
}

// SizeGroups buckets size strings by category, keeping input order
type SizeGroups struct {
	Volume []string `json:"volume"`
	Weight []string `json:"weight"`
	Count  []string `json:"count"`
}

// PricedSize is a store size annotated with its price per standard unit
type PricedSize struct {
	Size         string  `json:"size"`
	Price        float64 `json:"price"`
	PricePerUnit float64 `json:"pricePerUnit"`
	UnitLabel    string  `json:"unitLabel"`
}
