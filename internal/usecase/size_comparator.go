package usecase

import (
	"math"
	"sort"
	"strings"

	"github.com/trolley/backend/internal/domain"
)

// Roundness scores used by SuggestStandardSize
const (
	scoreWholeThousand = 3 // 1kg, 2L
	scoreWholePint     = 3 // 1-6pt milk sizes
	scoreHalfThousand  = 2 // 500g, 1.5L
	scoreHundred       = 1 // 400g, 700ml
	scoreCommonPack    = 2 // 4, 6, 12, 24 packs
	scoreEvenCount     = 1
)

// commonPackCounts are the pack counts retailers stock most often
var commonPackCounts = map[int]bool{
	4: true, 6: true, 8: true, 10: true, 12: true, 15: true, 16: true, 18: true, 24: true,
}

// Normalize returns the canonical display form of raw, or raw unchanged when
// it cannot be parsed.
func Normalize(raw string) string {
	if p, ok := Parse(raw); ok {
		return p.Display
	}
	return raw
}

// PricePerUnit returns the price per item for counts and per 100ml/100g for
// volume and weight.
func PricePerUnit(price float64, size string) (float64, bool) {
	p, ok := Parse(size)
	if !ok {
		return 0, false
	}
	return pricePerUnitParsed(price, p)
}

func pricePerUnitParsed(price float64, p domain.ParsedSize) (float64, bool) {
	if p.Category == domain.CategoryCount {
		if p.Value == 0 {
			return 0, false
		}
		return price / p.Value, true
	}
	if p.NormalizedValue == 0 {
		return 0, false
	}
	return price / p.NormalizedValue * 100, true
}

// UnitLabel returns "/100ml", "/100g" or "/each" for size, defaulting to "/each"
func UnitLabel(size string) string {
	p, ok := Parse(size)
	if !ok {
		return domain.BaseUnitLabel(domain.CategoryCount)
	}
	return domain.BaseUnitLabel(p.Category)
}

// AreComparable reports whether both sizes parse into the same category
func AreComparable(a, b string) bool {
	pa, okA := Parse(a)
	pb, okB := Parse(b)
	return okA && okB && pa.Category == pb.Category
}

// AreEquivalent reports whether two sizes denote the same quantity, however
// they are phrased ("2pt" and "2 pints").
func AreEquivalent(a, b string) bool {
	pa, okA := Parse(a)
	pb, okB := Parse(b)
	return okA && okB && pa.Category == pb.Category && pa.NormalizedValue == pb.NormalizedValue
}

// PercentDiff returns |a-b| / max(a,b) over normalized values. It is symmetric
// and reports false across categories or on unparsable input.
func PercentDiff(a, b string) (float64, bool) {
	pa, okA := Parse(a)
	pb, okB := Parse(b)
	if !okA || !okB {
		return 0, false
	}
	return percentDiffParsed(pa, pb)
}

func percentDiffParsed(a, b domain.ParsedSize) (float64, bool) {
	if a.Category != b.Category {
		return 0, false
	}
	larger := math.Max(a.NormalizedValue, b.NormalizedValue)
	if larger == 0 {
		return 0, true
	}
	return math.Abs(a.NormalizedValue-b.NormalizedValue) / larger, true
}

// FindClosest ranks candidates against target with the default 20% tolerance
func FindClosest(target string, candidates []string) domain.SizeMatchResult {
	return FindClosestWithTolerance(target, candidates, domain.DefaultAutoMatchTolerance)
}

// FindClosestWithTolerance ranks candidates against target. A non-positive
// tolerance falls back to the default.
func FindClosestWithTolerance(target string, candidates []string, tolerance float64) domain.SizeMatchResult {
	options := make([]domain.StorePrice, len(candidates))
	for i, c := range candidates {
		options[i] = domain.StorePrice{Size: c}
	}
	return FindClosestPriced(target, options, tolerance)
}

// FindClosestPriced ranks priced store sizes against target.
// Unparsable options and options in another category are dropped. The best
// match is always the nearest survivor, even when it is outside tolerance;
// HasAutoMatch tells the caller whether to act on it.
func FindClosestPriced(target string, options []domain.StorePrice, tolerance float64) domain.SizeMatchResult {
	result := domain.SizeMatchResult{AllMatches: []domain.MatchCandidate{}}

	if tolerance <= 0 {
		tolerance = domain.DefaultAutoMatchTolerance
	}

	t, ok := Parse(target)
	if !ok {
		return result
	}

	for _, opt := range options {
		p, ok := Parse(opt.Size)
		if !ok {
			continue
		}
		diff, ok := percentDiffParsed(t, p)
		if !ok {
			continue
		}
		result.AllMatches = append(result.AllMatches, domain.MatchCandidate{
			Size:            opt.Size,
			Price:           opt.Price,
			PercentDiff:     diff,
			IsExact:         diff <= domain.ExactMatchTolerance,
			IsAutoMatchable: diff <= tolerance,
			MatchScore:      diff / tolerance,
		})
	}

	if len(result.AllMatches) == 0 {
		return result
	}

	sort.SliceStable(result.AllMatches, func(i, j int) bool {
		return result.AllMatches[i].PercentDiff < result.AllMatches[j].PercentDiff
	})

	best := result.AllMatches[0]
	result.BestMatch = &best
	result.HasExactMatch = best.IsExact
	result.HasAutoMatch = best.IsAutoMatchable
	return result
}

// FindExactSizeMatch returns the first option denoting the same quantity as
// size. Unparsable sizes fall back to case-insensitive text equality.
func FindExactSizeMatch(size string, options []domain.StorePrice) (domain.StorePrice, bool) {
	target, parsed := Parse(size)
	for _, opt := range options {
		if parsed {
			p, ok := Parse(opt.Size)
			if ok && p.Category == target.Category && p.NormalizedValue == target.NormalizedValue {
				return opt, true
			}
			continue
		}
		if strings.EqualFold(strings.TrimSpace(opt.Size), strings.TrimSpace(size)) {
			return opt, true
		}
	}
	return domain.StorePrice{}, false
}

// CheapestOption returns the lowest priced option, first one on ties
func CheapestOption(options []domain.StorePrice) (domain.StorePrice, bool) {
	if len(options) == 0 {
		return domain.StorePrice{}, false
	}
	cheapest := options[0]
	for _, opt := range options[1:] {
		if opt.Price < cheapest.Price {
			cheapest = opt
		}
	}
	return cheapest, true
}

// RankByValue orders parsable sizes by normalized value, smallest first.
// Mixed categories are ordered by raw magnitude only.
func RankByValue(sizes []string) []string {
	type ranked struct {
		size  string
		value float64
	}
	parsed := make([]ranked, 0, len(sizes))
	for _, s := range sizes {
		if p, ok := Parse(s); ok {
			parsed = append(parsed, ranked{size: s, value: p.NormalizedValue})
		}
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].value < parsed[j].value
	})

	out := make([]string, len(parsed))
	for i, r := range parsed {
		out[i] = r.size
	}
	return out
}

// GroupByCategory buckets parsable sizes by category
func GroupByCategory(sizes []string) domain.SizeGroups {
	groups := domain.SizeGroups{
		Volume: []string{},
		Weight: []string{},
		Count:  []string{},
	}
	for _, s := range sizes {
		p, ok := Parse(s)
		if !ok {
			continue
		}
		switch p.Category {
		case domain.CategoryVolume:
			groups.Volume = append(groups.Volume, s)
		case domain.CategoryWeight:
			groups.Weight = append(groups.Weight, s)
		case domain.CategoryCount:
			groups.Count = append(groups.Count, s)
		}
	}
	return groups
}

// SuggestStandardSize picks the "roundest" size, optionally restricted to one
// category (empty filter means any). Ties go to the smallest normalized value,
// then to input order.
func SuggestStandardSize(sizes []string, filter domain.Category) (string, bool) {
	var (
		best      string
		bestScore = -1
		bestValue float64
	)
	for _, s := range sizes {
		p, ok := Parse(s)
		if !ok {
			continue
		}
		if filter != "" && p.Category != filter {
			continue
		}
		score := roundnessScore(p)
		if score > bestScore || (score == bestScore && p.NormalizedValue < bestValue) {
			best, bestScore, bestValue = s, score, p.NormalizedValue
		}
	}
	return best, bestScore >= 0
}

func roundnessScore(p domain.ParsedSize) int {
	v := p.NormalizedValue
	if p.Category == domain.CategoryCount {
		if !isWhole(v) {
			return 0
		}
		n := int(v)
		switch {
		case commonPackCounts[n]:
			return scoreCommonPack
		case n%2 == 0:
			return scoreEvenCount
		}
		return 0
	}

	score := 0
	if p.Category == domain.CategoryVolume && isWholePints(v) {
		score += scoreWholePint
	}
	switch {
	case isWhole(v / 1000):
		score += scoreWholeThousand
	case isWhole(v / 500):
		score += scoreHalfThousand
	case isWhole(v / 100):
		score += scoreHundred
	}
	return score
}

func isWhole(v float64) bool {
	return v > 0 && math.Abs(v-math.Round(v)) < 1e-9
}

// ConvertSize restates raw in targetUnit ("2pt" to "ml" is "1136ml"). It
// reports false for unknown units and across categories.
func ConvertSize(raw, targetUnit string) (string, bool) {
	p, ok := Parse(raw)
	if !ok {
		return "", false
	}
	def, ok := domain.LookupUnit(strings.ToLower(strings.TrimSpace(targetUnit)))
	if !ok || def.Category != p.Category {
		return "", false
	}
	value := p.NormalizedValue / domain.CanonicalFactor(def.Unit)
	return formatQuantity(value) + unitSymbol(def.Unit), true
}

func unitSymbol(u domain.Unit) string {
	switch u {
	case domain.UnitLitre:
		return "L"
	case domain.UnitEach:
		return " each"
	default:
		return string(u)
	}
}

// RankByPricePerUnit orders priced sizes by price per standard unit, best
// value first. Unparsable sizes are dropped.
func RankByPricePerUnit(options []domain.StorePrice) []domain.PricedSize {
	ranked := make([]domain.PricedSize, 0, len(options))
	for _, opt := range options {
		p, ok := Parse(opt.Size)
		if !ok {
			continue
		}
		ppu, ok := pricePerUnitParsed(opt.Price, p)
		if !ok {
			continue
		}
		ranked = append(ranked, domain.PricedSize{
			Size:         opt.Size,
			Price:        opt.Price,
			PricePerUnit: ppu,
			UnitLabel:    domain.BaseUnitLabel(p.Category),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PricePerUnit < ranked[j].PricePerUnit
	})
	return ranked
}
