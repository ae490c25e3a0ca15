package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/trolley/backend/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// Size grammars, applied to folded input (lowercase, no whitespace)
var (
	// "4x100g", "6x500ml": count x value unit
	multipackSizePattern = regexp.MustCompile(`^(\d+)x(\d+(?:\.\d+)?|\.\d+)([a-z]+)$`)

	// "2pt", "6-pack", "1.5l": value, optional hyphen or x, unit
	simpleSizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)[-x]?([a-z]+)$`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

const (
	pintDisplayMin = domain.PintFactor     // 1pt
	pintDisplayMax = domain.PintFactor * 6 // 6pt
)

// Parse converts a raw size string such as "2 pints" or "4 x 100g" into a
// ParsedSize. It reports false when the input has no leading number, no unit,
// or a unit that is not registered.
func Parse(raw string) (domain.ParsedSize, bool) {
	original := strings.TrimSpace(raw)
	if original == "" {
		return domain.ParsedSize{}, false
	}

	folded := foldSizeText(original)

	var (
		value float64
		alias string
	)
	if m := multipackSizePattern.FindStringSubmatch(folded); m != nil {
		count, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return domain.ParsedSize{}, false
		}
		each, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return domain.ParsedSize{}, false
		}
		value, alias = count*each, m[3]
	} else if m := simpleSizePattern.FindStringSubmatch(folded); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return domain.ParsedSize{}, false
		}
		value, alias = v, m[2]
	} else {
		return domain.ParsedSize{}, false
	}

	def, ok := domain.LookupUnit(alias)
	if !ok {
		return domain.ParsedSize{}, false
	}

	normalized := roundPrecision(value * def.Factor)

	// Aliases like "cl" share a normalized unit with a different factor;
	// restate the value in that unit so Value x factor(Unit) holds.
	unitValue := value
	if cf := domain.CanonicalFactor(def.Unit); cf != def.Factor {
		unitValue = roundPrecision(normalized / cf)
	}

	return domain.ParsedSize{
		Value:           unitValue,
		Unit:            def.Unit,
		Category:        def.Category,
		NormalizedValue: normalized,
		Display:         displaySize(normalized, def.Category, def.Unit),
		Original:        original,
	}, true
}

// foldSizeText lowercases the input, folds compatibility characters (full-width
// digits, the multiplication sign) and drops all whitespace.
func foldSizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ReplaceAll(s, "×", "x")
	s = strings.ToLower(s)
	return whitespacePattern.ReplaceAllString(s, "")
}

// displaySize renders a canonical display string from a normalized value.
// Volume prefers whole UK pints from 1 to 6, then litres from 1000ml up.
func displaySize(normalized float64, category domain.Category, unit domain.Unit) string {
	switch category {
	case domain.CategoryVolume:
		if isWholePints(normalized) {
			return formatQuantity(normalized/domain.PintFactor) + "pt"
		}
		if normalized >= 1000 {
			return formatQuantity(normalized/1000) + "L"
		}
		return formatQuantity(normalized) + "ml"
	case domain.CategoryWeight:
		if normalized >= 1000 {
			return formatQuantity(normalized/1000) + "kg"
		}
		return formatQuantity(normalized) + "g"
	default:
		if unit == domain.UnitEach {
			return formatQuantity(normalized) + " each"
		}
		return formatQuantity(normalized) + "pk"
	}
}

// isWholePints reports whether ml is an exact multiple of a UK pint in [1pt, 6pt]
func isWholePints(ml float64) bool {
	if ml < pintDisplayMin || ml > pintDisplayMax {
		return false
	}
	pints := ml / domain.PintFactor
	return math.Abs(pints-math.Round(pints)) < 1e-9
}

// formatQuantity keeps one decimal place and drops a trailing ".0"
func formatQuantity(v float64) string {
	s := strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}

// roundPrecision trims float noise such as 1.1*1000 = 1100.0000000000002
func roundPrecision(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
