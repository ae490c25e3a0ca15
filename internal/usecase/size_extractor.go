package usecase

import (
	"regexp"
	"strings"

	"github.com/trolley/backend/internal/domain"
	"go.uber.org/zap"
)

// SizeExtractor pulls size tokens out of product titles and receipt lines
type SizeExtractor struct {
	enableDebugLogging bool
}

// Compiled patterns for size extraction
var (
	// Matches "2 pints", "6-pack", "4 x 100g", "4×100g" using every registered alias
	sizeTokenPattern = buildSizeTokenPattern()

	// Lone punctuation left behind once a size token is cut out
	orphanedPunctuationPattern = regexp.MustCompile(`\s+[,\-;:/]+\s+`)
	trailingPunctuationPattern = regexp.MustCompile(`[,\-;:/]+\s*$`)
	leadingPunctuationPattern  = regexp.MustCompile(`^\s*[,\-;:/]+`)
)

func buildSizeTokenPattern() *regexp.Regexp {
	aliases := domain.UnitAliases()
	quoted := make([]string, len(aliases))
	for i, a := range aliases {
		quoted[i] = regexp.QuoteMeta(a)
	}
	return regexp.MustCompile(
		`(?i)\b(?:\d+\s*[x×]\s*)?\d+(?:\.\d+)?\s*-?\s*(?:` + strings.Join(quoted, "|") + `)\b`,
	)
}

// NewSizeExtractor creates a new size extractor
func NewSizeExtractor(enableDebugLogging bool) *SizeExtractor {
	return &SizeExtractor{enableDebugLogging: enableDebugLogging}
}

// ExtractSize returns the first parsable size token in title, as written.
// "Semi Skimmed Milk 2 Pints" gives "2 Pints".
func (e *SizeExtractor) ExtractSize(title string) (string, bool) {
	for _, token := range sizeTokenPattern.FindAllString(title, -1) {
		token = strings.TrimSpace(token)
		if _, ok := Parse(token); ok {
			if e.enableDebugLogging {
				zap.L().Debug("extract: size found",
					zap.String("title", title),
					zap.String("size", token),
				)
			}
			return token, true
		}
	}
	return "", false
}

// StripSize removes every size token from title and tidies what is left.
// The result is the item name used for price lookups.
func (e *SizeExtractor) StripSize(title string) string {
	cleaned := sizeTokenPattern.ReplaceAllString(title, " ")
	cleaned = orphanedPunctuationPattern.ReplaceAllString(" "+cleaned+" ", " ")
	cleaned = trailingPunctuationPattern.ReplaceAllString(strings.TrimSpace(cleaned), "")
	cleaned = leadingPunctuationPattern.ReplaceAllString(cleaned, "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if e.enableDebugLogging {
		zap.L().Debug("extract: stripped size",
			zap.String("input", title),
			zap.String("output", cleaned),
		)
	}
	return cleaned
}
