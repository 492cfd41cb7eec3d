package drawsheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// boilerplatePatterns is the ordered drop-list applied before any
// classification. Matches are discarded outright, so running headers,
// footers, and legal text never reach the layout stages or the
// diagnostic trace.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s+\d+(\s+of\s+\d+)?$`),
	regexp.MustCompile(`(?i)^-?\s*\d+\s*-$`), // "- 3 -" style pagination
	regexp.MustCompile(`(?i)^(winning|past)\s+numbers?$`),
	regexp.MustCompile(`(?i)^draw(ing)?\s+(date|results?)$`),
	regexp.MustCompile(`(?i)lottery`),
	regexp.MustCompile(`(?i)all\s+rights\s+reserved`),
	regexp.MustCompile(`(?i)^please\s+play\s+responsibly`),
	regexp.MustCompile(`(?i)^for\s+(more\s+)?information`),
	regexp.MustCompile(`(?i)^(www\.|https?://)`),
	regexp.MustCompile(`(?i)^(date|session|time|numbers?|results?)$`), // column headers
}

// dateLayouts are the date-literal grammars bulletins have been observed
// to use, each paired with the regexp that gates the (much slower)
// time.Parse call. Parsing also validates the calendar date: "02/30/2024"
// matches the pattern but fails normalization and demotes to noise.
var dateLayouts = []struct {
	pattern *regexp.Regexp
	layouts []string
}{
	{
		pattern: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		layouts: []string{"01/02/2006", "1/2/2006"},
	},
	{
		pattern: regexp.MustCompile(`^[A-Za-z]{3}\.?\s+\d{1,2},\s*\d{4}$`),
		layouts: []string{"Jan 2, 2006", "Jan 02, 2006", "Jan. 2, 2006", "Jan. 02, 2006"},
	},
	{
		pattern: regexp.MustCompile(`^\d{1,2}-[A-Za-z]{3}-\d{4}$`),
		layouts: []string{"2-Jan-2006", "02-Jan-2006"},
	},
}

// classifyTokens labels every token in the stream. Dropped boilerplate
// is absent from the output; everything else appears with its kind,
// noise included, so the diagnostic trace can show the full picture.
// Classification is a pure per-token function with no ordering
// dependency between tokens.
func classifyTokens(tokens []RawToken, game GameConfig) []PositionedToken {
	out := make([]PositionedToken, 0, len(tokens))
	for _, t := range tokens {
		text := strings.TrimSpace(t.Text)
		if text == "" || isBoilerplate(text) {
			continue
		}
		out = append(out, PositionedToken{
			Text: text,
			X:    t.X,
			Y:    t.Y,
			Page: t.Page,
			Kind: classifyText(text, game),
		})
	}
	return out
}

func isBoilerplate(text string) bool {
	for _, p := range boilerplatePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func classifyText(text string, game GameConfig) TokenKind {
	if _, ok := parseDate(text); ok {
		return KindDate
	}

	upper := strings.ToUpper(text)
	for _, s := range game.Sessions {
		if upper == strings.ToUpper(s) {
			return KindSession
		}
	}
	for tag := range game.TagPriority {
		if upper == strings.ToUpper(tag) {
			return KindTag
		}
	}
	for _, tag := range game.VariantTags {
		if upper == strings.ToUpper(tag) {
			return KindTag
		}
	}

	if n, ok := parseShortNumber(text); ok {
		if n >= game.MinValue && n <= game.MaxValue {
			return KindValue
		}
		// Out-of-domain numerics are noise, not values; this keeps page
		// numbers and multipliers out of the value columns.
		return KindNoise
	}

	return KindNoise
}

// parseDate normalizes a date-literal token against the known grammars.
// Tokens that look like a date but fail calendar validation are not
// dates.
func parseDate(text string) (time.Time, bool) {
	for _, g := range dateLayouts {
		if !g.pattern.MatchString(text) {
			continue
		}
		normalized := normalizeMonthCase(text)
		for _, layout := range g.layouts {
			if d, err := time.Parse(layout, normalized); err == nil {
				return d, true
			}
		}
		// Grammar matched but no layout normalized it; demote.
		return time.Time{}, false
	}
	return time.Time{}, false
}

// normalizeMonthCase rewrites "JAN 5, 2024" or "jan 5, 2024" into the
// title case time.Parse expects for abbreviated month names.
func normalizeMonthCase(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	startOfWord := true
	for _, r := range text {
		if unicode.IsLetter(r) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			b.WriteRune(r)
			startOfWord = true
		}
	}
	return b.String()
}

// parseShortNumber accepts tokens of at most three digits, the widest a
// drawn value can print. Longer numerics (years, prize amounts) never
// qualify as values.
func parseShortNumber(text string) (int, bool) {
	if len(text) == 0 || len(text) > 3 {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return n, true
}
