// Package companies resolves free-text company names to canonical company records.
package companies

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Input length bounds.
const (
	MinNameLength = 2
	MaxNameLength = 255
)

// Validation reasons.
const (
	ReasonEmpty      = "name must not be empty"
	ReasonTooShort   = "name must be at least 2 characters"
	ReasonTooLong    = "name must be at most 255 characters"
	ReasonNumeric    = "name must not be purely numeric"
	ReasonSymbolOnly = "name must contain letters or digits"
)

var namePrefixes = []string{"the "}

// Legal-form suffixes removed from the end of a name.
var nameSuffixes = []string{
	"corporation", "corp", "incorporated", "inc", "limited", "ltd", "llc", "llp",
	"company", "co", "group", "holdings", "holding", "plc", "ag", "sa", "gmbh", "nv",
}

// Connector words kept lower-case unless they start the name.
var connectorWords = map[string]bool{
	"and": true, "of": true, "the": true, "for": true, "in": true,
	"on": true, "at": true, "by": true, "to": true, "a": true, "an": true,
}

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s&.\-]`)
	multiSpace      = regexp.MustCompile(`\s+`)
	suffixPattern   = regexp.MustCompile(`\s+(` + strings.Join(nameSuffixes, "|") + `)\.?$`)
	alphaToken      = regexp.MustCompile(`^[a-z]+$`)
	numericOnly     = regexp.MustCompile(`^[\s.,\-]*[0-9][0-9\s.,\-]*$`)
)

// ValidateName returns every reason raw cannot be used as a company name.
// An empty slice means the name is acceptable.
func ValidateName(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	var reasons []string

	if trimmed == "" {
		return []string{ReasonEmpty}
	}
	if len([]rune(trimmed)) < MinNameLength {
		reasons = append(reasons, ReasonTooShort)
	}
	if len([]rune(trimmed)) > MaxNameLength {
		reasons = append(reasons, ReasonTooLong)
	}
	if numericOnly.MatchString(trimmed) {
		reasons = append(reasons, ReasonNumeric)
	}
	if !strings.ContainsFunc(trimmed, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) {
		reasons = append(reasons, ReasonSymbolOnly)
	}

	return reasons
}

// Normalize converts a free-text company name into its canonical display form.
// Example: "the apple computer, inc." -> "Apple Computer"
// Normalize is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(raw)
	s = disallowedChars.ReplaceAllString(s, "")
	s = collapse(s)

	// Repeat until a full pass leaves s unchanged.
	for prev := ""; s != prev; {
		prev = s
		for _, prefix := range namePrefixes {
			if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
				s = strings.TrimSpace(s[len(prefix):])
			}
		}
		s = strings.TrimRight(s, " .-&")
		if loc := suffixPattern.FindStringIndex(s); loc != nil {
			s = s[:loc[0]]
		}
		s = strings.TrimRight(s, " .-&")
	}

	return capitalize(s)
}

// matchKey returns the lower-case form used for name comparison.
func matchKey(raw string) string {
	return strings.ToLower(Normalize(raw))
}

func collapse(s string) string {
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// capitalize re-cases a lower-case, space-separated name token by token.
func capitalize(s string) string {
	if s == "" {
		return ""
	}

	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		switch {
		case i > 0 && connectorWords[tok]:
			tokens[i] = tok
		case alphaToken.MatchString(tok) && len(tok) <= 3:
			tokens[i] = strings.ToUpper(tok)
		default:
			tokens[i] = cases.Title(language.English).String(tok)
		}
	}
	return strings.Join(tokens, " ")
}
