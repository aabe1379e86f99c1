package quality

import (
	"regexp"
	"strings"

	"github.com/jonathan/company-pulse/internal/types"
)

// Highlight deductions.
const (
	shortTextPenalty       = 15.0
	longTextPenalty        = 10.0
	boilerplatePenalty     = 5.0
	vaguePenalty           = 5.0
	missingCompanyPenalty  = 15.0
	importancePenalty      = 20.0
	categoryPenalty        = 10.0
	nearDuplicatePenalty   = 10.0
	uniformImportanceScore = 10.0

	// NearDuplicateSimilarity is the word-set Jaccard similarity above which
	// two highlights count as the same point.
	NearDuplicateSimilarity = 0.8
)

var boilerplatePhrases = []string{
	"this article", "the article discusses", "in conclusion", "it is important to note",
	"stay tuned", "read more", "lorem ipsum", "various things", "a number of things",
	"according to the article", "in today's fast-paced world",
}

var businessTerms = []string{
	"revenue", "profit", "earnings", "sales", "growth", "margin", "acquisition",
	"merger", "launch", "partnership", "investment", "funding", "customers",
	"market", "shares", "stock", "guidance", "forecast", "contract", "expansion",
	"layoffs", "ceo", "quarter", "dividend", "deal", "plant", "product",
}

var hasDigit = regexp.MustCompile(`\d`)

// ValidateHighlights scores highlights extracted for companyName.
func (v *Validator) ValidateHighlights(highlights []types.Highlight, companyName string) *Report {
	s := newScorer()
	if len(highlights) == 0 {
		s.deduct("empty", SeverityError, 100, nil, "no highlights returned")
		return s.report(v.highlightThreshold())
	}

	mentionsCompany := false
	company := strings.ToLower(strings.TrimSpace(companyName))

	for i, h := range highlights {
		text := strings.TrimSpace(h.Text)
		lower := strings.ToLower(text)
		n := len([]rune(text))

		switch {
		case n < types.HighlightMinLength:
			s.deduct("text_length", SeverityWarning, shortTextPenalty, intPtr(i),
				"highlight %d: text shorter than %d characters", i+1, types.HighlightMinLength)
		case n > types.HighlightMaxLength:
			s.deduct("text_length", SeverityWarning, longTextPenalty, intPtr(i),
				"highlight %d: text longer than %d characters", i+1, types.HighlightMaxLength)
		}

		for _, phrase := range boilerplatePhrases {
			if strings.Contains(lower, phrase) {
				s.deduct("boilerplate", SeverityWarning, boilerplatePenalty, intPtr(i),
					"highlight %d: generic phrase %q", i+1, phrase)
				break
			}
		}

		if !hasDigit.MatchString(text) && !containsAnyTerm(lower, businessTerms) {
			s.deduct("vague", SeverityWarning, vaguePenalty, intPtr(i),
				"highlight %d: no concrete figures or business terms", i+1)
		}

		if company != "" && mentionsName(lower, company) {
			mentionsCompany = true
		}

		if h.Importance < types.HighlightMinImportance || h.Importance > types.HighlightMaxImportance {
			s.deduct("importance", SeverityError, importancePenalty, intPtr(i),
				"highlight %d: importance must be 1-5", i+1)
		}

		if !h.Category.Valid() {
			s.deduct("category", SeverityError, categoryPenalty, intPtr(i),
				"highlight %d: invalid category %q", i+1, h.Category)
		}
	}

	if company != "" && !mentionsCompany {
		s.deduct("company_reference", SeverityWarning, missingCompanyPenalty, nil,
			"no highlight mentions %s", companyName)
	}

	for i := 0; i < len(highlights); i++ {
		for j := i + 1; j < len(highlights); j++ {
			if Jaccard(highlights[i].Text, highlights[j].Text) > NearDuplicateSimilarity {
				s.deduct("near_duplicate", SeverityWarning, nearDuplicatePenalty, intPtr(j),
					"highlight %d repeats highlight %d", j+1, i+1)
			}
		}
	}

	if len(highlights) > 1 && uniformImportance(highlights) {
		s.deduct("uniform_importance", SeverityWarning, uniformImportanceScore, nil,
			"all highlights share importance %d", highlights[0].Importance)
	}

	return s.report(v.highlightThreshold())
}

// Jaccard returns the word-set Jaccard similarity of two texts.
func Jaccard(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 && len(wb) == 0 {
		return 1
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), isSeparator) {
		set[w] = true
	}
	return set
}

func isSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
}

func uniformImportance(highlights []types.Highlight) bool {
	for _, h := range highlights[1:] {
		if h.Importance != highlights[0].Importance {
			return false
		}
	}
	return true
}

func containsAnyTerm(lower string, terms []string) bool {
	words := wordSet(lower)
	for _, t := range terms {
		if words[t] {
			return true
		}
	}
	return false
}

// mentionsName matches the full name or its first significant word.
func mentionsName(lower, company string) bool {
	if strings.Contains(lower, company) {
		return true
	}
	for _, w := range strings.FieldsFunc(company, isSeparator) {
		if len(w) >= 3 {
			return wordSet(lower)[w]
		}
	}
	return false
}
