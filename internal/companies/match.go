package companies

import (
	"sort"
	"strings"

	"github.com/jonathan/company-pulse/internal/types"
)

// Match confidences and thresholds.
const (
	ExactConfidence  = 1.0
	TickerConfidence = 0.95
	AliasConfidence  = 0.9

	// containmentBoost is the floor applied when one name contains the other.
	containmentBoost = 0.7
	// maxFuzzyConfidence keeps fuzzy matches below alias matches.
	maxFuzzyConfidence = 0.89
	// MinMatchConfidence is the exclusive lower bound for retained candidates.
	MinMatchConfidence = 0.3
	// AcceptConfidence is the exclusive lower bound for reusing an existing company.
	AcceptConfidence = 0.8
)

// MatchCompanies scores every known company against raw and returns the
// candidates above MinMatchConfidence, best first.
func MatchCompanies(raw string, known []types.Company) []types.CompanyMatch {
	input := matchKey(raw)
	rawLower := strings.ToLower(strings.TrimSpace(raw))
	if input == "" {
		return nil
	}

	var matches []types.CompanyMatch
	for _, c := range known {
		confidence, kind := scoreCompany(input, rawLower, c)
		if confidence > MinMatchConfidence {
			matches = append(matches, types.CompanyMatch{Company: c, Confidence: confidence, MatchType: kind})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Company.ID < matches[j].Company.ID
	})
	return matches
}

func scoreCompany(input, rawLower string, c types.Company) (float64, string) {
	name := matchKey(c.Name)
	if name == input || strings.ToLower(c.Name) == rawLower {
		return ExactConfidence, types.MatchTypeExact
	}

	if ticker := strings.ToLower(c.TickerValue()); ticker != "" && ticker == rawLower {
		return TickerConfidence, types.MatchTypeTicker
	}

	for _, alias := range c.Aliases {
		a := strings.ToLower(strings.TrimSpace(alias))
		if a == rawLower || matchKey(alias) == input {
			return AliasConfidence, types.MatchTypeAlias
		}
	}

	return FuzzySimilarity(input, name), types.MatchTypeFuzzy
}

// FuzzySimilarity scores two lower-case names in [0, maxFuzzyConfidence].
func FuzzySimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	longest := max(len([]rune(a)), len([]rune(b)))
	score := 1 - float64(Levenshtein(a, b))/float64(longest)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		score = max(score, containmentBoost)
	}

	if ratio := wordOverlap(a, b); ratio > 0 {
		score = max(score, score+(1-score)*ratio*0.5)
	}

	return min(max(score, 0), maxFuzzyConfidence)
}

// wordOverlap returns shared tokens over the larger token count, or 0 if none match.
func wordOverlap(a, b string) float64 {
	wa := strings.Fields(a)
	wb := strings.Fields(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(wb))
	for _, w := range wb {
		set[w] = true
	}
	common := 0
	for _, w := range wa {
		if set[w] {
			common++
			delete(set, w)
		}
	}
	if common == 0 {
		return 0
	}
	return float64(common) / float64(max(len(wa), len(wb)))
}

// Levenshtein returns the rune-level edit distance between a and b.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
