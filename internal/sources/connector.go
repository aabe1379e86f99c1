// Package sources implements the news source connectors and their
// source-local relevance heuristics.
package sources

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/company-pulse/internal/types"
)

// Connector is one external news source.
//
// Search fails closed: on any failure it returns no articles and an *Error.
// A connector that is not configured returns an empty list and no error.
type Connector interface {
	Name() string
	Search(ctx context.Context, companyName string, limit int) ([]types.RawArticle, error)
}

// Source-local relevance weights.
const (
	titleHitWeight       = 20.0
	bodyHitWeight        = 5.0
	positiveWordWeight   = 3.0
	negativeWordWeight   = 2.0
	maxSentimentBonus    = 15.0
	maxSourceRelevance   = 100.0
	minSearchTermsLength = 2
)

var positiveWords = []string{
	"growth", "profit", "record", "expands", "expansion", "launch", "launches",
	"partnership", "acquires", "acquisition", "beats", "surge", "raises", "wins",
}

var negativeWords = []string{
	"loss", "layoffs", "lawsuit", "decline", "recall", "investigation",
	"misses", "downgrade", "fine", "breach", "cuts",
}

var wordSplit = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// SearchTerms returns the lower-case words of a company name that are worth
// counting, dropping very short tokens.
func SearchTerms(companyName string) []string {
	var terms []string
	for _, w := range wordSplit.Split(strings.ToLower(companyName), -1) {
		if len(w) >= minSearchTermsLength {
			terms = append(terms, w)
		}
	}
	return terms
}

// CountTerms counts occurrences of each term as a whole word in text.
func CountTerms(text string, terms []string) int {
	if len(terms) == 0 || text == "" {
		return 0
	}
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}

	count := 0
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if set[w] {
			count++
		}
	}
	return count
}

// ScoreRelevance is the source-local heuristic: weighted term frequency in
// title and body plus a capped business-sentiment bonus, clamped to [0,100].
// Articles that never mention the company score 0.
func ScoreRelevance(companyName, title, body string) float64 {
	terms := SearchTerms(companyName)
	titleHits := CountTerms(title, terms)
	bodyHits := CountTerms(body, terms)
	if titleHits+bodyHits == 0 {
		return 0
	}

	score := float64(titleHits)*titleHitWeight + float64(bodyHits)*bodyHitWeight

	text := title + " " + body
	sentiment := float64(CountTerms(text, positiveWords))*positiveWordWeight +
		float64(CountTerms(text, negativeWords))*negativeWordWeight
	score += min(sentiment, maxSentimentBonus)

	return min(score, maxSourceRelevance)
}

// finalize scores each article, raises scores to floor, drops articles that
// still score 0, and truncates to limit.
func finalize(companyName string, articles []types.RawArticle, limit int, floor float64) []types.RawArticle {
	out := make([]types.RawArticle, 0, len(articles))
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.URL) == "" {
			continue
		}
		a.RelevanceScore = max(ScoreRelevance(companyName, a.Title, a.Body), floor)
		if a.RelevanceScore == 0 {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
