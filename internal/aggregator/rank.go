package aggregator

import (
	"sort"
	"strings"
	"time"

	"github.com/jonathan/company-pulse/internal/sources"
	"github.com/jonathan/company-pulse/internal/types"
)

// Local ranking weights.
const (
	titleTermWeight  = 10.0
	bodyTermWeight   = 2.0
	maxBodyTermScore = 30.0
	exactNameBonus   = 20.0
	maxRecencyBonus  = 20.0
	recencyWindow    = 72 * time.Hour
)

// LocalRelevance scores an article for companyName on [0,100] from term
// frequency, an exact-name bonus, and a recency bonus that decays to zero over 72h.
func LocalRelevance(a types.RawArticle, companyName string, now time.Time) float64 {
	terms := sources.SearchTerms(companyName)
	score := float64(sources.CountTerms(a.Title, terms)) * titleTermWeight
	score += min(float64(sources.CountTerms(a.Body, terms))*bodyTermWeight, maxBodyTermScore)

	name := strings.ToLower(strings.TrimSpace(companyName))
	if name != "" && (strings.Contains(strings.ToLower(a.Title), name) || strings.Contains(strings.ToLower(a.Body), name)) {
		score += exactNameBonus
	}

	if !a.PublishedAt.IsZero() {
		age := now.Sub(a.PublishedAt)
		if age < 0 {
			age = 0
		}
		if age < recencyWindow {
			score += maxRecencyBonus * (1 - float64(age)/float64(recencyWindow))
		}
	}

	return min(score, 100)
}

// SortByRelevance rescores articles in place and orders them by relevance
// descending, then publish time descending.
func SortByRelevance(articles []types.RawArticle, companyName string, now time.Time) {
	for i := range articles {
		articles[i].RelevanceScore = LocalRelevance(articles[i], companyName, now)
	}
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].RelevanceScore != articles[j].RelevanceScore {
			return articles[i].RelevanceScore > articles[j].RelevanceScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
