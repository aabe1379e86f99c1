package processing

import (
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/company-pulse/internal/metrics"
	"github.com/jonathan/company-pulse/internal/types"
)

// Sort tolerances.
const (
	relevanceTieBand = 5.0
	qualityTieBand   = 0.1
)

// Result is the outcome of processing one batch.
type Result struct {
	OriginalCount     int                   `json:"original_count"`
	FilteredCount     int                   `json:"filtered_count"`
	DuplicatesRemoved int                   `json:"duplicates_removed"`
	Articles          []types.ScoredArticle `json:"articles"`
	Rejected          []types.ScoredArticle `json:"rejected,omitempty"`
	ProcessingTime    time.Duration         `json:"processing_time"`
}

// Processor scores and filters articles.
type Processor struct {
	now func() time.Time
}

// New creates a processor using the wall clock.
func New() *Processor {
	return &Processor{now: time.Now}
}

// NewWithClock creates a processor with a fixed notion of "now".
func NewWithClock(now func() time.Time) *Processor {
	return &Processor{now: now}
}

// Process scores every article, marks duplicates, applies criteria, and sorts
// the survivors.
func (p *Processor) Process(articles []types.RawArticle, companyName string, criteria Criteria) *Result {
	start := time.Now()
	now := p.now()
	res := &Result{OriginalCount: len(articles), Articles: []types.ScoredArticle{}}

	scored := make([]types.ScoredArticle, len(articles))
	for i, a := range articles {
		scored[i] = types.ScoredArticle{
			RawArticle: a,
			Relevance:  Relevance(a, companyName, now),
			Quality:    Quality(a),
		}
	}

	tracker := newDuplicateTracker()
	for i := range scored {
		if dupOf, ok := tracker.check(scored[i].Title, scored[i].URL); ok {
			scored[i].IsDuplicate = true
			scored[i].DuplicateOf = dupOf
			continue
		}
		tracker.add(scored[i].Title, scored[i].URL)
	}

	excluded := lowerAll(criteria.ExcludedKeywords)
	required := lowerAll(criteria.RequiredKeywords)
	for _, s := range scored {
		if reason := failedFilter(s, criteria, excluded, required, now); reason != "" {
			s.FailedFilter = reason
			if reason == ReasonDuplicate {
				res.DuplicatesRemoved++
			}
			res.Rejected = append(res.Rejected, s)
			metrics.ArticlesProcessed.WithLabelValues(reason).Inc()
			continue
		}
		res.Articles = append(res.Articles, s)
		metrics.ArticlesProcessed.WithLabelValues("accepted").Inc()
	}

	SortScored(res.Articles)
	res.FilteredCount = len(res.Articles)
	res.ProcessingTime = time.Since(start)

	log.Printf("[PROCESSING] %q: %d in, %d kept, %d duplicates removed",
		companyName, res.OriginalCount, res.FilteredCount, res.DuplicatesRemoved)
	return res
}

func failedFilter(s types.ScoredArticle, c Criteria, excluded, required []string, now time.Time) string {
	text := strings.ToLower(s.Title + " " + s.Body)
	switch {
	case s.IsDuplicate && c.ExcludeDuplicates:
		return ReasonDuplicate
	case s.Relevance < c.MinRelevance*maxRelevance:
		return ReasonRelevance
	case s.Quality < c.MinQuality:
		return ReasonQuality
	case c.MaxAgeHours > 0 && s.AgeHours(now) > c.MaxAgeHours:
		return ReasonAge
	case containsAny(text, excluded):
		return ReasonExcludedKeyword
	case len(required) > 0 && !containsAny(text, required):
		return ReasonRequiredKeyword
	}
	return ""
}

// SortScored orders by relevance (differences within 5 points fall through to
// quality), then quality (within 0.1 falls through), then newest first.
func SortScored(articles []types.ScoredArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if math.Abs(a.Relevance-b.Relevance) > relevanceTieBand {
			return a.Relevance > b.Relevance
		}
		if math.Abs(a.Quality-b.Quality) > qualityTieBand {
			return a.Quality > b.Quality
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}

// Records converts accepted articles into persistence-ready NewsArticles with
// empty highlight lists.
func (r *Result) Records(companyID int64, fetchedAt time.Time) []types.NewsArticle {
	records := make([]types.NewsArticle, 0, len(r.Articles))
	for _, a := range r.Articles {
		records = append(records, types.NewsArticle{
			CompanyID:   companyID,
			Title:       a.Title,
			Body:        a.Body,
			Highlights:  []types.Highlight{},
			SourceURL:   a.URL,
			SourceName:  a.SourceName,
			PublishedAt: a.PublishedAt,
			FetchedAt:   fetchedAt,
		})
	}
	return records
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && containsWord(text, w) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(strings.TrimSpace(w)))
	}
	return out
}
