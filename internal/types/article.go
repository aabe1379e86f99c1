//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// RawArticle is a candidate article returned by a source connector.
type RawArticle struct {
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	URL            string    `json:"url"`
	SourceName     string    `json:"source_name"`
	PublishedAt    time.Time `json:"published_at"`
	RelevanceScore float64   `json:"relevance_score"` // source-local, 0-100
}

// ScoredArticle is a RawArticle re-scored by the processor.
type ScoredArticle struct {
	RawArticle
	Relevance    float64 `json:"relevance"` // 0-100
	Quality      float64 `json:"quality"`   // 0-1
	IsDuplicate  bool    `json:"is_duplicate"`
	DuplicateOf  string  `json:"duplicate_of,omitempty"` // URL of the accepted article
	FailedFilter string  `json:"failed_filter,omitempty"`
}

// NewsArticle is the persisted form of an accepted article.
type NewsArticle struct {
	ID          int64       `json:"id"`
	CompanyID   int64       `json:"company_id"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Highlights  []Highlight `json:"highlights"`
	SourceURL   string      `json:"source_url"`
	SourceName  string      `json:"source_name"`
	PublishedAt time.Time   `json:"published_at"`
	FetchedAt   time.Time   `json:"fetched_at"`
}

// AgeHours returns the article age relative to now, never negative.
func (a *RawArticle) AgeHours(now time.Time) float64 {
	if a.PublishedAt.IsZero() {
		return 0
	}
	age := now.Sub(a.PublishedAt).Hours()
	if age < 0 {
		return 0
	}
	return age
}
