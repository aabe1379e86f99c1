// Package processing re-scores aggregated articles for relevance, quality,
// age, and duplication, then filters and ranks them.
package processing

import "fmt"

// Criteria controls which articles survive processing.
type Criteria struct {
	// MinRelevance is a fraction of the 0-100 relevance scale.
	MinRelevance      float64  `json:"min_relevance" yaml:"min_relevance"`
	MaxAgeHours       float64  `json:"max_age_hours" yaml:"max_age_hours"`
	MinQuality        float64  `json:"min_quality" yaml:"min_quality"`
	ExcludeDuplicates bool     `json:"exclude_duplicates" yaml:"exclude_duplicates"`
	ExcludedKeywords  []string `json:"excluded_keywords" yaml:"excluded_keywords"`
	// RequiredKeywords, when set, keeps only articles mentioning at least one of them.
	RequiredKeywords []string `json:"required_keywords,omitempty" yaml:"required_keywords"`
}

// DefaultCriteria returns the standard filter settings.
func DefaultCriteria() Criteria {
	return Criteria{
		MinRelevance:      0.3,
		MaxAgeHours:       168,
		MinQuality:        0.4,
		ExcludeDuplicates: true,
		ExcludedKeywords:  []string{"obituary", "death", "died", "funeral"},
	}
}

// Validate checks that thresholds are in range.
func (c Criteria) Validate() error {
	if c.MinRelevance < 0 || c.MinRelevance > 1 {
		return fmt.Errorf("min_relevance must be between 0 and 1, got %v", c.MinRelevance)
	}
	if c.MinQuality < 0 || c.MinQuality > 1 {
		return fmt.Errorf("min_quality must be between 0 and 1, got %v", c.MinQuality)
	}
	if c.MaxAgeHours < 0 {
		return fmt.Errorf("max_age_hours must not be negative, got %v", c.MaxAgeHours)
	}
	return nil
}

// Filter reasons recorded on rejected articles.
const (
	ReasonRelevance       = "relevance"
	ReasonQuality         = "quality"
	ReasonAge             = "age"
	ReasonDuplicate       = "duplicate"
	ReasonExcludedKeyword = "excluded_keyword"
	ReasonRequiredKeyword = "required_keyword"
)
