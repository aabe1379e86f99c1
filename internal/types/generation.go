//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// GenerationAttempt records how one provider performed on one request.
type GenerationAttempt struct {
	Provider     string        `json:"provider"`
	Success      bool          `json:"success"`
	QualityScore float64       `json:"quality_score"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// HighlightRequest asks a provider to extract highlights from an article.
type HighlightRequest struct {
	CompanyName   string `json:"company_name" validate:"required,min=2,max=255"`
	Title         string `json:"title"`
	Content       string `json:"content" validate:"required,min=20"`
	MaxHighlights int    `json:"max_highlights,omitempty" validate:"omitempty,min=1,max=10"`
}

// HighlightResponse is a provider's highlight extraction output.
type HighlightResponse struct {
	Highlights []Highlight `json:"highlights"`
	Provider   string      `json:"provider"`
	Model      string      `json:"model,omitempty"`
}

// SocialRequest asks a provider to write posts for the given platforms.
type SocialRequest struct {
	CompanyName  string      `json:"company_name" validate:"required,min=2,max=255"`
	ArticleTitle string      `json:"article_title"`
	ArticleURL   string      `json:"article_url,omitempty" validate:"omitempty,url"`
	Highlights   []Highlight `json:"highlights" validate:"required,min=1"`
	Platforms    []Platform  `json:"platforms" validate:"required,min=1,dive,oneof=twitter linkedin facebook instagram"`
}

// SocialResponse is a provider's social content output.
type SocialResponse struct {
	Posts    []SocialPost `json:"posts"`
	Provider string       `json:"provider"`
	Model    string       `json:"model,omitempty"`
}

// Post returns the post for a platform, if present.
func (r *SocialResponse) Post(p Platform) (SocialPost, bool) {
	for _, post := range r.Posts {
		if post.Platform == p {
			return post, true
		}
	}
	return SocialPost{}, false
}
