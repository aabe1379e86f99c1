//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ResolveCompanyRequest asks for the canonical company behind a free-text name.
type ResolveCompanyRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	Ticker string `json:"ticker,omitempty" validate:"omitempty,max=10,alphanum"`
	Create bool   `json:"create,omitempty"`
}

// NewsQueryRequest asks for processed news about a company.
type NewsQueryRequest struct {
	Company          string   `json:"company" validate:"required,min=2,max=255"`
	MaxArticles      int      `json:"max_articles,omitempty" validate:"omitempty,min=1,max=100"`
	MinRelevance     *float64 `json:"min_relevance,omitempty" validate:"omitempty,min=0,max=1"`
	MinQuality       *float64 `json:"min_quality,omitempty" validate:"omitempty,min=0,max=1"`
	MaxAgeHours      int      `json:"max_age_hours,omitempty" validate:"omitempty,min=1"`
	RequiredKeywords []string `json:"required_keywords,omitempty"`
	SkipCache        bool     `json:"skip_cache,omitempty"`
}

// GenerateContentRequest asks for highlights and posts for a stored article.
type GenerateContentRequest struct {
	Platforms []Platform `json:"platforms" validate:"required,min=1,dive,oneof=twitter linkedin facebook instagram"`
}

// Validate validates the ResolveCompanyRequest using the validator.
func (r *ResolveCompanyRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the NewsQueryRequest using the validator.
func (r *NewsQueryRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the GenerateContentRequest using the validator.
func (r *GenerateContentRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the HighlightRequest using the validator.
func (r *HighlightRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SocialRequest using the validator.
func (r *SocialRequest) Validate() error {
	return validate.Struct(r)
}
