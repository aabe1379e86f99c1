// Package types provides type definitions for structured data used throughout the company-pulse system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"time"
)

// Company is the canonical identity resolved from free-text company names.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Aliases   []string  `json:"aliases"`
	Ticker    *string   `json:"ticker,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAlias reports whether alias is already recorded (case-insensitive).
func (c *Company) HasAlias(alias string) bool {
	for _, a := range c.Aliases {
		if strings.EqualFold(a, alias) {
			return true
		}
	}
	return false
}

// TickerValue returns the ticker symbol or an empty string.
func (c *Company) TickerValue() string {
	if c.Ticker == nil {
		return ""
	}
	return *c.Ticker
}

// CompanyMatch is a candidate company with a match confidence in [0,1].
type CompanyMatch struct {
	Company    Company `json:"company"`
	Confidence float64 `json:"confidence"`
	MatchType  string  `json:"match_type"` // exact, ticker, alias, fuzzy
}

// Match type values for CompanyMatch.
const (
	MatchTypeExact  = "exact"
	MatchTypeTicker = "ticker"
	MatchTypeAlias  = "alias"
	MatchTypeFuzzy  = "fuzzy"
)
