//nolint:revive // types is a standard Go package name pattern
package types

// Category classifies a highlight.
type Category string

// Highlight categories.
const (
	CategoryFinancial   Category = "financial"
	CategoryOperational Category = "operational"
	CategoryStrategic   Category = "strategic"
	CategoryMarket      Category = "market"
	CategoryGeneral     Category = "general"
)

// Highlight length and importance bounds.
const (
	HighlightMinLength     = 10
	HighlightMaxLength     = 500
	HighlightMinImportance = 1
	HighlightMaxImportance = 5
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFinancial, CategoryOperational, CategoryStrategic, CategoryMarket, CategoryGeneral:
		return true
	default:
		return false
	}
}

// Highlight is a key point extracted from an article.
type Highlight struct {
	Text       string   `json:"text"`
	Importance int      `json:"importance"`
	Category   Category `json:"category"`
}
