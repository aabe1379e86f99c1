package quality

// Validator scores generation output. It holds no mutable state.
type Validator struct {
	HighlightThreshold float64
	SocialThreshold    float64
}

// NewValidator creates a validator with the default thresholds.
func NewValidator() *Validator {
	return &Validator{
		HighlightThreshold: DefaultThreshold,
		SocialThreshold:    DefaultThreshold,
	}
}

func (v *Validator) highlightThreshold() float64 {
	if v == nil || v.HighlightThreshold <= 0 {
		return DefaultThreshold
	}
	return v.HighlightThreshold
}

func (v *Validator) socialThreshold() float64 {
	if v == nil || v.SocialThreshold <= 0 {
		return DefaultThreshold
	}
	return v.SocialThreshold
}
