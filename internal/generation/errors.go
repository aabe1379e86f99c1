package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/company-pulse/internal/fanout"
)

// Error codes for provider failures.
const (
	CodeProviderError      = "PROVIDER_ERROR"
	CodeTimeout            = "TIMEOUT"
	CodeInvalidResponse    = "INVALID_RESPONSE"
	CodeNotConfigured      = "NOT_CONFIGURED"
	CodeAllProvidersFailed = "ALL_PROVIDERS_FAILED"
)

// ProviderError is a structured generation failure attributed to one provider.
type ProviderError struct {
	Provider string `json:"provider"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Cause    error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s [%s]: %s: %v", e.Provider, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s [%s]: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// asProviderError attributes err to provider, keeping an existing code.
func asProviderError(provider string, err error) *ProviderError {
	if err == nil {
		return nil
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	if errors.Is(err, fanout.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Provider: provider, Code: CodeTimeout, Message: "request timed out", Cause: err}
	}
	return &ProviderError{Provider: provider, Code: CodeProviderError, Message: "generation failed", Cause: err}
}
