package companies

import (
	"fmt"
	"strings"
)

// ValidationError lists every reason a company name was rejected.
type ValidationError struct {
	Input   string
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid company name %q: %s", e.Input, strings.Join(e.Reasons, "; "))
}

// StoreError wraps a failure of the company store.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("company store %s failed: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}
