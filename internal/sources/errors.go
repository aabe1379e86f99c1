package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/company-pulse/internal/fanout"
	"github.com/jonathan/company-pulse/internal/fetch"
)

// Error codes for source failures.
const (
	CodeTimeout           = "TIMEOUT"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeHTTPStatus        = "HTTP_STATUS"
	CodeDecode            = "DECODE"
	CodeMisconfigured     = "MISCONFIGURED"
)

// Error is a structured connector failure.
type Error struct {
	Code    string `json:"code"`
	Source  string `json:"source"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("source %s [%s]: %s: %v", e.Source, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("source %s [%s]: %s", e.Source, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// AsError converts any connector failure into an *Error attributed to source.
func AsError(source string, err error) *Error {
	if err == nil {
		return nil
	}

	var srcErr *Error
	if errors.As(err, &srcErr) {
		return srcErr
	}

	if errors.Is(err, fanout.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeTimeout, Source: source, Message: "request timed out", Cause: err}
	}

	if errors.Is(err, fetch.ErrDecode) {
		return &Error{Code: CodeDecode, Source: source, Message: "malformed response", Cause: err}
	}

	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) && (fetchErr.StatusCode < 200 || fetchErr.StatusCode >= 300) && fetchErr.StatusCode != 0 {
		return &Error{
			Code:    CodeHTTPStatus,
			Source:  source,
			Message: fmt.Sprintf("unexpected HTTP status %d", fetchErr.StatusCode),
			Cause:   err,
		}
	}

	return &Error{Code: CodeSourceUnavailable, Source: source, Message: "source unavailable", Cause: err}
}
