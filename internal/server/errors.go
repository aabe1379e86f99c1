// Package server provides the HTTP REST API for company news and social content.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/company-pulse/internal/companies"
	"github.com/jonathan/company-pulse/internal/db"
	"github.com/jonathan/company-pulse/internal/generation"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/sources"
)

// ErrValidation indicates a malformed request: a bad path value, query
// parameter or body.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		fieldErrs   validator.ValidationErrors
		nameErr     *companies.ValidationError
		notFound    *pipeline.NotFoundError
		providerErr *generation.ProviderError
		sourceErr   *sources.Error
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &fieldErrs), errors.As(err, &nameErr):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &providerErr):
		if providerErr.Code == generation.CodeNotConfigured {
			return http.StatusServiceUnavailable
		}
		if providerErr.Code == generation.CodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &sourceErr):
		if sourceErr.Code == sources.CodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// toErrorResponse builds the response body for err. Internal errors are not
// echoed to the client.
func toErrorResponse(err error, status int) ErrorResponse {
	if status == http.StatusInternalServerError {
		return ErrorResponse{Error: "internal server error"}
	}

	resp := ErrorResponse{Error: err.Error()}

	var (
		fieldErrs   validator.ValidationErrors
		nameErr     *companies.ValidationError
		providerErr *generation.ProviderError
		sourceErr   *sources.Error
	)
	switch {
	case errors.As(err, &fieldErrs):
		resp.Error = "invalid request"
		resp.Code = "VALIDATION_FAILED"
		for _, fe := range fieldErrs {
			resp.Details = append(resp.Details, fieldError(fe))
		}
	case errors.As(err, &nameErr):
		resp.Error = "invalid company name"
		resp.Code = "INVALID_COMPANY_NAME"
		resp.Details = nameErr.Reasons
	case errors.As(err, &providerErr):
		resp.Code = providerErr.Code
	case errors.As(err, &sourceErr):
		resp.Code = sourceErr.Code
	}
	return resp
}

// fieldError renders one validator failure using the JSON field path.
func fieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed %s", field, fe.Tag())
}

// writeError maps err to a status code and writes it as JSON.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.jsonResponse(w, status, toErrorResponse(err, status))
}
