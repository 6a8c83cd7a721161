package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/engramhq/engram/pkg/memory"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id"`
}

// Common error codes
const (
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeConsolidationFailed = "CONSOLIDATION_FAILED"
	ErrCodeNotImplemented      = "NOT_IMPLEMENTED"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
	ErrCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout      = "GATEWAY_TIMEOUT"
)

// HTTPStatusFromError maps lifecycle engine errors to HTTP status codes.
// Malformed request bodies are the handler's problem; everything crossing
// this function already parsed and failed in the domain, so validation maps
// to 422 rather than 400.
func HTTPStatusFromError(err error) int {
	var (
		notFound      *memory.NotFoundError
		conflict      *memory.ConflictError
		validation    *memory.ValidationError
		consolidation *memory.ConsolidationError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &consolidation):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, memory.ErrNoSearcher):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCodeFromStatus returns an error code for the given HTTP status.
func ErrorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusUnprocessableEntity:
		return ErrCodeValidationFailed
	case http.StatusNotImplemented:
		return ErrCodeNotImplemented
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeGatewayTimeout
	default:
		return ErrCodeInternalServer
	}
}

// HandleError maps a domain error to status and code and writes the response.
func HandleError(w http.ResponseWriter, err error, requestID string) {
	status := HTTPStatusFromError(err)
	code := ErrorCodeFromStatus(status)

	// Failed consolidations share 409 with version conflicts but carry
	// their own code so clients can tell a consumed item from a lost update.
	var consolidation *memory.ConsolidationError
	if errors.As(err, &consolidation) {
		code = ErrCodeConsolidationFailed
	}

	Error(w, status, code, err.Error(), requestID)
}
