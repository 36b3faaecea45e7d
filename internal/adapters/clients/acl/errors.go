package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// maxErrorBodyBytes bounds how much of an error body is parsed.
const maxErrorBodyBytes = 64 << 10

// ErrorResponse is an error body from a downstream service. Both the nested
// ({"error":{"code","message"}}) and flat ({"code","message"}) shapes are
// accepted; dummyjson uses the flat one with only a message.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested form of an error body.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetCode returns the nested code, falling back to the flat one.
func (e *ErrorResponse) GetCode() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

// GetMessage returns the nested message, falling back to the flat one.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// External error codes with a fixed domain meaning.
const (
	ExternalCodeNotFound     = "NOT_FOUND"
	ExternalCodeConflict     = "CONFLICT"
	ExternalCodeValidation   = "VALIDATION_ERROR"
	ExternalCodeForbidden    = "FORBIDDEN"
	ExternalCodeUnauthorized = "UNAUTHORIZED"
)

// ParseErrorResponse decodes an error body.
// Returns nil if the body is empty, not JSON, or carries neither code nor message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBodyBytes)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetCode() == "" && errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError turns a failed downstream call into a domain error.
//
//   - resp is nil when clientErr is set (nothing was received)
//   - operation names the call for messages, e.g. "list quotes"
//   - resource identifies what was requested, used for NotFoundError
//
// It returns nil for a 2xx response.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation, resource string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	if errResp != nil && errResp.GetCode() != "" {
		if err := MapExternalCode(errResp.GetCode(), errResp.GetMessage(), serviceName, operation, resource); err != nil {
			return err
		}
	}

	return mapStatusCode(resp.StatusCode, errResp, serviceName, operation, resource)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("circuit breaker open during %s", operation))

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, errors.Unwrap(err)))

	default:
		return domain.NewUnavailableError(serviceName,
			fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation, resource string) error {
	message := defaultMessageForStatus(status, operation)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch status {
	case http.StatusNotFound:
		return domain.NewNotFoundError(serviceName, resource)

	case http.StatusConflict:
		return domain.NewConflictError(serviceName, message)

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if errResp != nil {
			for field, msg := range errResp.Error.Details {
				return domain.NewValidationError(field, msg)
			}
		}

		return domain.NewValidationError("", message)

	case http.StatusForbidden:
		return domain.NewForbiddenError(operation, message)

	case http.StatusUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")

	case http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")

	default:
		// 5xx, unknown 4xx, and redirects the client did not follow.
		return domain.NewUnavailableError(serviceName, message)
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "resource conflict"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusForbidden:
		return "access denied"
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}

// MapExternalCode maps a known external error code to a domain error.
// Returns nil for unknown codes so the caller can fall back to the status.
func MapExternalCode(code, message, serviceName, operation, resource string) error {
	switch code {
	case ExternalCodeNotFound:
		return domain.NewNotFoundError(serviceName, resource)
	case ExternalCodeConflict:
		return domain.NewConflictError(serviceName, message)
	case ExternalCodeValidation:
		return domain.NewValidationError("", message)
	case ExternalCodeForbidden:
		return domain.NewForbiddenError(operation, message)
	case ExternalCodeUnauthorized:
		return domain.NewForbiddenError(operation, "authentication required")
	default:
		return nil
	}
}
