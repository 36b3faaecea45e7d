package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// maxResponseBytes bounds a decoded success body.
const maxResponseBytes = 8 << 20

// validate checks external DTOs tagged with `validate:"..."`.
var validate = validator.New(validator.WithRequiredStructEnabled())

// BaseAdapter holds what every downstream adapter needs: the instrumented
// client and the service name used in domain errors.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a base adapter for serviceName.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{
		client:      client,
		serviceName: serviceName,
	}
}

// ServiceName returns the name of the external service.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET and returns the body of a 2xx response; the caller
// closes it. Every failure is already a domain error.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation, path)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation, path)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// ValidateRecord runs struct validation on an external DTO and returns the
// first failure as a domain.ValidationError.
func ValidateRecord(record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]

		return domain.NewValidationError(jsonFieldName(fe), fieldMessage(fe))
	}

	return domain.NewValidationError("", err.Error())
}

// jsonFieldName lowercases the struct field; DTO fields mirror their JSON keys.
func jsonFieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// Translator converts one external DTO to a domain value.
// It returns an error when the DTO does not satisfy the domain's rules.
type Translator[External any, Domain any] func(ext *External) (Domain, error)

// TranslateValid applies translate to every item, keeping the successes in
// order. Items that fail are skipped; their errors are returned alongside
// so the caller can log them.
func TranslateValid[E any, D any](items []E, translate Translator[E, D]) ([]D, []error) {
	result := make([]D, 0, len(items))

	var rejected []error

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			rejected = append(rejected, fmt.Errorf("item %d: %w", i, err))
			continue
		}

		result = append(result, translated)
	}

	return result, rejected
}
