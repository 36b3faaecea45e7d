// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, so the application layer
// depends on abstractions rather than concrete clients.
//
// Port design principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs
//   - Errors are domain errors (ErrUnavailable, ErrValidation, ...)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// QuoteSource provides the full list of quotes a widget selects from.
type QuoteSource interface {
	// FetchQuotes performs one request to the quotes provider.
	// An empty collection with a nil error means the provider answered
	// but had no usable quotes. Implementations must honour ctx cancellation.
	FetchQuotes(ctx context.Context) (domain.QuoteCollection, error)
}
