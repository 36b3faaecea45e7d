// Package app contains the application layer: the quote widget state
// machine, the selection engine, and the registry of live widget sessions.
// It depends on ports, never on concrete adapters.
package app

import (
	"math/rand/v2"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// IntN returns a uniformly distributed integer in [0, n).
// It must not be called with n <= 0.
type IntN func(n int) int

// DefaultIntN draws from the process-wide math/rand/v2 source.
func DefaultIntN(n int) int {
	return rand.IntN(n) //nolint:gosec // No need for crypto-grade randomness
}

// SelectRandom picks one quote uniformly at random and resolves its portrait.
// The second return value is false when quotes is empty; callers must then
// leave their state untouched.
func SelectRandom(quotes domain.QuoteCollection, images *domain.AuthorImageTable, intn IntN) (domain.DisplayedQuote, bool) {
	if quotes.IsEmpty() {
		return domain.DisplayedQuote{}, false
	}

	chosen := quotes[intn(quotes.Len())]

	return domain.DisplayedQuote{
		Content:  chosen.Content,
		Author:   chosen.Author,
		ImageURL: images.Resolve(chosen.Author),
	}, true
}
