package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrValidation, ErrForbidden, ErrUnavailable}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b, "sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestTypedErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		sentinel    error
		expectedMsg string
	}{
		{
			name:        "not found with id",
			err:         NewNotFoundError("widget session", "abc"),
			sentinel:    ErrNotFound,
			expectedMsg: `widget session with id "abc" not found`,
		},
		{
			name:        "not found without id",
			err:         NewNotFoundError("widget session", ""),
			sentinel:    ErrNotFound,
			expectedMsg: "widget session not found",
		},
		{
			name:        "conflict",
			err:         NewConflictError("widget", "already loading"),
			sentinel:    ErrConflict,
			expectedMsg: "widget conflict: already loading",
		},
		{
			name:        "validation with field",
			err:         NewValidationError("author", "is required"),
			sentinel:    ErrValidation,
			expectedMsg: "validation failed for author: is required",
		},
		{
			name:        "validation without field",
			err:         NewValidationError("", "bad payload"),
			sentinel:    ErrValidation,
			expectedMsg: "validation failed: bad payload",
		},
		{
			name:        "forbidden with reason",
			err:         NewForbiddenError("fetch quotes", "access denied"),
			sentinel:    ErrForbidden,
			expectedMsg: `operation "fetch quotes" forbidden: access denied`,
		},
		{
			name:        "forbidden without reason",
			err:         NewForbiddenError("fetch quotes", ""),
			sentinel:    ErrForbidden,
			expectedMsg: `operation "fetch quotes" forbidden`,
		},
		{
			name:        "unavailable with reason",
			err:         NewUnavailableError("quote-service", "HTTP 503"),
			sentinel:    ErrUnavailable,
			expectedMsg: `service "quote-service" unavailable: HTTP 503`,
		},
		{
			name:        "unavailable without reason",
			err:         NewUnavailableError("quote-service", ""),
			sentinel:    ErrUnavailable,
			expectedMsg: `service "quote-service" unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.ErrorIs(t, fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", tt.err)), tt.sentinel)
		})
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isFunc   func(error) bool
		expected bool
	}{
		{"IsNotFound typed", NewNotFoundError("x", "1"), IsNotFound, true},
		{"IsNotFound other", ErrConflict, IsNotFound, false},
		{"IsNotFound nil", nil, IsNotFound, false},
		{"IsConflict typed", NewConflictError("x", "y"), IsConflict, true},
		{"IsConflict wrapped", fmt.Errorf("w: %w", ErrConflict), IsConflict, true},
		{"IsValidation typed", NewValidationError("f", "m"), IsValidation, true},
		{"IsValidation other", ErrNotFound, IsValidation, false},
		{"IsForbidden typed", NewForbiddenError("op", ""), IsForbidden, true},
		{"IsUnavailable typed", NewUnavailableError("svc", ""), IsUnavailable, true},
		{"IsUnavailable nil", nil, IsUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.isFunc(tt.err))
		})
	}
}

func TestErrorsAs_ExtractsContext(t *testing.T) {
	err := fmt.Errorf("fetching quotes: %w", NewUnavailableError("quote-service", "circuit open"))

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "quote-service", unavailable.Service)
	assert.Equal(t, "circuit open", unavailable.Reason)
}
