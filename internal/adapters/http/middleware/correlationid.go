package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

const (
	// HeaderCorrelationID carries an identifier shared by every request of
	// one browser interaction, across services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin.Context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID propagates X-Correlation-ID from upstream or starts a new one.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		ginKey:     ContextKeyCorrelationID,
		enrichers: []func(ctx context.Context, id string) context.Context{
			logging.WithCorrelationID,
			ContextWithCorrelationID,
		},
	})
}

// GetCorrelationID returns the correlation ID, or "" outside the middleware.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}
