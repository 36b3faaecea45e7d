package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/dto"
)

// NoRoute answers unknown paths with the JSON error envelope.
func NoRoute(c *gin.Context) {
	dto.AbortWithCode(c, http.StatusNotFound, dto.ErrorCodeNotFound, "route "+c.Request.URL.Path+" not found")
}

// NoMethod answers a known path with an unsupported method.
func NoMethod(c *gin.Context) {
	dto.AbortWithCode(c, http.StatusMethodNotAllowed, dto.ErrorCodeMethod, "method "+c.Request.Method+" not allowed")
}
