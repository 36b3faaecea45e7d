package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-generator/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds page and API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig lists what SetupRouter wires.
type RouterConfig struct {
	// ServiceName names the otelgin server spans.
	ServiceName string

	HealthHandler *handlers.HealthHandler
	WidgetHandler *handlers.WidgetHandler

	// Timeout bounds page and API requests. Zero disables it.
	Timeout time.Duration
}

// SetupRouter installs the middleware chain and all routes.
//
// Middleware order: recovery, request ID, correlation ID, tracing and
// metrics, request logging. Health routes under /-/ carry no timeout.
//
// Routes:
//   - GET / and POST /quote: widget page
//   - /api/v1/widget: widget JSON API
//   - /-/live, /-/ready, /-/build, /-/metrics
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.ServiceName)...)
	engine.Use(middleware.Logging("/favicon.ico"))

	engine.NoRoute(NoRoute)
	engine.NoMethod(NoMethod)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.WidgetHandler == nil {
		return
	}

	pages := engine.Group("", middleware.Timeout(cfg.Timeout))
	cfg.WidgetHandler.RegisterPageRoutes(engine, pages)

	apiV1 := engine.Group("/api/v1", middleware.Timeout(cfg.Timeout))
	cfg.WidgetHandler.RegisterAPIRoutes(apiV1)
}
