//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/adapters/clients/acl"
	apphttp "github.com/jsamuelsen/quote-generator/internal/adapters/http"
	"github.com/jsamuelsen/quote-generator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-generator/internal/app"
	"github.com/jsamuelsen/quote-generator/internal/platform/config"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// upstreamQuote mirrors one record of the quotes listing.
type upstreamQuote struct {
	ID     int    `json:"id"`
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// quotesAPI is a stand-in for the external quotes listing. It serves the
// configured quotes, a raw body, or a failure status when one is set.
type quotesAPI struct {
	*httptest.Server

	mu     sync.Mutex
	quotes []upstreamQuote
	body   string
	status int
	delay  time.Duration

	calls atomic.Int32
}

func startQuotesAPI(quotes ...upstreamQuote) *quotesAPI {
	api := &quotesAPI{quotes: quotes}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))

	return api
}

func newQuotesAPI(t *testing.T, quotes ...upstreamQuote) *quotesAPI {
	t.Helper()

	api := startQuotesAPI(quotes...)
	t.Cleanup(api.Close)

	return api
}

func (a *quotesAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.calls.Add(1)

	a.mu.Lock()
	quotes, body, status, delay := a.quotes, a.body, a.status, a.delay
	a.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if r.URL.Path != config.DefaultQuotePath {
		http.NotFound(w, r)
		return
	}

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if body != "" {
		_, _ = io.WriteString(w, body)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"quotes": quotes,
		"total":  len(quotes),
		"skip":   0,
		"limit":  len(quotes),
	})
}

func (a *quotesAPI) fail(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
}

func (a *quotesAPI) setQuotes(quotes ...upstreamQuote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quotes = quotes
	a.status = 0
}

// respond makes every listing request answer 200 with body verbatim.
func (a *quotesAPI) respond(body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.body = body
	a.status = 0
}

func (a *quotesAPI) slow(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClientConfig returns a client config pointed at baseURL with fast
// retry and breaker timings.
func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "quote-service",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 1,
		},
		Logger: discardLogger(),
	}
}

func newQuoteSource(t *testing.T, cfg *clients.Config) *acl.QuoteSource {
	t.Helper()

	source, err := buildQuoteSource(cfg)
	require.NoError(t, err)

	return source
}

func buildQuoteSource(cfg *clients.Config) (*acl.QuoteSource, error) {
	client, err := clients.New(cfg)
	if err != nil {
		return nil, err
	}

	return acl.NewQuoteSource(acl.QuoteSourceConfig{
		Client: client,
		Logger: discardLogger(),
	}), nil
}

// stack is the whole service wired in-process against a fake upstream.
type stack struct {
	*httptest.Server

	registry *app.WidgetRegistry
}

// Close stops the HTTP server and unmounts every session.
func (s *stack) Close() {
	s.Server.Close()
	s.registry.CloseAll()
}

func newStack(t *testing.T, upstreamURL string, maxSessions int) *stack {
	t.Helper()

	st, err := buildStack(upstreamURL, maxSessions)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	return st
}

func buildStack(upstreamURL string, maxSessions int) (*stack, error) {
	source, err := buildQuoteSource(testClientConfig(upstreamURL))
	if err != nil {
		return nil, err
	}

	registry := app.NewWidgetRegistry(app.RegistryConfig{
		Widget: app.WidgetConfig{
			Source:        source,
			ReselectDelay: 20 * time.Millisecond,
			Metrics:       app.NewMetrics(prometheus.NewRegistry()),
			Logger:        discardLogger(),
		},
		MaxSessions: maxSessions,
	})

	health := ports.NewHealthRegistry()
	if err := health.Register(source); err != nil {
		return nil, err
	}

	if err := health.Register(registry); err != nil {
		return nil, err
	}

	widgetHandler, err := handlers.NewWidgetHandler(handlers.WidgetHandlerConfig{
		Registry:   registry,
		CookieName: config.DefaultWidgetCookieName,
		Title:      config.DefaultWidgetTitle,
		SessionTTL: time.Hour,
	})
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	apphttp.SetupRouter(engine, apphttp.RouterConfig{
		ServiceName:   "quote-generator",
		HealthHandler: handlers.NewHealthHandler(health, handlers.NewBuildInfo("test", "none", "now"), prometheus.NewRegistry()),
		WidgetHandler: widgetHandler,
		Timeout:       apphttp.DefaultRequestTimeout,
	})

	return &stack{Server: httptest.NewServer(engine), registry: registry}, nil
}

// newBrowser returns a client that keeps the session cookie and does not
// follow redirects.
func newBrowser() *http.Client {
	jar, _ := cookiejar.New(nil)

	return &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

var sampleQuotes = []upstreamQuote{
	{ID: 1, Quote: "Life isn’t about getting and having, it’s about giving and being.", Author: "Kevin Kruse"},
	{ID: 2, Quote: "Imagination is more important than knowledge.", Author: "Albert Einstein"},
	{ID: 3, Quote: "Be the change that you wish to see in the world.", Author: "Mahatma Gandhi"},
}
