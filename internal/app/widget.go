package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
	"github.com/jsamuelsen/quote-generator/internal/ports"
)

// DefaultReselectDelay is how long the loading indicator stays visible
// before a new quote is picked from the local collection.
const DefaultReselectDelay = 500 * time.Millisecond

// User-visible error messages.
const (
	MessageNoQuotes          = "No quotes found in the response"
	MessageFetchFailedPrefix = "Failed to fetch quotes: "
)

// WidgetConfig contains the dependencies of a Widget.
type WidgetConfig struct {
	// Source provides the quote collection. Required.
	Source ports.QuoteSource

	// Images resolves author portraits. Defaults to domain.DefaultAuthorImages().
	Images *domain.AuthorImageTable

	// ReselectDelay defaults to DefaultReselectDelay when not positive.
	ReselectDelay time.Duration

	// IntN is the random source. Defaults to DefaultIntN.
	IntN IntN

	// Metrics is optional.
	Metrics *Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Widget is one mounted quote generator. It starts in Loading, fetches the
// quote collection once on Mount, and afterwards only reselects locally.
//
// Transitions:
//   - Mount: Loading, error cleared, fetch started
//   - fetch ok: Ready with a random quote
//   - fetch failed or empty: Error (terminal for this widget)
//   - NewQuote: Loading for ReselectDelay, then reselect
//
// All methods are safe for concurrent use.
type Widget struct {
	source  ports.QuoteSource
	images  *domain.AuthorImageTable
	delay   time.Duration
	intn    IntN
	metrics *Metrics
	logger  *slog.Logger

	mu         sync.Mutex
	loading    bool
	errMsg     string
	quotes     domain.QuoteCollection
	displayed  domain.DisplayedQuote
	hasQuote   bool
	mounted    bool
	alive      bool
	cancel     context.CancelFunc
	timer      *time.Timer
	generation uint64

	settled chan struct{}
}

// NewWidget creates an unmounted widget.
// Panics if Source is nil.
func NewWidget(cfg WidgetConfig) *Widget {
	if cfg.Source == nil {
		panic("Widget: Source is required")
	}

	images := cfg.Images
	if images == nil {
		images = domain.DefaultAuthorImages()
	}

	delay := cfg.ReselectDelay
	if delay <= 0 {
		delay = DefaultReselectDelay
	}

	intn := cfg.IntN
	if intn == nil {
		intn = DefaultIntN
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Widget{
		source:  cfg.Source,
		images:  images,
		delay:   delay,
		intn:    intn,
		metrics: cfg.Metrics,
		logger:  logger.With(slog.String("component", "app.Widget")),
		loading: true,
		alive:   true,
		settled: make(chan struct{}),
	}
}

// Mount enters Loading and starts the one-time fetch in the background.
// The fetch outlives the caller's ctx but keeps its values; it is
// canceled by Unmount. Calling Mount more than once has no effect.
func (w *Widget) Mount(ctx context.Context) {
	w.mu.Lock()
	if w.mounted || !w.alive {
		w.mu.Unlock()
		return
	}

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	w.mounted = true
	w.loading = true
	w.errMsg = ""
	w.cancel = cancel
	w.mu.Unlock()

	w.metrics.mounted()
	w.logger.DebugContext(ctx, "widget mounted")

	go w.fetch(fetchCtx)
}

// Settled is closed once the initial fetch has finished, whatever its
// outcome. It never closes if Mount is not called.
func (w *Widget) Settled() <-chan struct{} {
	return w.settled
}

func (w *Widget) fetch(ctx context.Context) {
	defer close(w.settled)

	logger := logging.FromContext(ctx)
	logger.Log(ctx, logging.LevelTrace, "fetching quote collection")

	quotes, err := w.source.FetchQuotes(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.alive {
		w.logger.DebugContext(ctx, "discarding fetch result after teardown")
		return
	}

	defer func() { w.loading = false }()

	switch {
	case err != nil:
		w.errMsg = MessageFetchFailedPrefix + err.Error()
		w.metrics.fetched(fetchOutcomeError)
		w.logger.WarnContext(ctx, "quote fetch failed", slog.Any("error", err))

	case quotes.IsEmpty():
		w.errMsg = MessageNoQuotes
		w.metrics.fetched(fetchOutcomeEmpty)
		w.logger.WarnContext(ctx, "quote source returned no quotes")

	default:
		w.quotes = quotes
		w.metrics.fetched(fetchOutcomeSuccess)
		w.logger.InfoContext(ctx, "quote collection loaded", slog.Int("count", quotes.Len()))
		w.selectLocked()
	}
}

// NewQuote starts the "get another quote" action. It reports false, and
// changes nothing, while the widget is Loading or after Unmount.
func (w *Widget) NewQuote() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.alive || w.loading {
		w.metrics.ignored()
		return false
	}

	w.loading = true
	w.generation++
	gen := w.generation
	w.timer = time.AfterFunc(w.delay, func() { w.reselect(gen) })

	return true
}

func (w *Widget) reselect(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Torn down or superseded while the timer was pending.
	if !w.alive || gen != w.generation {
		return
	}

	w.selectLocked()
	w.loading = false
	w.timer = nil
}

// selectLocked replaces the displayed quote. Must be called with mu held.
func (w *Widget) selectLocked() {
	displayed, ok := SelectRandom(w.quotes, w.images, w.intn)
	if !ok {
		return
	}

	w.displayed = displayed
	w.hasQuote = true
	w.metrics.selected()
	w.logger.Log(context.Background(), logging.LevelTrace, "quote selected", slog.String("author", displayed.Author))
}

// Unmount tears the widget down. A pending fetch is canceled and a pending
// reselect timer is stopped; late callbacks leave the state untouched.
func (w *Widget) Unmount() {
	w.mu.Lock()
	if !w.alive {
		w.mu.Unlock()
		return
	}

	w.alive = false
	w.generation++

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	w.logger.Debug("widget unmounted")
}

// isAlive reports whether the widget has not been torn down.
func (w *Widget) isAlive() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.alive
}

// State returns a snapshot of the widget.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.stateLocked()
}

func (w *Widget) stateLocked() State {
	st := State{Error: w.errMsg}

	switch {
	case w.loading:
		st.Status = StatusLoading
	case w.errMsg != "":
		st.Status = StatusError
	default:
		st.Status = StatusReady
	}

	if w.hasQuote {
		quote := w.displayed
		st.Quote = &quote
	}

	return st
}
