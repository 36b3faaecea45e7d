package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// Registry defaults.
const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultMaxSessions   = 10000
)

// ErrTooManySessions is returned by Create when the session cap is reached.
var ErrTooManySessions = fmt.Errorf("%w: session limit reached", domain.ErrUnavailable)

// errRegistryClosed is reported by Check after CloseAll.
var errRegistryClosed = errors.New("widget registry closed")

// RegistryConfig configures a WidgetRegistry.
type RegistryConfig struct {
	// Widget is the template for every widget the registry mounts.
	// Its Logger, when set, is also used by the registry.
	Widget WidgetConfig

	// SessionTTL is the idle time after which a session is evicted.
	SessionTTL time.Duration

	// SweepInterval is how often Run looks for idle sessions.
	SweepInterval time.Duration

	// MaxSessions caps live sessions.
	MaxSessions int
}

type session struct {
	widget   *Widget
	lastSeen time.Time
}

// WidgetRegistry owns the live widget sessions, keyed by session id.
type WidgetRegistry struct {
	cfg    RegistryConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// NewWidgetRegistry creates an empty registry.
// Panics if cfg.Widget.Source is nil.
func NewWidgetRegistry(cfg RegistryConfig) *WidgetRegistry {
	if cfg.Widget.Source == nil {
		panic("WidgetRegistry: Widget.Source is required")
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}

	if cfg.Widget.Images == nil {
		cfg.Widget.Images = domain.DefaultAuthorImages()
	}

	logger := cfg.Widget.Logger
	if logger == nil {
		logger = slog.Default()
		cfg.Widget.Logger = logger
	}

	return &WidgetRegistry{
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "app.WidgetRegistry")),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Create mounts a new widget and returns its session id.
func (r *WidgetRegistry) Create(ctx context.Context) (string, *Widget, error) {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return "", nil, domain.NewUnavailableError("widget-registry", "shutting down")
	}

	if len(r.sessions) >= r.cfg.MaxSessions {
		r.mu.Unlock()
		r.logger.WarnContext(ctx, "session limit reached", slog.Int("max_sessions", r.cfg.MaxSessions))

		return "", nil, ErrTooManySessions
	}

	id := uuid.NewString()

	wcfg := r.cfg.Widget
	wcfg.Logger = wcfg.Logger.With(slog.String("session_id", id))
	w := NewWidget(wcfg)

	r.sessions[id] = &session{widget: w, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	r.cfg.Widget.Metrics.sessions(n)
	w.Mount(ctx)

	return id, w, nil
}

// Get returns the widget for id and marks the session as seen.
func (r *WidgetRegistry) Get(id string) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}

	s.lastSeen = r.now()

	return s.widget, true
}

// Remove unmounts and forgets the session. It reports whether id existed.
func (r *WidgetRegistry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return false
	}

	s.widget.Unmount()
	r.cfg.Widget.Metrics.sessions(n)

	return true
}

// Len returns the number of live sessions.
func (r *WidgetRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Sweep unmounts sessions idle longer than the TTL and returns how many
// were evicted.
func (r *WidgetRegistry) Sweep() int {
	cutoff := r.now().Add(-r.cfg.SessionTTL)

	var expired []*Widget

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s.widget)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, w := range expired {
		w.Unmount()
	}

	if len(expired) > 0 {
		r.cfg.Widget.Metrics.sessions(n)
		r.logger.Debug("evicted idle sessions", slog.Int("count", len(expired)), slog.Int("remaining", n))
	}

	return len(expired)
}

// Run sweeps on every interval until ctx is done, then unmounts every
// session. It always returns nil.
func (r *WidgetRegistry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll unmounts every session. Later calls to Create fail.
func (r *WidgetRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*session)
	r.closed = true
	r.mu.Unlock()

	for _, s := range sessions {
		s.widget.Unmount()
	}

	r.cfg.Widget.Metrics.sessions(0)
	r.logger.Info("widget sessions closed", slog.Int("count", len(sessions)))
}

// Name implements ports.HealthChecker.
func (r *WidgetRegistry) Name() string {
	return "widget-sessions"
}

// Check implements ports.HealthChecker. The registry is unhealthy once
// closed.
func (r *WidgetRegistry) Check(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errRegistryClosed
	}

	return nil
}
