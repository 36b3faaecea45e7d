package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/mocks"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func newTestRegistry(t *testing.T, cfg RegistryConfig) *WidgetRegistry {
	t.Helper()

	source := mocks.NewMockQuoteSource(t)
	source.EXPECT().FetchQuotes(mock.Anything).Return(testQuotes(), nil).Maybe()

	cfg.Widget.Source = source
	cfg.Widget.ReselectDelay = testDelay
	cfg.Widget.Logger = discardLogger()

	r := NewWidgetRegistry(cfg)
	t.Cleanup(r.CloseAll)

	return r
}

func TestNewWidgetRegistry_PanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() {
		NewWidgetRegistry(RegistryConfig{})
	})
}

func TestNewWidgetRegistry_Defaults(t *testing.T) {
	r := newTestRegistry(t, RegistryConfig{})

	assert.Equal(t, DefaultSessionTTL, r.cfg.SessionTTL)
	assert.Equal(t, DefaultSweepInterval, r.cfg.SweepInterval)
	assert.Equal(t, DefaultMaxSessions, r.cfg.MaxSessions)
	assert.NotNil(t, r.cfg.Widget.Images)
	assert.Equal(t, "widget-sessions", r.Name())
}

func TestWidgetRegistry_CreateMountsWidget(t *testing.T) {
	r := newTestRegistry(t, RegistryConfig{})

	id, w, err := r.Create(context.Background())
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Len(t, id, 36)

	waitSettled(t, w)
	assert.Equal(t, StatusReady, w.State().Status)

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Same(t, w, got)
	assert.Equal(t, 1, r.Len())
}

func TestWidgetRegistry_GetUnknown(t *testing.T) {
	r := newTestRegistry(t, RegistryConfig{})

	w, ok := r.Get("missing")

	assert.False(t, ok)
	assert.Nil(t, w)
}

func TestWidgetRegistry_SessionLimit(t *testing.T) {
	r := newTestRegistry(t, RegistryConfig{MaxSessions: 1})

	_, _, err := r.Create(context.Background())
	require.NoError(t, err)

	_, _, err = r.Create(context.Background())
	require.ErrorIs(t, err, ErrTooManySessions)
	assert.True(t, domain.IsUnavailable(err))
	assert.Equal(t, 1, r.Len())
}

func TestWidgetRegistry_RemoveUnmounts(t *testing.T) {
	r := newTestRegistry(t, RegistryConfig{})

	id, w, err := r.Create(context.Background())
	require.NoError(t, err)

	assert.True(t, r.Remove(id))
	assert.False(t, w.isAlive())
	assert.Zero(t, r.Len())
	assert.False(t, r.Remove(id))
}

func TestWidgetRegistry_SweepEvictsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := newTestRegistry(t, RegistryConfig{SessionTTL: time.Minute})
	r.now = clock.Now

	idleID, idle, err := r.Create(context.Background())
	require.NoError(t, err)

	clock.Advance(45 * time.Second)

	activeID, active, err := r.Create(context.Background())
	require.NoError(t, err)

	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.False(t, idle.isAlive())
	assert.True(t, active.isAlive())

	_, ok := r.Get(idleID)
	assert.False(t, ok)

	// Get refreshes last-seen.
	_, ok = r.Get(activeID)
	require.True(t, ok)
	clock.Advance(45 * time.Second)
	assert.Zero(t, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestWidgetRegistry_RunClosesOnCancel(t *testing.T) {
	r := newTestRegistry(t, RegistryConfig{SweepInterval: 10 * time.Millisecond})

	_, w, err := r.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Check(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- r.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return after cancellation")
	}

	assert.False(t, w.isAlive())
	assert.Zero(t, r.Len())
	require.Error(t, r.Check(context.Background()))

	_, _, err = r.Create(context.Background())
	assert.True(t, domain.IsUnavailable(err))
	assert.False(t, errors.Is(err, ErrTooManySessions))
}

func TestWidgetRegistry_SessionGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRegistry(t, RegistryConfig{Widget: WidgetConfig{Metrics: NewMetrics(reg)}})

	id, _, err := r.Create(context.Background())
	require.NoError(t, err)
	_, _, err = r.Create(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 2, gatherValue(t, reg, "quote_widget_active_sessions", nil), 0)

	r.Remove(id)
	assert.InDelta(t, 1, gatherValue(t, reg, "quote_widget_active_sessions", nil), 0)
}
