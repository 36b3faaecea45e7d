package clients

import (
	"sync"
	"time"

	"github.com/jsamuelsen/quote-generator/internal/platform/config"
)

// Breaker defaults applied when the corresponding config field is zero.
const (
	defaultBreakerMaxFailures   = 5
	defaultBreakerTimeout       = 30 * time.Second
	defaultBreakerHalfOpenLimit = 3
)

// CircuitState is the position of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets every request through.
	CircuitClosed CircuitState = iota

	// CircuitOpen rejects requests until the cool-down elapses.
	CircuitOpen

	// CircuitHalfOpen admits a limited number of probe requests.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker stops calling the quote service after repeated failures.
//
//   - closed to open after MaxFailures consecutive failures
//   - open to half-open once Timeout has passed since the last failure
//   - half-open to closed after HalfOpenLimit consecutive successes
//   - half-open to open on any failure
type CircuitBreaker struct {
	mu          sync.Mutex
	cfg         config.CircuitBreakerConfig
	state       CircuitState
	failures    int
	successes   int
	probes      int
	lastFailure time.Time

	onChange func(from, to CircuitState)
	now      func() time.Time
}

// NewCircuitBreaker creates a closed breaker. Zero config fields take defaults.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultBreakerMaxFailures
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBreakerTimeout
	}

	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = defaultBreakerHalfOpenLimit
	}

	return &CircuitBreaker{
		cfg: cfg,
		now: time.Now,
	}
}

// OnStateChange registers fn to run after every transition. fn is called
// without the breaker lock held, so it may call State.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to CircuitState)) {
	cb.mu.Lock()
	cb.onChange = fn
	cb.mu.Unlock()
}

// Allow reports whether a request may proceed. An open breaker whose
// cool-down has elapsed moves to half-open and admits the caller as a probe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	var (
		allowed bool
		notify  func()
	)

	switch cb.state {
	case CircuitClosed:
		allowed = true
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailure) >= cb.cfg.Timeout {
			notify = cb.transitionLocked(CircuitHalfOpen)
			cb.probes = 1
			allowed = true
		}
	case CircuitHalfOpen:
		if cb.probes < cb.cfg.HalfOpenLimit {
			cb.probes++
			allowed = true
		}
	}

	cb.mu.Unlock()
	runNotify(notify)

	return allowed
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()

	var notify func()

	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		cb.releaseProbeLocked()
		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			notify = cb.transitionLocked(CircuitClosed)
		}
	}

	cb.mu.Unlock()
	runNotify(notify)
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()

	var notify func()

	cb.lastFailure = cb.now()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			notify = cb.transitionLocked(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.releaseProbeLocked()
		notify = cb.transitionLocked(CircuitOpen)
	}

	cb.mu.Unlock()
	runNotify(notify)
}

// State returns the current position.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

func (cb *CircuitBreaker) releaseProbeLocked() {
	if cb.probes > 0 {
		cb.probes--
	}
}

// transitionLocked moves to next and returns the pending notification, if any.
func (cb *CircuitBreaker) transitionLocked(next CircuitState) func() {
	if cb.state == next {
		return nil
	}

	prev := cb.state
	cb.state = next
	cb.failures = 0
	cb.successes = 0

	if next != CircuitHalfOpen {
		cb.probes = 0
	}

	if fn := cb.onChange; fn != nil {
		return func() { fn(prev, next) }
	}

	return nil
}

func runNotify(fn func()) {
	if fn != nil {
		fn()
	}
}
