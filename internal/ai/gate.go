package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// GateConfig holds the guard rails applied to every oracle call.
// Each call is a single attempt; there is no retry setting.
type GateConfig struct {
	Timeout       time.Duration // Per-call timeout (default: 2m, 0 = default)
	MaxConcurrent int           // Concurrent calls allowed (default: 1, 0 = unlimited)
	MinInterval   time.Duration // Minimum spacing between call starts (0 = no rate limit)

	// Circuit breaker settings
	CircuitBreakerEnabled bool          // Fail fast after repeated failures
	FailureThreshold      int           // Consecutive failures before opening (default: 3)
	SuccessThreshold      int           // Successes in half-open before closing (default: 1)
	OpenTimeout           time.Duration // How long the circuit stays open (default: 1m)
}

// DefaultGateConfig returns the default gate configuration
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Timeout:               2 * time.Minute,
		MaxConcurrent:         1,
		MinInterval:           time.Second,
		CircuitBreakerEnabled: true,
		FailureThreshold:      3,
		SuccessThreshold:      1,
		OpenTimeout:           time.Minute,
	}
}

// Validate checks if the configuration has valid values
func (c GateConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative (got %v)", c.Timeout)
	}
	if c.Timeout > 30*time.Minute {
		return fmt.Errorf("timeout too large (got %v, max 30m)", c.Timeout)
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max_concurrent cannot be negative (got %d)", c.MaxConcurrent)
	}
	if c.MinInterval < 0 {
		return fmt.Errorf("min_interval cannot be negative (got %v)", c.MinInterval)
	}
	if c.CircuitBreakerEnabled {
		if c.FailureThreshold <= 0 {
			return fmt.Errorf("failure_threshold must be positive (got %d)", c.FailureThreshold)
		}
		if c.SuccessThreshold <= 0 {
			return fmt.Errorf("success_threshold must be positive (got %d)", c.SuccessThreshold)
		}
		if c.OpenTimeout <= 0 {
			return fmt.Errorf("open_timeout must be positive (got %v)", c.OpenTimeout)
		}
	}
	return nil
}

// Gate decorates an Oracle with a timeout, a concurrency limit, a rate
// limit and a circuit breaker.
type Gate struct {
	next    Oracle
	timeout time.Duration
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

// Compile-time check that Gate implements Oracle
var _ Oracle = (*Gate)(nil)

// NewGate wraps next. A zero Timeout means the default.
func NewGate(next Oracle, cfg GateConfig) (*Gate, error) {
	if next == nil {
		return nil, fmt.Errorf("oracle cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gate config: %w", err)
	}

	g := &Gate{next: next, timeout: cfg.Timeout}
	if g.timeout == 0 {
		g.timeout = DefaultGateConfig().Timeout
	}
	if cfg.MaxConcurrent > 0 {
		g.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	if cfg.MinInterval > 0 {
		g.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	if cfg.CircuitBreakerEnabled {
		g.breaker = NewCircuitBreaker(cfg.FailureThreshold, cfg.SuccessThreshold, cfg.OpenTimeout)
	}
	return g, nil
}

// Name implements Oracle.
func (g *Gate) Name() string { return g.next.Name() }

// Breaker exposes the circuit breaker (nil when disabled).
func (g *Gate) Breaker() *CircuitBreaker { return g.breaker }

// Generate implements Oracle.
func (g *Gate) Generate(ctx context.Context, req Request) (string, error) {
	if g.sem != nil {
		if err := g.sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("waiting for %s slot: %w", req.Operation, err)
		}
		defer g.sem.Release(1)
	}

	if g.breaker != nil {
		if err := g.breaker.Allow(); err != nil {
			state, failures, _ := g.breaker.Metrics()
			slog.Warn("oracle call blocked by circuit breaker",
				"operation", req.Operation, "state", state.String(), "failures", failures)
			return "", fmt.Errorf("%s: %w", req.Operation, err)
		}
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait for %s: %w", req.Operation, err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.next.Generate(callCtx, req)
	if err != nil {
		// A caller cancelling is not a backend failure.
		if g.breaker != nil && !errors.Is(ctx.Err(), context.Canceled) {
			g.breaker.RecordFailure()
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%s timed out after %v: %w", req.Operation, g.timeout, err)
		}
		return "", err
	}
	if g.breaker != nil {
		g.breaker.RecordSuccess()
	}
	return text, nil
}

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Calls pass through
	CircuitOpen                         // Calls fail fast
	CircuitHalfOpen                     // Probing: calls pass, one failure reopens
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrCircuitOpen is returned when the circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops calling a backend that keeps failing.
type CircuitBreaker struct {
	mu sync.Mutex

	state            CircuitState
	failureCount     int
	successCount     int
	openedAt         time.Time
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	now              func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(failureThreshold, successThreshold int, openTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		openTimeout:      openTimeout,
		now:              time.Now,
	}
}

// Allow returns ErrCircuitOpen while the circuit is open and its timeout
// has not elapsed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen {
		if cb.now().Sub(cb.openedAt) < cb.openTimeout {
			return ErrCircuitOpen
		}
		cb.transition(CircuitHalfOpen)
	}
	return nil
}

// RecordSuccess records a successful call
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount = 0
	case CircuitHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.transition(CircuitClosed)
		}
	}
}

// RecordFailure records a failed call
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.transition(CircuitOpen)
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Metrics returns the state and counters
func (cb *CircuitBreaker) Metrics() (state CircuitState, failures, successes int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state, cb.failureCount, cb.successCount
}

// transition must be called with the lock held
func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	cb.successCount = 0
	switch to {
	case CircuitOpen:
		cb.openedAt = cb.now()
	case CircuitClosed:
		cb.failureCount = 0
	}
	slog.Info("circuit breaker state transition",
		"from", from.String(), "to", to.String(), "failures", cb.failureCount)
}
