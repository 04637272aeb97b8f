package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ahrav/go-paddock/internal/ports"
)

// ErrCircuitOpen indicates that the circuit breaker rejected a cache call
// without reaching the backend.
var ErrCircuitOpen = errors.New("cache circuit breaker is open")

// Metric names recorded by the circuit breaker.
const (
	MetricCircuitState = "cache_circuit_state"
	MetricCircuitCalls = "cache_circuit_calls"
)

// Middleware decorates a CacheStore.
type Middleware func(ports.CacheStore) ports.CacheStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.CacheStore, mws ...Middleware) ports.CacheStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// retryStore retries calls that failed with a retryable CacheError.
type retryStore struct {
	next       ports.CacheStore
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware retries transport failures with exponential backoff and
// jitter. Misses and data errors are returned at once.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next ports.CacheStore) ports.CacheStore {
		return &retryStore{next: next, maxRetries: maxRetries, baseDelay: baseDelay, maxDelay: maxDelay}
	}
}

func (r *retryStore) do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var cerr *ports.CacheError
		if !errors.As(err, &cerr) || !cerr.IsRetryable() || ctx.Err() != nil || attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}
	return lastErr
}

// delay returns the backoff before retry attempt+1, within ±25% jitter and
// capped at maxDelay.
func (r *retryStore) delay(attempt int) time.Duration {
	attempt = min(max(attempt, 0), 30)
	d := time.Duration(float64(r.baseDelay) * float64(uint64(1)<<uint(attempt)))
	jitter := time.Duration(rand.Float64() * float64(d) * 0.5)
	d = d + jitter - d/4
	return min(d, r.maxDelay)
}

func (r *retryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		ok    bool
	)
	err := r.do(ctx, func() error {
		var err error
		value, ok, err = r.next.Get(ctx, key)
		return err
	})
	return value, ok, err
}

func (r *retryStore) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return r.do(ctx, func() error { return r.next.Set(ctx, key, value, expiration) })
}

func (r *retryStore) Delete(ctx context.Context, key string) error {
	return r.do(ctx, func() error { return r.next.Delete(ctx, key) })
}

func (r *retryStore) Clear(ctx context.Context) error {
	return r.do(ctx, func() error { return r.next.Clear(ctx) })
}

// CircuitState is the state of a CircuitBreaker.
type CircuitState int

// Circuit breaker states.
const (
	// StateClosed passes every call through.
	StateClosed CircuitState = iota
	// StateOpen rejects calls until the cooldown has passed.
	StateOpen
	// StateHalfOpen lets one trial call through after the cooldown.
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return fmt.Sprintf("CircuitState(%d)", int(s))
	}
}

// CircuitBreaker stops calling an unreachable backend after maxFailures
// consecutive transport failures and tries it again after cooldown. Only
// retryable cache errors count as failures.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       CircuitState
	failures    int
	maxFailures int
	cooldown    time.Duration
	openedAt    time.Time
	probing     bool
	now         func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(maxFailures int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: max(maxFailures, 1),
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow reports whether a call may proceed, moving an expired open circuit
// to half-open. Half-open admits a single trial call at a time.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.state = StateHalfOpen
		cb.probing = true
		return true
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	var cerr *ports.CacheError
	failed := errors.As(err, &cerr) && cerr.IsRetryable()
	if cb.state == StateHalfOpen {
		cb.probing = false
	}
	if !failed {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = cb.now()
	}
}

// Call runs fn unless the circuit is open, in which case it returns a
// CacheError wrapping ErrCircuitOpen.
func (cb *CircuitBreaker) Call(key, operation string, fn func() error) error {
	if !cb.allow() {
		return ports.NewCacheError(key, operation, ErrCircuitOpen)
	}
	err := fn()
	cb.record(err)
	return err
}

type circuitStore struct {
	next    ports.CacheStore
	cb      *CircuitBreaker
	metrics ports.MetricsCollector
}

// CircuitBreakerMiddleware guards a store with cb. A nil metrics collector
// records nothing.
func CircuitBreakerMiddleware(cb *CircuitBreaker, metrics ports.MetricsCollector) Middleware {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return func(next ports.CacheStore) ports.CacheStore {
		return &circuitStore{next: next, cb: cb, metrics: metrics}
	}
}

func (c *circuitStore) call(key, operation string, fn func() error) error {
	err := c.cb.Call(key, operation, fn)

	result := "success"
	switch {
	case errors.Is(err, ErrCircuitOpen):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	c.metrics.RecordCounter(MetricCircuitCalls, 1, map[string]string{"result": result})
	c.metrics.RecordGauge(MetricCircuitState, float64(c.cb.State()), nil)
	return err
}

func (c *circuitStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		ok    bool
	)
	err := c.call(key, "get", func() error {
		var err error
		value, ok, err = c.next.Get(ctx, key)
		return err
	})
	return value, ok, err
}

func (c *circuitStore) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	return c.call(key, "set", func() error { return c.next.Set(ctx, key, value, expiration) })
}

func (c *circuitStore) Delete(ctx context.Context, key string) error {
	return c.call(key, "delete", func() error { return c.next.Delete(ctx, key) })
}

func (c *circuitStore) Clear(ctx context.Context) error {
	return c.call("*", "clear", func() error { return c.next.Clear(ctx) })
}
