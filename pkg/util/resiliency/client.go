// Package resiliency wraps outbound HTTP calls with retries, a circuit
// breaker and W3C trace-context propagation.
package resiliency

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ErrCircuitOpen is returned without calling the server while the breaker is open.
var ErrCircuitOpen = errors.New("resiliency: circuit breaker open")

// EnhancedClient wraps http.Client with resilience patterns:
// - Exponential Backoff & Jitter
// - Circuit Breaking
// - Trace context injection
type EnhancedClient struct {
	client      *http.Client
	maxRetries  int
	baseBackoff time.Duration
	breaker     *CircuitBreaker
	logger      *slog.Logger
}

// Option configures an EnhancedClient.
type Option func(*EnhancedClient)

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *EnhancedClient) { c.client = hc }
}

// WithTimeout sets the per-attempt timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *EnhancedClient) { c.client.Timeout = d }
}

// WithRetries sets the number of retries after the first attempt.
func WithRetries(n int) Option {
	return func(c *EnhancedClient) { c.maxRetries = n }
}

// WithBackoff sets the base delay doubled on every retry.
func WithBackoff(d time.Duration) Option {
	return func(c *EnhancedClient) { c.baseBackoff = d }
}

// WithBreaker replaces the circuit breaker.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(c *EnhancedClient) { c.breaker = cb }
}

func NewEnhancedClient(opts ...Option) *EnhancedClient {
	c := &EnhancedClient{
		client:      &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		baseBackoff: 100 * time.Millisecond,
		breaker:     NewCircuitBreaker("default", 5, 10*time.Second),
		logger:      slog.Default().With("component", "resiliency"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breaker exposes the circuit breaker for health reporting.
func (c *EnhancedClient) Breaker() *CircuitBreaker { return c.breaker }

// Do executes an HTTP request with resiliency patterns. Requests must be
// replayable: either bodiless or carrying GetBody.
//
// Any response below 500 other than 429 is returned to the caller as is.
// Server errors and 429 are retried; the last one is returned with a nil
// error so callers can inspect it.
func (c *EnhancedClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// 1. Trace injection from the span in ctx, if any.
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	// 2. Circuit breaker check
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, c.breaker.name)
	}

	var resp *http.Response
	var err error

	// 3. Retry loop with exponential backoff + jitter
	for i := 0; i <= c.maxRetries; i++ {
		attempt, aerr := replay(req)
		if aerr != nil {
			return nil, aerr
		}
		resp, err = c.client.Do(attempt)

		if err == nil && !retryable(resp.StatusCode) {
			c.breaker.Success()
			return resp, nil
		}
		if i == c.maxRetries {
			break
		}
		if resp != nil {
			drain(resp)
		}

		c.logger.DebugContext(ctx, "retrying request",
			"url", req.URL.Redacted(),
			"attempt", i+1,
			"error", err,
		)
		if serr := sleep(ctx, c.backoff(i)); serr != nil {
			c.breaker.Failure()
			return nil, serr
		}
	}

	// 4. Record failure
	c.breaker.Failure()
	return resp, err
}

func (c *EnhancedClient) backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * c.baseBackoff
	if n, err := rand.Int(rand.Reader, big.NewInt(50)); err == nil {
		d += time.Duration(n.Int64()) * time.Millisecond
	}
	return d
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func replay(req *http.Request) (*http.Request, error) {
	attempt := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return attempt, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("resiliency: request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	attempt.Body = body
	return attempt, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// State is the circuit breaker state.
type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

// CircuitBreaker implements a simple state machine for failure detection.
type CircuitBreaker struct {
	mu           sync.Mutex
	name         string
	failureCount int
	threshold    int
	lastFailure  time.Time
	resetTimeout time.Duration
	state        State
	now          func() time.Time
}

func NewCircuitBreaker(name string, threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		threshold:    threshold,
		resetTimeout: timeout,
		state:        StateClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			return true
		}
		return false
	}
	return true
}

func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
}

func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailure = cb.now()
	if cb.state == StateHalfOpen || cb.failureCount >= cb.threshold {
		cb.state = StateOpen
	}
}

// State returns the current state without transitioning it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
