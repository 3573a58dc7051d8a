// Package resilience provides a retrying HTTP client for upstream API calls.
// Transport-level failures (timeouts, connection errors) are retried with
// bounded exponential backoff behind a circuit breaker; responses that arrive
// with an error status are returned to the caller untouched.
package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the per-attempt timeout for individual HTTP calls.
	// Default: 30 seconds.
	Timeout time.Duration

	// MaxAttempts is the total attempt budget, including the first try.
	// Default: 3.
	MaxAttempts uint64

	// InitialInterval is the initial retry backoff interval. Default: 2s.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff interval. Default: 10s.
	MaxInterval time.Duration

	// CircuitBreaker overrides the breaker configuration. If nil, defaults
	// from DefaultCircuitBreakerConfig are used.
	CircuitBreaker *CircuitBreakerConfig
}

// Client is an HTTP client that retries transport failures with exponential
// backoff and guards the upstream with a circuit breaker.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 2 * time.Second
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 10 * time.Second
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not response
		config:         cfg,
	}
}

// Do executes an HTTP request. Only transport-level errors are retried; a
// response that made it back from the server is final regardless of status
// code, so application-level errors never burn retry budget.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes an HTTP request with the given context.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	// WithMaxRetries counts retries after the first try, so the budget is
	// the total attempt count minus one.
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.config.MaxAttempts-1), ctx)

	var result *http.Response

	operation := func() error {
		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			// Clone per attempt so the request is safe to reissue.
			return c.httpClient.Do(req.Clone(ctx))
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			// Transport failure: timeout, connection refused, reset.
			return err
		}

		result = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return result, nil
}

// newBackOff builds the wait policy: doubling intervals without jitter, so
// every wait stays inside the configured floor and ceiling.
func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0 // attempts are bounded by WithMaxRetries
	return bo
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}
