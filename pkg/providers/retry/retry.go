package retry

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// Config controls the retry loop for backend HTTP calls.
type Config struct {
	MaxRetries    int           `json:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
}

// DefaultConfig returns the default retry configuration
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Retrier retries transient backend failures with exponential backoff.
// Client errors (4xx other than 429) are returned immediately.
type Retrier struct {
	config Config
}

// NewRetrier creates a new retrier
func NewRetrier(config Config) *Retrier {
	return &Retrier{config: config}
}

// AttemptFunc performs one HTTP attempt
type AttemptFunc func() (*http.Response, error)

// Execute runs fn until it succeeds, exhausts the retry budget, or hits
// a non-retryable failure.
func (r *Retrier) Execute(ctx context.Context, fn AttemptFunc) (*http.Response, error) {
	var lastErr error
	var lastResp *http.Response

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := fn()
		if err == nil && resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		lastErr = err
		if resp != nil {
			if lastResp != nil {
				lastResp.Body.Close()
			}
			lastResp = resp
		}

		if !r.shouldRetry(err, resp) || attempt == r.config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}

	if lastErr != nil {
		return lastResp, lastErr
	}
	if lastResp != nil {
		return lastResp, nil
	}
	return nil, errors.New("no response received")
}

// shouldRetry classifies the failure
func (r *Retrier) shouldRetry(err error, resp *http.Response) bool {
	if err != nil {
		return isNetworkError(err)
	}

	if resp != nil {
		return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
	}

	return false
}

// delay computes the exponential backoff for an attempt
func (r *Retrier) delay(attempt int) time.Duration {
	factor := r.config.BackoffFactor
	if factor <= 1.0 {
		factor = 2.0
	}

	delay := time.Duration(float64(r.config.InitialDelay) * math.Pow(factor, float64(attempt)))
	if delay > r.config.MaxDelay {
		delay = r.config.MaxDelay
	}
	return delay
}

// isNetworkError reports whether err looks like a transient network
// failure worth a fast retry.
func isNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return isNetworkError(urlErr.Err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"network is unreachable",
		"no such host",
		"broken pipe",
		"eof",
	}
	for _, pattern := range patterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// HTTPClient wraps an http.Client with the retry loop. Request bodies
// must be rewindable (GetBody set), which is the case for requests built
// from byte readers.
type HTTPClient struct {
	client  *http.Client
	retrier *Retrier
}

// WrapHTTPClient wraps client with retry behavior
func (r *Retrier) WrapHTTPClient(client *http.Client) *HTTPClient {
	return &HTTPClient{client: client, retrier: r}
}

// Do executes the request with retries
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.retrier.Execute(req.Context(), func() (*http.Response, error) {
		attempt := req.Clone(req.Context())
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			attempt.Body = body
		}
		return c.client.Do(attempt)
	})
}
