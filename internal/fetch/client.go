// Package fetch retrieves remote catalog resources over HTTP with a fixed
// retry delay.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/config"
	"github.com/cory-johannsen/pogodata/internal/observability"
)

// DefaultRetryDelay is used when the configured delay is not positive.
const DefaultRetryDelay = time.Minute

// maxBodyBytes bounds a single resource. The largest upstream dump is a few
// tens of megabytes.
const maxBodyBytes = 256 << 20

// ErrUnavailable is matched by every error Fetch returns after giving up.
var ErrUnavailable = errors.New("resource unavailable")

// UnavailableError reports a resource that could not be retrieved.
type UnavailableError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("fetching %s: gave up after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrUnavailable) hold.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// retryable reports whether a later attempt can succeed. Client errors other
// than timeouts and rate limits are final.
func (e *StatusError) retryable() bool {
	if e.Code == http.StatusRequestTimeout || e.Code == http.StatusTooManyRequests {
		return true
	}
	return e.Code < 400 || e.Code >= 500
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client fetches resources, retrying failed attempts after a fixed delay.
// It is safe for concurrent use.
type Client struct {
	http        *http.Client
	delay       time.Duration
	maxAttempts int
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// New creates a Client from the fetch policy.
//
// Postcondition: MaxAttempts 0 retries until the context ends.
func New(cfg config.FetchConfig, opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		delay:       cfg.RetryDelay,
		maxAttempts: cfg.MaxAttempts,
		logger:      zap.NewNop(),
	}
	if c.delay <= 0 {
		c.delay = DefaultRetryDelay
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the body of url.
//
// Postcondition: Returns the full body of a 2xx response, or an error
// matching ErrUnavailable once the attempt budget or ctx is exhausted.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var policy backoff.BackOff = backoff.NewConstantBackOff(c.delay)
	if c.maxAttempts > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(c.maxAttempts-1))
	}

	attempts := 0
	var body []byte
	op := func() error {
		attempts++
		b, err := c.get(ctx, url)
		c.metrics.RecordFetch(ctx, err)
		if err != nil {
			var status *StatusError
			if errors.As(err, &status) && !status.retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("fetch failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(policy, ctx), notify); err != nil {
		return nil, &UnavailableError{URL: url, Attempts: attempts, Err: err}
	}
	c.logger.Debug("fetched resource",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Int("attempts", attempts),
	)
	return body, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, backoff.Permanent(fmt.Errorf("body exceeds %d bytes", maxBodyBytes))
	}
	return body, nil
}
