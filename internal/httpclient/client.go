// Package httpclient is the outbound HTTP layer shared by the data sources:
// per-source rate limiting, retries with jittered exponential backoff for
// transient failures, request metrics and tracing spans.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/logging"
	"github.com/agbru/cpindex/internal/metrics"
	"github.com/agbru/cpindex/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// DefaultMaxBodySize caps a single response body. PBS reports are a few
// megabytes at most.
const DefaultMaxBodySize = 64 << 20

// Client performs requests for one data source.
type Client struct {
	source     string
	httpClient *http.Client
	logger     logging.Logger
	limiter    *rate.Limiter
	metrics    *metrics.Registry
	userAgent  string

	maxRetries   int
	retryBackoff time.Duration
	maxBodySize  int64
}

// Option configures a Client.
type Option func(*Client)

// New creates a client for source ("bls", "pbs"), which labels errors,
// metrics and spans.
func New(source string, opts ...Option) *Client {
	c := &Client{
		source: source,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:       logging.NewNopLogger(),
		maxRetries:   3,
		retryBackoff: 500 * time.Millisecond,
		maxBodySize:  DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit limits outbound requests to perSecond with the given burst.
// A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithMetrics records request and retry counts in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = reg
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize caps the size of a response body.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// Source returns the source label of the client.
func (c *Client) Source() string { return c.source }

// Get fetches url and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	return c.doWithRetry(ctx, http.MethodGet, url, nil, "")
}

// PostJSON posts payload encoded as JSON to url and returns the response body.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return c.doWithRetry(ctx, http.MethodPost, url, body, "application/json")
}

// doRequest performs a single attempt. Every failure is a *FetchError.
func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte, contentType string) (_ []byte, err error) {
	ctx, span := telemetry.Tracer().Start(ctx, "http "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cpindex.source", c.source),
			attribute.String("url.full", url),
		),
	)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if c.limiter != nil {
		if werr := c.limiter.Wait(ctx); werr != nil {
			cause := ctx.Err()
			if cause == nil {
				// The limiter refuses to wait past the deadline.
				cause = fmt.Errorf("%w: %v", context.DeadlineExceeded, werr)
			}
			return nil, &apperrors.FetchError{Source: c.source, URL: url, Transport: true, Cause: cause}
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &apperrors.FetchError{Source: c.source, URL: url, Cause: fmt.Errorf("create request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(c.source, 0)
		cause := err
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = ctxErr
		}
		return nil, &apperrors.FetchError{Source: c.source, URL: url, Transport: true, Cause: cause}
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(c.source, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &apperrors.FetchError{Source: c.source, URL: url, Transport: true, Cause: fmt.Errorf("read response: %w", err)}
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, &apperrors.FetchError{Source: c.source, URL: url, Cause: fmt.Errorf("response exceeds %d bytes", c.maxBodySize)}
	}

	if resp.StatusCode >= 400 {
		return nil, &apperrors.FetchError{Source: c.source, URL: url, StatusCode: resp.StatusCode}
	}

	return data, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, method, url string, payload []byte, contentType string) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			var wait time.Duration
			if backoff > 0 {
				// Jitter: backoff * (0.5 to 1.5)
				wait = backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			}
			c.logger.Debug("retrying request",
				logging.String("source", c.source),
				logging.Int("attempt", attempt),
				logging.Duration("backoff", wait),
				logging.String("url", url),
			)
			c.metrics.ObserveRetry(c.source)

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &apperrors.FetchError{Source: c.source, URL: url, Transport: true, Cause: ctx.Err()}
			case <-timer.C:
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, method, url, payload, contentType)
		if err == nil {
			return body, nil
		}

		lastErr = err

		var fetchErr *apperrors.FetchError
		if !errors.As(err, &fetchErr) || !fetchErr.Retryable() {
			return nil, err
		}
		c.logger.Warn("request failed",
			logging.String("source", c.source),
			logging.Int("attempt", attempt),
			logging.Err(err),
		)
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
