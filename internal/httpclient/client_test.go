package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/agbru/cpindex/internal/errors"
	"github.com/agbru/cpindex/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNew tests client construction with various options.
func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New("bls")
		assert.Equal(t, "bls", c.Source())
		assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 3, c.maxRetries)
		assert.Nil(t, c.limiter)
		assert.NotNil(t, c.logger)
	})

	t.Run("with options", func(t *testing.T) {
		hc := &http.Client{}
		c := New("pbs",
			WithHTTPClient(hc),
			WithTimeout(5*time.Second),
			WithRetries(5, time.Second),
			WithRateLimit(4, 2),
			WithUserAgent("test-agent"),
			WithMaxBodySize(1024),
		)
		assert.Same(t, hc, c.httpClient)
		assert.Equal(t, 5*time.Second, hc.Timeout)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, time.Second, c.retryBackoff)
		require.NotNil(t, c.limiter)
		assert.Equal(t, 2, c.limiter.Burst())
		assert.Equal(t, "test-agent", c.userAgent)
		assert.EqualValues(t, 1024, c.maxBodySize)
	})

	t.Run("zero rate disables limiting", func(t *testing.T) {
		c := New("pbs", WithRateLimit(4, 1), WithRateLimit(0, 1))
		assert.Nil(t, c.limiter)
	})
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "cpindex-test", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, "<html>listing</html>")
	}))
	defer server.Close()

	c := New("pbs", WithUserAgent("cpindex-test"))
	body, err := c.Get(context.Background(), server.URL+"/cpi?page=0")
	require.NoError(t, err)
	assert.Equal(t, "<html>listing</html>", string(body))
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "2023", payload["startyear"])
		_, _ = io.WriteString(w, `{"status":"REQUEST_SUCCEEDED"}`)
	}))
	defer server.Close()

	c := New("bls")
	body, err := c.PostJSON(context.Background(), server.URL, map[string]string{"startyear": "2023"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"REQUEST_SUCCEEDED"}`, string(body))
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = io.WriteString(w, "ok")
		}
	}))
	defer server.Close()

	reg := metrics.New()
	c := New("pbs", WithRetries(3, time.Millisecond), WithMetrics(reg))
	body, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, calls.Load())

	gathered, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	var retries float64
	for _, mf := range gathered {
		if mf.GetName() == "cpindex_http_retries_total" {
			retries = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(2), retries)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New("pbs", WithRetries(3, time.Millisecond))
	_, err := c.Get(context.Background(), server.URL+"/missing.pdf")
	require.Error(t, err)

	var fetchErr *apperrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.False(t, fetchErr.Retryable())
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, apperrors.ExitErrorNetwork, apperrors.ExitCodeFor(err))
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New("bls", WithRetries(2, time.Millisecond))
	_, err := c.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")

	var fetchErr *apperrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	assert.EqualValues(t, 3, calls.Load())
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	reg := metrics.New()
	c := New("pbs", WithRetries(0, 0), WithMetrics(reg))
	_, err := c.Get(context.Background(), url)

	var fetchErr *apperrors.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.True(t, fetchErr.Transport)
	assert.Zero(t, fetchErr.StatusCode)
	count, err := testutil.GatherAndCount(reg.Gatherer(), "cpindex_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New("bls", WithRetries(3, time.Millisecond))
	_, err := c.Get(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, apperrors.ExitErrorCanceled, apperrors.ExitCodeFor(err))
}

func TestClient_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0123456789")
	}))
	defer server.Close()

	c := New("pbs", WithMaxBodySize(4))
	_, err := c.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 4 bytes")
}
