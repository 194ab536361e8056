package dataflows

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexFin/internal/logger"
	"github.com/dyike/CortexFin/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *AlphaVantageClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithBaseURL(srv.URL), WithLogger(logger.Discard())}, opts...)
	return NewAlphaVantageClient("test-key", opts...)
}

func TestFetchSendsQueryParameters(t *testing.T) {
	var got map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		q := r.URL.Query()
		got = map[string]string{
			"function": q.Get("function"),
			"symbol":   q.Get("symbol"),
			"apikey":   q.Get("apikey"),
		}
		_, _ = w.Write([]byte(`{"Global Quote": {"05. price": "189.8400"}}`))
	})

	doc, err := client.Fetch(context.Background(), QueryQuote, "AAPL")
	require.NoError(t, err)
	assert.Contains(t, doc, "Global Quote")
	assert.Equal(t, map[string]string{"function": "GLOBAL_QUOTE", "symbol": "AAPL", "apikey": "test-key"}, got)
}

func TestFetchNewsUsesTickersAndLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "NEWS_SENTIMENT", q.Get("function"))
		assert.Equal(t, "MSFT", q.Get("tickers"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Empty(t, q.Get("symbol"))
		_, _ = w.Write([]byte(`{"feed": []}`))
	})

	_, err := client.Fetch(context.Background(), QueryNewsSentiment, "MSFT")
	require.NoError(t, err)
}

func TestFetchFailuresAreDataUnavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{}`, reason: "status 500"},
		{name: "not json", status: http.StatusOK, body: `<html>oops</html>`, reason: "not a JSON object"},
		{name: "json array", status: http.StatusOK, body: `[]`, reason: "not a JSON object"},
		{name: "rate limit note", status: http.StatusOK, body: `{"Note": "Thank you for using Alpha Vantage!"}`, reason: "Thank you"},
		{name: "information", status: http.StatusOK, body: `{"Information": "premium endpoint"}`, reason: "premium endpoint"},
		{name: "error message", status: http.StatusOK, body: `{"Error Message": "Invalid API call."}`, reason: "Invalid API call"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Fetch(context.Background(), QueryOverview, "IBM")
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrDataUnavailable))
			assert.False(t, errors.Is(err, models.ErrMissingData))
			assert.Contains(t, err.Error(), "Unable to retrieve fundamental data for IBM")
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestFetchTimeoutIsDataUnavailable(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := client.Fetch(context.Background(), QueryQuote, "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestFetchHonoursRateLimiterCancellation(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"feed": []}`))
	}, WithRatePerMinute(1))

	_, err := client.Fetch(context.Background(), QueryNewsSentiment, "AAPL")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Fetch(ctx, QueryNewsSentiment, "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPacesCallsLongerThanRequestTimeout(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"feed": []}`))
	}, WithTimeout(20*time.Millisecond))
	// token interval longer than the per-request timeout, like 5/min against 10s
	client.limiter = rate.NewLimiter(rate.Every(80*time.Millisecond), 1)

	_, err := client.Fetch(context.Background(), QueryNewsSentiment, "AAPL")
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Fetch(context.Background(), QueryNewsSentiment, "AAPL")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())
}
