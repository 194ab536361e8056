package dataflows

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/dyike/CortexFin/config"
	"github.com/dyike/CortexFin/consts"
	"github.com/dyike/CortexFin/internal/models"
)

const (
	DefaultAlphaVantageBaseURL = "https://www.alphavantage.co"
	defaultTimeout             = 10 * time.Second
)

// rejection envelopes the provider sends with HTTP 200
var rejectionKeys = []string{"Error Message", "Note", "Information"}

// AlphaVantageClient handles Alpha Vantage API operations. It is safe for
// concurrent use.
type AlphaVantageClient struct {
	client  *resty.Client
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *log.Logger
}

type ClientOption func(*AlphaVantageClient)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *AlphaVantageClient) {
		if baseURL != "" {
			c.client.SetBaseURL(baseURL)
		}
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *AlphaVantageClient) {
		if d > 0 {
			c.timeout = d
			c.client.SetTimeout(d)
		}
	}
}

// WithRatePerMinute paces requests client side. Zero or less disables pacing.
func WithRatePerMinute(n int) ClientOption {
	return func(c *AlphaVantageClient) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
}

func WithLogger(logger *log.Logger) ClientOption {
	return func(c *AlphaVantageClient) {
		if logger != nil {
			c.logger = logger
			c.client.SetLogger(restyLogger{logger})
		}
	}
}

// NewAlphaVantageClient creates a new Alpha Vantage client
func NewAlphaVantageClient(apiKey string, opts ...ClientOption) *AlphaVantageClient {
	client := resty.New()
	client.SetBaseURL(DefaultAlphaVantageBaseURL)
	client.SetTimeout(defaultTimeout)
	client.SetHeader("Accept", "application/json")

	c := &AlphaVantageClient{
		client:  client,
		apiKey:  apiKey,
		timeout: defaultTimeout,
		logger:  &log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewAlphaVantageClientFromConfig wires the client from application config.
func NewAlphaVantageClientFromConfig(cfg *config.Config, logger *log.Logger) *AlphaVantageClient {
	return NewAlphaVantageClient(cfg.AlphaVantageAPIKey,
		WithBaseURL(cfg.AlphaVantageBaseURL),
		WithTimeout(cfg.UpstreamTimeout),
		WithRatePerMinute(cfg.UpstreamRatePerMinute),
		WithLogger(logger),
	)
}

// Fetch performs one GET against the query endpoint and returns the decoded
// JSON object. Every failure is a *models.DataUnavailableError.
func (c *AlphaVantageClient) Fetch(ctx context.Context, kind QueryKind, ticker string) (RawDocument, error) {
	unavailable := func(reason string, err error) error {
		return &models.DataUnavailableError{Kind: kind.DataKind(), Ticker: ticker, Reason: reason, Err: err}
	}

	// pacing waits on the caller's context; the timeout bounds only the request
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, unavailable("rate limit wait", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := map[string]string{
		"function": string(kind),
		"apikey":   c.apiKey,
	}
	if kind == QueryNewsSentiment {
		params["tickers"] = ticker
		params["limit"] = strconv.Itoa(consts.MaxNewsItems)
	} else {
		params["symbol"] = ticker
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		c.logger.Warn().Str("function", string(kind)).Str("symbol", ticker).Err(err).Msg("alpha vantage request failed")
		return nil, unavailable("request failed", err)
	}

	c.logger.Debug().
		Str("function", string(kind)).
		Str("symbol", ticker).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("alpha vantage response")

	if !resp.IsSuccess() {
		return nil, unavailable(fmt.Sprintf("API returned status %d", resp.StatusCode()), nil)
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || body[0] != '{' {
		return nil, unavailable("response is not a JSON object", nil)
	}
	var doc RawDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, unavailable("failed to parse response", err)
	}

	for _, key := range rejectionKeys {
		if msg, ok := scalar(doc[key]); ok {
			c.logger.Warn().Str("function", string(kind)).Str("symbol", ticker).Str("notice", msg).Msg("alpha vantage rejected request")
			return nil, unavailable(msg, nil)
		}
	}
	return doc, nil
}

// restyLogger routes resty's internal messages through phuslu/log.
type restyLogger struct {
	l *log.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
