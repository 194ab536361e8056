package dataflows

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexFin/internal/models"
)

func mustDoc(t *testing.T, body string) RawDocument {
	t.Helper()
	var doc RawDocument
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	return doc
}

func TestExtractQuote(t *testing.T) {
	doc := mustDoc(t, `{"Global Quote": {"01. symbol": "AAPL", "05. price": "189.8450", "10. change percent": "1.2345%"}}`)

	q, err := ExtractQuote("AAPL", doc)
	require.NoError(t, err)
	assert.Equal(t, "189.845", q.Price.String())
	assert.Equal(t, "1.2345%", q.ChangePercent)
}

func TestExtractQuoteMissingChangePercent(t *testing.T) {
	q, err := ExtractQuote("AAPL", mustDoc(t, `{"Global Quote": {"05. price": 10}}`))
	require.NoError(t, err)
	assert.Equal(t, "N/A", q.ChangePercent)
}

func TestExtractQuoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		missing bool
	}{
		{name: "empty global quote", body: `{"Global Quote": {}}`, missing: true},
		{name: "no global quote", body: `{}`, missing: true},
		{name: "malformed price", body: `{"Global Quote": {"05. price": "abc"}}`},
		{name: "negative price", body: `{"Global Quote": {"05. price": "-1.00"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractQuote("ZZZZ", mustDoc(t, tt.body))
			require.Error(t, err)
			if tt.missing {
				assert.ErrorIs(t, err, models.ErrMissingData)
				assert.Equal(t, "No quote data found for ZZZZ", err.Error())
			} else {
				assert.ErrorIs(t, err, models.ErrDataUnavailable)
			}
		})
	}
}

func TestExtractFundamentals(t *testing.T) {
	doc := mustDoc(t, `{
		"Symbol": "IBM", "Name": "International Business Machines", "Sector": "TECHNOLOGY",
		"MarketCapitalization": "None", "PERatio": "22.5", "EPS": "-", "52WeekHigh": "199.18",
		"52WeekLow": "135.87", "DividendYield": "0.0335", "AnalystTargetPrice": null
	}`)

	f, err := ExtractFundamentals("IBM", doc)
	require.NoError(t, err)
	assert.Equal(t, "International Business Machines", f.Name)
	assert.Nil(t, f.MarketCap)
	assert.Equal(t, "22.5", f.PERatio)
	assert.Empty(t, f.EPS)
	assert.Empty(t, f.AnalystTarget)
	require.NotNil(t, f.DividendYield)
	assert.Equal(t, "0.0335", f.DividendYield.String())
}

func TestExtractFundamentalsWithoutSymbolIsMissing(t *testing.T) {
	_, err := ExtractFundamentals("IBM", mustDoc(t, `{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMissingData))
	assert.False(t, errors.Is(err, models.ErrDataUnavailable))
	assert.Equal(t, "No fundamental data found for IBM", err.Error())
}

func TestExtractEarningsKeepsFirstFourInProviderOrder(t *testing.T) {
	doc := mustDoc(t, `{
		"annualEarnings": [],
		"quarterlyEarnings": [
			{"reportedDate": "2024-10-30", "reportedEPS": "1.64", "estimatedEPS": "1.60", "surprisePercentage": "2.5"},
			{"reportedDate": "2024-08-01", "reportedEPS": "1.40", "estimatedEPS": "1.43", "surprisePercentage": "-2.0979"},
			{"reportedDate": "2024-05-02", "reportedEPS": "1.53", "estimatedEPS": "1.53", "surprisePercentage": "0"},
			{"reportedDate": "2024-02-01", "reportedEPS": "2.18", "estimatedEPS": "2.10", "surprisePercentage": "None"},
			{"reportedDate": "2023-11-02", "reportedEPS": "1.46", "estimatedEPS": "1.39", "surprisePercentage": "5.0"},
			{"reportedDate": "2023-08-03", "reportedEPS": "1.26", "estimatedEPS": "1.19", "surprisePercentage": "5.8"}
		]
	}`)

	e, err := ExtractEarnings("AAPL", doc)
	require.NoError(t, err)
	require.Len(t, e.Quarters, 4)
	assert.Equal(t, "2024-10-30", e.Quarters[0].ReportedDate)
	assert.Equal(t, "2024-02-01", e.Quarters[3].ReportedDate)
	assert.Equal(t, "1.40", e.Quarters[1].ActualEPS)
	assert.Nil(t, e.Quarters[3].SurprisePercent)

	status, ok := e.Quarters[1].Status()
	assert.True(t, ok)
	assert.Equal(t, models.Missed, status)
}

func TestExtractEarningsMissing(t *testing.T) {
	for _, body := range []string{`{}`, `{"annualEarnings": []}`, `{"annualEarnings": [], "quarterlyEarnings": []}`} {
		_, err := ExtractEarnings("AAPL", mustDoc(t, body))
		require.Error(t, err, body)
		assert.ErrorIs(t, err, models.ErrMissingData)
		assert.Equal(t, "No earnings data found for AAPL", err.Error())
	}
}

func TestExtractNewsSentimentPrefersTickerLabel(t *testing.T) {
	doc := mustDoc(t, `{"feed": [
		{"title": "Apple &amp; friends <b>rally</b>", "overall_sentiment_label": "Neutral",
		 "ticker_sentiment": [
			{"ticker": "MSFT", "ticker_sentiment_label": "Bearish"},
			{"ticker": "aapl", "ticker_sentiment_label": "Bullish"},
			{"ticker": "AAPL", "ticker_sentiment_label": "Bearish"}
		 ]},
		{"title": "Markets wrap", "overall_sentiment_label": "Somewhat-Bullish", "ticker_sentiment": []}
	]}`)

	n, err := ExtractNewsSentiment("AAPL", doc)
	require.NoError(t, err)
	require.Len(t, n.Items, 2)
	assert.Equal(t, models.NewsItem{Title: "Apple & friends rally", SentimentLabel: "Bullish"}, n.Items[0])
	assert.Equal(t, "Somewhat-Bullish", n.Items[1].SentimentLabel)
}

func TestExtractNewsSentimentCapsArticles(t *testing.T) {
	doc := mustDoc(t, `{"feed": [
		{"title": "1", "overall_sentiment_label": "Neutral"},
		{"title": "2", "overall_sentiment_label": "Neutral"},
		{"title": "3", "overall_sentiment_label": "Neutral"},
		{"title": "4", "overall_sentiment_label": "Neutral"},
		{"title": "5", "overall_sentiment_label": "Neutral"},
		{"title": "6", "overall_sentiment_label": "Neutral"}
	]}`)

	n, err := ExtractNewsSentiment("AAPL", doc)
	require.NoError(t, err)
	assert.Len(t, n.Items, 5)
}

func TestExtractNewsSentimentEmptyAndMissing(t *testing.T) {
	n, err := ExtractNewsSentiment("TSLA", mustDoc(t, `{"feed": []}`))
	require.NoError(t, err)
	assert.Empty(t, n.Items)

	_, err = ExtractNewsSentiment("TSLA", mustDoc(t, `{"items": "0"}`))
	assert.ErrorIs(t, err, models.ErrMissingData)
	assert.Equal(t, "No news sentiment data found for TSLA", err.Error())
}

func TestNormalizeAndValidateSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl "))
	assert.NoError(t, ValidateSymbol("brk.b"))
	assert.ErrorIs(t, ValidateSymbol("   "), models.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateSymbol("ABCDEFGHIJKL"), models.ErrInvalidRequest)
	assert.NoError(t, ValidateSymbol("BF-B"))
	assert.NoError(t, ValidateSymbol("shop.to"))
	assert.ErrorIs(t, ValidateSymbol("BRK B"), models.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateSymbol("AAPL;"), models.ErrInvalidRequest)
}
