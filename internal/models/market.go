package models

import "github.com/shopspring/decimal"

// Quote is the latest trade price of a ticker.
type Quote struct {
	Ticker        string          `json:"ticker"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent string          `json:"change_percent"` // as given by the provider, e.g. "1.2345%"
}

// Fundamentals is the company overview. Nil pointers and empty strings mean
// the provider did not supply a usable value.
type Fundamentals struct {
	Ticker        string           `json:"ticker"`
	Name          string           `json:"name"`
	Sector        string           `json:"sector"`
	MarketCap     *decimal.Decimal `json:"market_cap,omitempty"`
	PERatio       string           `json:"pe_ratio,omitempty"`
	EPS           string           `json:"eps,omitempty"`
	Week52Low     string           `json:"week52_low,omitempty"`
	Week52High    string           `json:"week52_high,omitempty"`
	DividendYield *decimal.Decimal `json:"dividend_yield,omitempty"`
	AnalystTarget string           `json:"analyst_target,omitempty"`
}

type BeatStatus string

const (
	Beat   BeatStatus = "Beat"
	Missed BeatStatus = "Missed"
	Met    BeatStatus = "Met"
)

// EarningsRecord is one reported quarter.
type EarningsRecord struct {
	ReportedDate    string           `json:"reported_date"`
	EstimatedEPS    string           `json:"estimated_eps"`
	ActualEPS       string           `json:"actual_eps"`
	SurprisePercent *decimal.Decimal `json:"surprise_percent,omitempty"`
}

// Status derives Beat/Missed/Met from the sign of the surprise. ok is false
// when the surprise is unknown.
func (r EarningsRecord) Status() (status BeatStatus, ok bool) {
	if r.SurprisePercent == nil {
		return "", false
	}
	switch r.SurprisePercent.Sign() {
	case 1:
		return Beat, true
	case -1:
		return Missed, true
	default:
		return Met, true
	}
}

// Earnings holds the most recent quarters, newest first.
type Earnings struct {
	Ticker   string           `json:"ticker"`
	Quarters []EarningsRecord `json:"quarters"`
}

type NewsItem struct {
	Title          string `json:"title"`
	SentimentLabel string `json:"sentiment_label"`
}

// NewsSentiment is the recent feed for a ticker. An empty Items slice is a
// valid "no news" result.
type NewsSentiment struct {
	Ticker string     `json:"ticker"`
	Items  []NewsItem `json:"items"`
}
