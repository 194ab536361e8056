package dataflows

import (
	"context"
	"encoding/json"

	"github.com/dyike/CortexFin/internal/models"
)

// QueryKind selects the provider function to call.
type QueryKind string

const (
	QueryQuote         QueryKind = "GLOBAL_QUOTE"
	QueryOverview      QueryKind = "OVERVIEW"
	QueryEarnings      QueryKind = "EARNINGS"
	QueryNewsSentiment QueryKind = "NEWS_SENTIMENT"
)

// DataKind maps the query to the data kind used in error messages.
func (k QueryKind) DataKind() models.DataKind {
	switch k {
	case QueryOverview:
		return models.KindFundamentals
	case QueryEarnings:
		return models.KindEarnings
	case QueryNewsSentiment:
		return models.KindNews
	default:
		return models.KindQuote
	}
}

// RawDocument is a decoded provider JSON object with its members left raw,
// so extractors can check for presence before committing to a type.
type RawDocument map[string]json.RawMessage

// Fetcher retrieves one raw provider document per call.
type Fetcher interface {
	Fetch(ctx context.Context, kind QueryKind, ticker string) (RawDocument, error)
}
