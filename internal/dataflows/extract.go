package dataflows

import (
	"github.com/shopspring/decimal"

	"github.com/dyike/CortexFin/consts"
	"github.com/dyike/CortexFin/internal/models"
)

// ExtractQuote reads the "Global Quote" object of a GLOBAL_QUOTE response.
func ExtractQuote(ticker string, doc RawDocument) (*models.Quote, error) {
	gq, ok := objectMember(doc, "Global Quote")
	if !ok {
		return nil, &models.MissingDataError{Kind: models.KindQuote, Ticker: ticker}
	}
	raw, ok := scalar(gq["05. price"])
	if !ok {
		return nil, &models.MissingDataError{Kind: models.KindQuote, Ticker: ticker}
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return nil, &models.DataUnavailableError{Kind: models.KindQuote, Ticker: ticker, Reason: "malformed price " + raw}
	}

	change := knownField(gq, "10. change percent")
	if change == "" {
		change = "N/A"
	}
	return &models.Quote{Ticker: ticker, Price: price, ChangePercent: change}, nil
}

// ExtractFundamentals reads an OVERVIEW response.
func ExtractFundamentals(ticker string, doc RawDocument) (*models.Fundamentals, error) {
	if _, ok := doc["Symbol"]; !ok {
		return nil, &models.MissingDataError{Kind: models.KindFundamentals, Ticker: ticker}
	}
	return &models.Fundamentals{
		Ticker:        ticker,
		Name:          knownField(doc, "Name"),
		Sector:        knownField(doc, "Sector"),
		MarketCap:     decimalField(doc, "MarketCapitalization"),
		PERatio:       numericField(doc, "PERatio"),
		EPS:           numericField(doc, "EPS"),
		Week52Low:     numericField(doc, "52WeekLow"),
		Week52High:    numericField(doc, "52WeekHigh"),
		DividendYield: decimalField(doc, "DividendYield"),
		AnalystTarget: numericField(doc, "AnalystTargetPrice"),
	}, nil
}

// ExtractEarnings keeps the first quarters of "quarterlyEarnings" in the
// order the provider lists them.
func ExtractEarnings(ticker string, doc RawDocument) (*models.Earnings, error) {
	if _, ok := doc["annualEarnings"]; !ok {
		return nil, &models.MissingDataError{Kind: models.KindEarnings, Ticker: ticker}
	}
	quarters, ok := arrayMember(doc, "quarterlyEarnings")
	if !ok || len(quarters) == 0 {
		return nil, &models.MissingDataError{Kind: models.KindEarnings, Ticker: ticker}
	}
	if len(quarters) > consts.MaxEarningsQuarters {
		quarters = quarters[:consts.MaxEarningsQuarters]
	}

	out := &models.Earnings{Ticker: ticker, Quarters: make([]models.EarningsRecord, 0, len(quarters))}
	for _, q := range quarters {
		out.Quarters = append(out.Quarters, models.EarningsRecord{
			ReportedDate:    knownOr(q, "reportedDate", "N/A"),
			EstimatedEPS:    numericField(q, "estimatedEPS"),
			ActualEPS:       numericField(q, "reportedEPS"),
			SurprisePercent: decimalField(q, "surprisePercentage"),
		})
	}
	return out, nil
}

// ExtractNewsSentiment reads the "feed" of a NEWS_SENTIMENT response. The
// label is the ticker-specific one when the article lists the ticker, else
// the article's overall label.
func ExtractNewsSentiment(ticker string, doc RawDocument) (*models.NewsSentiment, error) {
	if _, ok := doc["feed"]; !ok {
		return nil, &models.MissingDataError{Kind: models.KindNews, Ticker: ticker}
	}
	feed, _ := arrayMember(doc, "feed")
	if len(feed) > consts.MaxNewsItems {
		feed = feed[:consts.MaxNewsItems]
	}

	out := &models.NewsSentiment{Ticker: ticker, Items: make([]models.NewsItem, 0, len(feed))}
	for _, article := range feed {
		label := knownOr(article, "overall_sentiment_label", "Neutral")
		entries, _ := arrayMember(article, "ticker_sentiment")
		for _, ts := range entries {
			if NormalizeSymbol(knownField(ts, "ticker")) == ticker {
				if l := knownField(ts, "ticker_sentiment_label"); l != "" {
					label = l
				}
				break
			}
		}
		out.Items = append(out.Items, models.NewsItem{
			Title:          plainText(knownField(article, "title")),
			SentimentLabel: label,
		})
	}
	return out, nil
}

func knownOr(doc RawDocument, key, fallback string) string {
	if s := knownField(doc, key); s != "" {
		return s
	}
	return fallback
}
