package tools

import (
	"context"

	"github.com/cloudwego/eino/schema"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/CortexFin/consts"
	"github.com/dyike/CortexFin/internal/dataflows"
	"github.com/dyike/CortexFin/internal/display"
	"github.com/dyike/CortexFin/internal/models"
)

var hundred = decimal.NewFromInt(100)

// FinancialTools holds the data source shared by every tool handler.
type FinancialTools struct {
	fetcher dataflows.Fetcher
}

// NewRegistry builds the six financial tools around one fetcher.
func NewRegistry(fetcher dataflows.Fetcher, logger *log.Logger) *Registry {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	ft := &FinancialTools{fetcher: fetcher}
	return newRegistry(logger,
		&Tool{
			info: &schema.ToolInfo{
				Name:        consts.ToolGetStockPrice,
				Desc:        "Gets the current stock price for a given ticker symbol",
				ParamsOneOf: tickerParams("ticker", "The stock ticker symbol, e.g. AAPL, MSFT, NVDA"),
			},
			handler: ft.getStockPrice,
		},
		&Tool{
			info: &schema.ToolInfo{
				Name: consts.ToolCalculateReturn,
				Desc: "Calculates the percentage return between two prices",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"start_price": {Type: schema.Number, Desc: "The starting price", Required: true},
					"end_price":   {Type: schema.Number, Desc: "The ending price", Required: true},
				}),
			},
			handler: ft.calculateReturn,
		},
		&Tool{
			info: &schema.ToolInfo{
				Name:        consts.ToolGetNewsSentiment,
				Desc:        "Gets a summary of recent news sentiment for a stock",
				ParamsOneOf: tickerParams("ticker", "The stock ticker symbol, e.g. AAPL, MSFT, NVDA"),
			},
			handler: ft.getNewsSentiment,
		},
		&Tool{
			info: &schema.ToolInfo{
				Name: consts.ToolCompareStocks,
				Desc: "Compares two stocks across price and sentiment",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"ticker1": {Type: schema.String, Desc: "First stock ticker", Required: true},
					"ticker2": {Type: schema.String, Desc: "Second stock ticker", Required: true},
				}),
			},
			handler: ft.compareStocks,
		},
		&Tool{
			info: &schema.ToolInfo{
				Name: consts.ToolGetFundamentals,
				Desc: "Gets fundamental data for a stock including P/E ratio, EPS, market cap, 52-week range, " +
					"analyst target price and dividend yield. Use this to assess valuation and whether a stock " +
					"may be overvalued or undervalued.",
				ParamsOneOf: tickerParams("ticker", "The stock ticker symbol, e.g. AAPL, MSFT, NVDA"),
			},
			handler: ft.getFundamentals,
		},
		&Tool{
			info: &schema.ToolInfo{
				Name:        consts.ToolGetEarnings,
				Desc:        "Gets upcoming and historical earnings data including dates and surprise percentages",
				ParamsOneOf: tickerParams("ticker", "The stock ticker symbol, e.g. AAPL, MSFT, NVDA"),
			},
			handler: ft.getEarnings,
		},
	)
}

func tickerParams(name, desc string) *schema.ParamsOneOf {
	return schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
		name: {Type: schema.String, Desc: desc, Required: true},
	})
}

func (ft *FinancialTools) getStockPrice(ctx context.Context, args Arguments) (string, error) {
	ticker, err := args.Ticker("ticker")
	if err != nil {
		return "", err
	}
	return ft.StockPrice(ctx, ticker)
}

// StockPrice expects a normalized ticker.
func (ft *FinancialTools) StockPrice(ctx context.Context, ticker string) (string, error) {
	doc, err := ft.fetcher.Fetch(ctx, dataflows.QueryQuote, ticker)
	if err != nil {
		return "", err
	}
	q, err := dataflows.ExtractQuote(ticker, doc)
	if err != nil {
		return "", err
	}
	return display.FormatQuote(q), nil
}

func (ft *FinancialTools) calculateReturn(_ context.Context, args Arguments) (string, error) {
	start, err := args.Decimal("start_price")
	if err != nil {
		return "", err
	}
	end, err := args.Decimal("end_price")
	if err != nil {
		return "", err
	}
	return CalculateReturn(start, end)
}

// CalculateReturn computes (end-start)/start*100.
func CalculateReturn(start, end decimal.Decimal) (string, error) {
	if start.IsZero() {
		return "", models.InvalidRequestf("start_price must not be zero")
	}
	pct := end.Sub(start).Div(start).Mul(hundred)
	return display.FormatReturn(pct), nil
}

func (ft *FinancialTools) getNewsSentiment(ctx context.Context, args Arguments) (string, error) {
	ticker, err := args.Ticker("ticker")
	if err != nil {
		return "", err
	}
	return ft.NewsSentiment(ctx, ticker)
}

func (ft *FinancialTools) NewsSentiment(ctx context.Context, ticker string) (string, error) {
	doc, err := ft.fetcher.Fetch(ctx, dataflows.QueryNewsSentiment, ticker)
	if err != nil {
		return "", err
	}
	n, err := dataflows.ExtractNewsSentiment(ticker, doc)
	if err != nil {
		return "", err
	}
	return display.FormatNewsSentiment(n), nil
}

func (ft *FinancialTools) compareStocks(ctx context.Context, args Arguments) (string, error) {
	ticker1, err := args.Ticker("ticker1")
	if err != nil {
		return "", err
	}
	ticker2, err := args.Ticker("ticker2")
	if err != nil {
		return "", err
	}

	// price1, sentiment1, price2, sentiment2
	lookups := []struct {
		ticker string
		fn     func(context.Context, string) (string, error)
	}{
		{ticker1, ft.StockPrice},
		{ticker1, ft.NewsSentiment},
		{ticker2, ft.StockPrice},
		{ticker2, ft.NewsSentiment},
	}
	parts := make([]string, len(lookups))

	var g errgroup.Group
	for i, l := range lookups {
		g.Go(func() error {
			out, err := l.fn(ctx, l.ticker)
			if err != nil {
				out = err.Error()
			}
			parts[i] = out
			return nil
		})
	}
	_ = g.Wait()

	return display.FormatComparison(parts[0], parts[1], parts[2], parts[3]), nil
}

func (ft *FinancialTools) getFundamentals(ctx context.Context, args Arguments) (string, error) {
	ticker, err := args.Ticker("ticker")
	if err != nil {
		return "", err
	}
	doc, err := ft.fetcher.Fetch(ctx, dataflows.QueryOverview, ticker)
	if err != nil {
		return "", err
	}
	f, err := dataflows.ExtractFundamentals(ticker, doc)
	if err != nil {
		return "", err
	}
	return display.FormatFundamentals(f), nil
}

func (ft *FinancialTools) getEarnings(ctx context.Context, args Arguments) (string, error) {
	ticker, err := args.Ticker("ticker")
	if err != nil {
		return "", err
	}
	doc, err := ft.fetcher.Fetch(ctx, dataflows.QueryEarnings, ticker)
	if err != nil {
		return "", err
	}
	e, err := dataflows.ExtractEarnings(ticker, doc)
	if err != nil {
		return "", err
	}
	return display.FormatEarnings(e), nil
}
