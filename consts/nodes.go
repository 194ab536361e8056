package consts

const (
	// 行情工具
	ToolGetStockPrice    = "get_stock_price"
	ToolCalculateReturn  = "calculate_return"
	ToolGetNewsSentiment = "get_news_sentiment"
	ToolCompareStocks    = "compare_stocks"

	// 基本面工具
	ToolGetFundamentals = "get_fundamentals"
	ToolGetEarnings     = "get_earnings"
)
