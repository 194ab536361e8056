// Package display renders extracted facts as the plain text handed back to
// the model and printed by the console.
package display

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dyike/CortexFin/internal/models"
)

const notAvailable = "N/A"

var (
	billion = decimal.New(1, 9)
	hundred = decimal.NewFromInt(100)
)

// FormatQuote renders "{T} is trading at ${price} ({change} today)".
func FormatQuote(q *models.Quote) string {
	change := q.ChangePercent
	if change == "" {
		change = notAvailable
	}
	return fmt.Sprintf("%s is trading at $%s (%s today)", q.Ticker, q.Price.StringFixed(2), change)
}

// FormatReturn renders a percentage return. The label follows the rounded
// value, so anything that shows as 0.00 counts as a gain.
func FormatReturn(pct decimal.Decimal) string {
	rounded := pct.Round(2)
	label := "gain"
	if rounded.IsNegative() {
		label = "loss"
	}
	return fmt.Sprintf("Return: %s%% (%s)", rounded.StringFixed(2), label)
}

func FormatNewsSentiment(n *models.NewsSentiment) string {
	if len(n.Items) == 0 {
		return fmt.Sprintf("No recent news found for %s", n.Ticker)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s recent news sentiment:", n.Ticker)
	for _, item := range n.Items {
		fmt.Fprintf(&sb, "\n- %s [%s]", item.Title, item.SentimentLabel)
	}
	return sb.String()
}

// FormatComparison joins two price/sentiment pairs. Each part may be an
// error message.
func FormatComparison(price1, sentiment1, price2, sentiment2 string) string {
	return fmt.Sprintf("Comparison:\n%s\n%s\n\n%s\n%s", price1, sentiment1, price2, sentiment2)
}

func FormatFundamentals(f *models.Fundamentals) string {
	marketCap := notAvailable
	if f.MarketCap != nil {
		marketCap = "$" + f.MarketCap.Div(billion).StringFixed(1) + "B"
	}
	dividend := "None"
	if f.DividendYield != nil {
		dividend = f.DividendYield.Mul(hundred).StringFixed(2) + "%"
	}

	lines := []string{
		fmt.Sprintf("%s (%s) — %s", orNA(f.Name), f.Ticker, orNA(f.Sector)),
		"Market Cap: " + marketCap,
		"P/E Ratio: " + orNA(f.PERatio),
		"EPS: " + dollars(f.EPS),
		fmt.Sprintf("52-Week Range: %s — %s", dollars(f.Week52Low), dollars(f.Week52High)),
		"Dividend Yield: " + dividend,
		"Analyst Target Price: " + dollars(f.AnalystTarget),
	}
	return strings.Join(lines, "\n")
}

func FormatEarnings(e *models.Earnings) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Earnings History (Last 4 Quarters):", e.Ticker)
	for _, q := range e.Quarters {
		fmt.Fprintf(&sb, "\n- %s: Actual EPS %s vs Est %s — ", orNA(q.ReportedDate), dollars(q.ActualEPS), dollars(q.EstimatedEPS))
		status, ok := q.Status()
		if !ok {
			sb.WriteString("surprise N/A")
			continue
		}
		fmt.Fprintf(&sb, "%s by %s%%", status, q.SurprisePercent.Abs().StringFixed(2))
	}
	return sb.String()
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func dollars(s string) string {
	if s == "" {
		return notAvailable
	}
	return "$" + s
}
