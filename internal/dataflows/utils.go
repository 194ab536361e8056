package dataflows

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/dyike/CortexFin/internal/models"
)

// share classes and exchange suffixes: BRK.B, BF-B, SHOP.TO
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]+$`)

// ValidateSymbol checks if a stock symbol is valid format
func ValidateSymbol(symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if len(symbol) == 0 {
		return models.InvalidRequestf("ticker symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return models.InvalidRequestf("ticker symbol too long: %s", symbol)
	}
	if !symbolPattern.MatchString(symbol) {
		return models.InvalidRequestf("invalid ticker format: %q", symbol)
	}
	return nil
}

// NormalizeSymbol converts symbol to standard format
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

// scalar reads a provider scalar that may be a JSON string, number or null.
func scalar(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	if raw[0] == '{' || raw[0] == '[' {
		return "", false
	}
	return string(raw), true
}

// knownField returns the member as a string, or "" when it is absent or one
// of the provider's spellings of "no value".
func knownField(doc RawDocument, key string) string {
	s, ok := scalar(doc[key])
	if !ok {
		return ""
	}
	switch strings.ToLower(s) {
	case "", "none", "-", "n/a", "null":
		return ""
	}
	return s
}

func decimalField(doc RawDocument, key string) *decimal.Decimal {
	s := knownField(doc, key)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "%"))
	if err != nil {
		return nil
	}
	return &d
}

// numericField keeps the provider's spelling of a number but drops values
// that do not parse.
func numericField(doc RawDocument, key string) string {
	if decimalField(doc, key) == nil {
		return ""
	}
	return knownField(doc, key)
}

func objectMember(doc RawDocument, key string) (RawDocument, bool) {
	raw, ok := doc[key]
	if !ok {
		return nil, false
	}
	var obj RawDocument
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func arrayMember(doc RawDocument, key string) ([]RawDocument, bool) {
	raw, ok := doc[key]
	if !ok {
		return nil, false
	}
	var arr []RawDocument
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

// plainText strips markup and entities that occasionally leak into feed
// titles and collapses whitespace.
func plainText(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
