package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/CortexFin/internal/dataflows"
)

// PromptForTicker prompts the user to enter a stock ticker symbol
func PromptForTicker(message string) (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: message,
		Help:    "A stock ticker symbol such as AAPL, MSFT or NVDA",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		return validateTicker(str)
	}))
	if err != nil {
		return "", err
	}
	return dataflows.NormalizeSymbol(ticker), nil
}

// validateTicker applies the same rule the tools enforce before any fetch.
func validateTicker(s string) error {
	return dataflows.ValidateSymbol(s)
}
