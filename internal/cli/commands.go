package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyike/CortexFin/config"
	"github.com/dyike/CortexFin/consts"
	"github.com/dyike/CortexFin/internal/service"
)

const version = "v1.0.0"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	// Initialize configuration early
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "cortexfin",
		Short: "CortexFin - AI financial research assistant",
		Long: `CortexFin answers questions about stocks by letting a Large Language Model call
financial data tools: prices, returns, news sentiment, fundamentals and earnings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debugFlag, _ := cmd.Flags().GetBool("debug"); debugFlag {
				cfg.Debug = true
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.LogLevel = strings.ToLower(level)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return runChat(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newChatCmd(cfg))
	rootCmd.AddCommand(newAskCmd(cfg))
	rootCmd.AddCommand(newToolsCmd(cfg))
	rootCmd.AddCommand(newToolCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.ServerAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			l := newLogger(cfg)
			agent, err := newAgent(ctx, cfg, l)
			if err != nil {
				return err
			}
			return service.NewServer(agent, l).ListenAndServe(ctx, cfg.ServerAddr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from SERVER_ADDR)")
	return cmd
}

func newChatCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cfg)
		},
	}
}

func runChat(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent, err := newAgent(ctx, cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	return RunChatLoop(ctx, agent.NewSession(), os.Stdin, os.Stdout)
}

func newAskCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [QUESTION]",
		Short: "Ask a single question and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := newAgent(cmd.Context(), cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			answer, err := agent.NewSession().Ask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newToolsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools available to the agent",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			printTitle(out, "Available tools")
			for _, info := range newRegistry(cfg, newLogger(cfg)).Infos() {
				fmt.Fprintf(out, "%s\n  %s\n", toolNameStyle.Render(info.Name), info.Desc)
			}
		},
	}
}

func newToolCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tool [NAME] [ARGS...]",
		Short: "Run one tool directly",
		Long: `Run one tool directly, bypassing the language model.
Examples:
  cortexfin tool get_stock_price AAPL
  cortexfin tool calculate_return 100 110
  cortexfin tool compare_stocks AAPL MSFT`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(cfg.AlphaVantageAPIKey) == "" && args[0] != consts.ToolCalculateReturn {
				return fmt.Errorf("ALPHAVANTAGE_API_KEY is required")
			}
			argsJSON, err := toolArguments(args[0], args[1:], PromptForTicker)
			if err != nil {
				return err
			}
			out, err := newRegistry(cfg, newLogger(cfg)).Invoke(cmd.Context(), args[0], argsJSON)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// toolArguments maps positional command line values onto the tool's JSON
// arguments, prompting for missing tickers.
func toolArguments(name string, values []string, prompt func(string) (string, error)) (string, error) {
	arg := func(i int, label string) (string, error) {
		if i < len(values) {
			return values[i], nil
		}
		if prompt == nil {
			return "", fmt.Errorf("%s is required", label)
		}
		return prompt(fmt.Sprintf("Enter %s:", label))
	}

	args := map[string]string{}
	switch name {
	case consts.ToolCalculateReturn:
		if len(values) < 2 {
			return "", fmt.Errorf("usage: %s START_PRICE END_PRICE", name)
		}
		args["start_price"], args["end_price"] = values[0], values[1]
	case consts.ToolCompareStocks:
		for i, key := range []string{"ticker1", "ticker2"} {
			v, err := arg(i, fmt.Sprintf("ticker #%d", i+1))
			if err != nil {
				return "", err
			}
			args[key] = v
		}
	default:
		v, err := arg(0, "the stock ticker symbol")
		if err != nil {
			return "", err
		}
		args["ticker"] = v
	}

	b, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "CortexFin %s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "AI financial research assistant")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd, cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration is invalid:\n%w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), agentStyle.Render("Configuration is valid."))
			return nil
		},
	})

	return configCmd
}

// showConfig displays the current configuration with secrets masked
func showConfig(cmd *cobra.Command, cfg *config.Config) {
	m := cfg.Masked()
	out := cmd.OutOrStdout()

	printTitle(out, "CortexFin Configuration")
	printField(out, "Alpha Vantage Key", m.AlphaVantageAPIKey)
	printField(out, "Alpha Vantage URL", m.AlphaVantageBaseURL)
	printField(out, "Upstream Timeout", m.UpstreamTimeout)
	printField(out, "Upstream Rate/min", m.UpstreamRatePerMinute)
	fmt.Fprintln(out)
	printField(out, "LLM Provider", m.LLMProvider)
	printField(out, "LLM Model", m.LLMModel)
	printField(out, "LLM Base URL", m.LLMBaseURL)
	printField(out, "LLM API Key", m.LLMAPIKey)
	if m.LLMProvider == config.ProviderAzure {
		printField(out, "Azure API Version", m.AzureAPIVersion)
	}
	printField(out, "Max Tokens", m.MaxTokens)
	printField(out, "Max Tool Rounds", m.MaxToolRounds)
	fmt.Fprintln(out)
	printField(out, "Server Address", m.ServerAddr)
	printField(out, "Log Level", m.EffectiveLogLevel())
	printField(out, "Eino Debug", m.EinoDebugEnabled)
	if m.EinoDebugEnabled {
		printField(out, "Eino Debug Port", m.EinoDebugPort)
	}
}
