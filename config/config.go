package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderAzure    = "azure"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
)

type Config struct {
	// Market data provider
	AlphaVantageAPIKey    string        `json:"alphavantage_api_key"`
	AlphaVantageBaseURL   string        `json:"alphavantage_base_url"`
	UpstreamTimeout       time.Duration `json:"upstream_timeout"`
	UpstreamRatePerMinute int           `json:"upstream_rate_per_minute"`

	// Completion engine
	LLMProvider     string `json:"llm_provider"`
	LLMModel        string `json:"llm_model"`
	LLMBaseURL      string `json:"llm_base_url"`
	LLMAPIKey       string `json:"llm_api_key"`
	AzureAPIVersion string `json:"azure_api_version"`
	MaxTokens       int    `json:"max_tokens"`
	MaxToolRounds   int    `json:"max_tool_rounds"`

	ServerAddr string `json:"server_addr"`
	LogLevel   string `json:"log_level"`
	Debug      bool   `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		AlphaVantageBaseURL:   "https://www.alphavantage.co",
		UpstreamTimeout:       10 * time.Second,
		UpstreamRatePerMinute: 5,

		LLMProvider:     ProviderAzure,
		LLMModel:        "gpt-4o",
		AzureAPIVersion: "2024-06-01",
		MaxTokens:       4096,
		MaxToolRounds:   8,

		ServerAddr: ":8080",
		LogLevel:   "info",
		Debug:      false,

		// Eino Debug defaults
		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("ALPHAVANTAGE_API_KEY"); val != "" {
		c.AlphaVantageAPIKey = val
	}
	if val := os.Getenv("ALPHAVANTAGE_BASE_URL"); val != "" {
		c.AlphaVantageBaseURL = val
	}
	if val := os.Getenv("UPSTREAM_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.UpstreamTimeout = d
		}
	}
	if val := os.Getenv("UPSTREAM_RATE_PER_MINUTE"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.UpstreamRatePerMinute = v
		}
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	} else if c.LLMProvider == ProviderDeepSeek {
		c.LLMModel = "deepseek-chat"
	}
	if val := os.Getenv("LLM_BASE_URL"); val != "" {
		c.LLMBaseURL = val
	}
	if val := os.Getenv("AZURE_OPENAI_API_VERSION"); val != "" {
		c.AzureAPIVersion = val
	}
	c.LLMAPIKey = firstEnv("LLM_API_KEY", providerKeyEnv(c.LLMProvider))

	if val := os.Getenv("LLM_MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("MAX_TOOL_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxToolRounds = v
		}
	}

	if val := os.Getenv("SERVER_ADDR"); val != "" {
		c.ServerAddr = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("CORTEXFIN_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

func providerKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	default:
		return "AZURE_OPENAI_KEY"
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

// EffectiveLogLevel is LogLevel, forced to debug when Debug is set.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// Validate reports every setting that prevents the agent from talking to
// its collaborators.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AlphaVantageAPIKey) == "" {
		errs = append(errs, errors.New("alpha vantage api key is required (ALPHAVANTAGE_API_KEY)"))
	}
	if c.AlphaVantageBaseURL == "" {
		errs = append(errs, errors.New("alpha vantage base url is required"))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout))
	}
	if c.UpstreamRatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("upstream rate must not be negative, got %d", c.UpstreamRatePerMinute))
	}

	switch c.LLMProvider {
	case ProviderAzure:
		if c.LLMBaseURL == "" {
			errs = append(errs, errors.New("azure openai endpoint is required (LLM_BASE_URL)"))
		}
	case ProviderOpenAI, ProviderDeepSeek:
	default:
		errs = append(errs, fmt.Errorf("unsupported llm provider %q", c.LLMProvider))
	}
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		errs = append(errs, fmt.Errorf("%s api key is required (LLM_API_KEY)", c.LLMProvider))
	}
	if c.MaxToolRounds < 1 {
		errs = append(errs, fmt.Errorf("max tool rounds must be at least 1, got %d", c.MaxToolRounds))
	}
	return errors.Join(errs...)
}

// Masked returns a copy safe to print.
func (c *Config) Masked() Config {
	out := *c
	out.AlphaVantageAPIKey = mask(out.AlphaVantageAPIKey)
	out.LLMAPIKey = mask(out.LLMAPIKey)
	return out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
