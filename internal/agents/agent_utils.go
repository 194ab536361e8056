package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/CortexFin/config"
)

// NewChatModel builds the completion engine for the configured provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.ToolCallingChatModel, error) {
	switch cfg.LLMProvider {
	case config.ProviderAzure, config.ProviderOpenAI:
		maxTokens := cfg.MaxTokens
		mc := &openai.ChatModelConfig{
			APIKey:  cfg.LLMAPIKey,
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
		}
		if maxTokens > 0 {
			mc.MaxTokens = &maxTokens
		}
		if cfg.LLMProvider == config.ProviderAzure {
			mc.ByAzure = true
			mc.APIVersion = cfg.AzureAPIVersion
		}
		cm, err := openai.NewChatModel(ctx, mc)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s chat model: %w", cfg.LLMProvider, err)
		}
		return cm, nil
	case config.ProviderDeepSeek:
		baseURL := cfg.LLMBaseURL
		if baseURL == "" {
			baseURL = "https://api.deepseek.com/"
		}
		cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: baseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek chat model: %w", err)
		}
		return cm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}
