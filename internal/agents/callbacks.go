package agents

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	ecmodel "github.com/cloudwego/eino/components/model"
	"github.com/phuslu/log"
)

var chatModelRunInfo = &callbacks.RunInfo{
	Name:      "financial_agent",
	Type:      "ChatModel",
	Component: components.ComponentOfChatModel,
}

// NewLoggerCallback logs completion rounds reported by eino chat models,
// including token usage when the provider returns it.
func NewLoggerCallback(logger *log.Logger) callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			in := ecmodel.ConvCallbackInput(input)
			if in == nil {
				return ctx
			}
			logger.Debug().Str("component", info.Name).Int("messages", len(in.Messages)).Msg("completion started")
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			out := ecmodel.ConvCallbackOutput(output)
			if out == nil || out.Message == nil {
				return ctx
			}
			e := logger.Debug().Str("component", info.Name).Int("tool_calls", len(out.Message.ToolCalls))
			if out.TokenUsage != nil {
				e = e.Int("prompt_tokens", out.TokenUsage.PromptTokens).
					Int("completion_tokens", out.TokenUsage.CompletionTokens).
					Int("total_tokens", out.TokenUsage.TotalTokens)
			}
			e.Msg("completion finished")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			logger.Warn().Str("component", info.Name).Err(err).Msg("completion error")
			return ctx
		}).
		Build()
}
