package cli

import (
	"context"
	"os"

	"github.com/phuslu/log"

	"github.com/dyike/CortexFin/config"
	"github.com/dyike/CortexFin/internal/agents"
	"github.com/dyike/CortexFin/internal/dataflows"
	"github.com/dyike/CortexFin/internal/debug"
	"github.com/dyike/CortexFin/internal/logger"
	"github.com/dyike/CortexFin/internal/tools"
)

func newLogger(cfg *config.Config) *log.Logger {
	return logger.New(cfg.EffectiveLogLevel(), os.Stderr)
}

func newRegistry(cfg *config.Config, l *log.Logger) *tools.Registry {
	client := dataflows.NewAlphaVantageClientFromConfig(cfg, l)
	return tools.NewRegistry(client, l)
}

// newAgent wires the data client, tool registry and chat model. The eino
// debug server, when enabled, is started first.
func newAgent(ctx context.Context, cfg *config.Config, l *log.Logger) (*agents.Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := debug.NewEinoDebugger(cfg, l).Initialize(ctx); err != nil {
		return nil, err
	}

	cm, err := agents.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return agents.NewAgent(cm, newRegistry(cfg, l),
		agents.WithMaxToolRounds(cfg.MaxToolRounds),
		agents.WithLogger(l),
	)
}
