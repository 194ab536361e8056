package debug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/phuslu/log"

	"github.com/dyike/CortexFin/config"
)

type EinoDebugger struct {
	config *config.Config
	logger *log.Logger
}

func NewEinoDebugger(cfg *config.Config, logger *log.Logger) *EinoDebugger {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &EinoDebugger{config: cfg, logger: logger}
}

// Initialize starts the eino visual debug server when enabled. It must run
// before the chat model is built so the model is traced.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.IsEnabled() {
		return nil
	}

	d.logger.Info().Int("port", d.config.EinoDebugPort).Msg("initializing eino debug plugin")
	if err := devops.Init(ctx, devops.WithDevServerPort(d.serverPort())); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	d.logger.Info().Str("url", d.GetDebugURL()).Msg("eino debug server ready")
	return nil
}

// serverPort is the configured port in the form devops expects.
func (d *EinoDebugger) serverPort() string {
	return strconv.Itoa(d.config.EinoDebugPort)
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.IsEnabled() {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.config.EinoDebugPort)
}
