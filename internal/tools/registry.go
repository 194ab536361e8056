package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"github.com/dyike/CortexFin/internal/dataflows"
	"github.com/dyike/CortexFin/internal/models"
)

// Handler runs a tool against already decoded arguments.
type Handler func(ctx context.Context, args Arguments) (string, error)

// Tool is one registry entry exposed to the chat model as an invokable tool.
type Tool struct {
	info    *schema.ToolInfo
	handler Handler
	logger  *log.Logger
}

var _ tool.InvokableTool = (*Tool)(nil)

func (t *Tool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

// InvokableRun decodes the JSON arguments and returns the tool's plain-text
// result.
func (t *Tool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args, err := ParseArguments(argumentsInJSON)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := t.handler(ctx, args)
	elapsed := time.Since(start)
	switch {
	case err == nil:
		t.logger.Info().Str("tool", t.info.Name).Dur("elapsed", elapsed).Msg("tool invoked")
	case errors.Is(err, models.ErrMissingData):
		t.logger.Debug().Str("tool", t.info.Name).Dur("elapsed", elapsed).Err(err).Msg("tool found no data")
	default:
		t.logger.Warn().Str("tool", t.info.Name).Dur("elapsed", elapsed).Err(err).Msg("tool failed")
	}
	return out, err
}

// Registry is the fixed set of financial tools. Build it once with
// NewRegistry and share it between sessions.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
}

func newRegistry(logger *log.Logger, entries ...*Tool) *Registry {
	r := &Registry{byName: make(map[string]*Tool, len(entries))}
	for _, t := range entries {
		t.logger = logger
		r.tools = append(r.tools, t)
		r.byName[t.info.Name] = t
	}
	return r
}

// Infos returns the tool declarations in registration order.
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		infos = append(infos, t.info)
	}
	return infos
}

func (r *Registry) Tools() []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.info.Name)
	}
	return names
}

func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Invoke runs the named tool with a JSON arguments object.
func (r *Registry) Invoke(ctx context.Context, name, argumentsInJSON string) (string, error) {
	t, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", models.ErrToolNotFound, name)
	}
	return t.InvokableRun(ctx, argumentsInJSON)
}

// Arguments are the decoded members of a tool call's JSON arguments.
type Arguments map[string]json.RawMessage

// ParseArguments accepts an empty string as an empty object.
func ParseArguments(argumentsInJSON string) (Arguments, error) {
	args := Arguments{}
	if strings.TrimSpace(argumentsInJSON) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return nil, models.InvalidRequestf("arguments must be a JSON object: %v", err)
	}
	return args, nil
}

func (a Arguments) String(key string) string {
	raw, ok := a[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return strings.Trim(string(raw), `" `)
	}
	return s
}

// Ticker returns the normalized ticker argument.
func (a Arguments) Ticker(key string) (string, error) {
	ticker := a.String(key)
	if err := dataflows.ValidateSymbol(ticker); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return dataflows.NormalizeSymbol(ticker), nil
}

// Decimal accepts a JSON number or a numeric string.
func (a Arguments) Decimal(key string) (decimal.Decimal, error) {
	raw := a.String(key)
	if raw == "" {
		return decimal.Zero, models.InvalidRequestf("%s is required", key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, models.InvalidRequestf("%s must be a number, got %q", key, raw)
	}
	return d, nil
}
