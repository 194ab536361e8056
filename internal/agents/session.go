package agents

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/CortexFin/consts"
	"github.com/dyike/CortexFin/internal/models"
	"github.com/dyike/CortexFin/internal/tools"
)

const (
	DefaultMaxToolRounds = 8
	toolConcurrency      = 4
)

// Agent is the shared, tool-bound completion engine. Sessions created from
// one Agent may run concurrently.
type Agent struct {
	model     model.ToolCallingChatModel
	registry  *tools.Registry
	maxRounds int
	logger    *log.Logger
	callback  callbacks.Handler
}

type AgentOption func(*Agent)

func WithMaxToolRounds(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

func WithLogger(logger *log.Logger) AgentOption {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAgent binds the registry's tool declarations to the chat model.
func NewAgent(cm model.ToolCallingChatModel, registry *tools.Registry, opts ...AgentOption) (*Agent, error) {
	bound, err := cm.WithTools(registry.Infos())
	if err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}
	a := &Agent{
		model:     bound,
		registry:  registry,
		maxRounds: DefaultMaxToolRounds,
		logger:    &log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.callback = NewLoggerCallback(a.logger)
	return a, nil
}

func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// NewSession starts a transcript holding only the system prompt.
func (a *Agent) NewSession() *Session {
	return &Session{
		id:         uuid.NewString(),
		agent:      a,
		transcript: []*schema.Message{schema.SystemMessage(SystemPrompt)},
		state:      consts.State_AwaitingUserInput,
	}
}

// Session is one conversation. Ask calls are serialized.
type Session struct {
	id    string
	agent *Agent

	mu         sync.Mutex
	transcript []*schema.Message
	state      consts.SessionState
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() consts.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []*schema.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Ask runs one question through the completion/tool loop and returns the
// final answer. A completion failure leaves the transcript as it was before
// the question.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", models.InvalidRequestf("question is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.agent.logger
	ctx = callbacks.InitCallbacks(ctx, chatModelRunInfo, s.agent.callback)
	mark := len(s.transcript)
	s.transcript = append(s.transcript, schema.UserMessage(question))

	for round := 1; round <= s.agent.maxRounds; round++ {
		s.state = consts.State_AwaitingCompletion
		start := time.Now()
		reply, err := s.agent.model.Generate(ctx, s.transcript)
		if err != nil {
			s.transcript = s.transcript[:mark]
			s.state = consts.State_AwaitingUserInput
			logger.Error().Str("session", s.id).Int("round", round).Err(err).Msg("completion failed")
			return "", fmt.Errorf("%w: %w", models.ErrCompletionFailed, err)
		}
		logger.Debug().
			Str("session", s.id).
			Int("round", round).
			Int("tool_calls", len(reply.ToolCalls)).
			Dur("elapsed", time.Since(start)).
			Msg("completion round")

		if len(reply.ToolCalls) == 0 {
			return s.finish(reply.Content), nil
		}

		s.transcript = append(s.transcript, schema.AssistantMessage(reply.Content, reply.ToolCalls))
		s.state = consts.State_ExecutingTools
		s.transcript = append(s.transcript, s.runTools(ctx, reply.ToolCalls)...)
	}

	logger.Warn().Str("session", s.id).Int("max_rounds", s.agent.maxRounds).Msg("tool round limit reached")
	return s.finish(FallbackAnswer), nil
}

func (s *Session) finish(answer string) string {
	s.transcript = append(s.transcript, schema.AssistantMessage(answer, nil))
	s.state = consts.State_AnswerReady
	return answer
}

// runTools executes the calls concurrently and returns one tool message per
// call in request order. Failures become the message text.
func (s *Session) runTools(ctx context.Context, calls []schema.ToolCall) []*schema.Message {
	results := make([]*schema.Message, len(calls))

	var g errgroup.Group
	g.SetLimit(toolConcurrency)
	for i, call := range calls {
		g.Go(func() error {
			out, err := s.agent.registry.Invoke(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				out = err.Error()
			}
			results[i] = schema.ToolMessage(out, call.ID)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
