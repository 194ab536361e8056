package agents

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexFin/consts"
	"github.com/dyike/CortexFin/internal/dataflows"
	"github.com/dyike/CortexFin/internal/logger"
	"github.com/dyike/CortexFin/internal/models"
	"github.com/dyike/CortexFin/internal/tools"
)

// scriptedModel replies with the next scripted message on each Generate.
type scriptedModel struct {
	mu      sync.Mutex
	replies []func(input []*schema.Message) (*schema.Message, error)
	inputs  [][]*schema.Message
	tools   []*schema.ToolInfo
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]*schema.Message, len(input))
	copy(snapshot, input)
	m.inputs = append(m.inputs, snapshot)
	if len(m.replies) == 0 {
		return nil, errors.New("no scripted reply")
	}
	next := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return next(input)
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(infos []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.tools = infos
	return m, nil
}

func answer(text string) func([]*schema.Message) (*schema.Message, error) {
	return func([]*schema.Message) (*schema.Message, error) {
		return schema.AssistantMessage(text, nil), nil
	}
}

func callTools(calls ...schema.ToolCall) func([]*schema.Message) (*schema.Message, error) {
	return func([]*schema.Message) (*schema.Message, error) {
		return schema.AssistantMessage("", calls), nil
	}
}

func call(id, name, args string) schema.ToolCall {
	return schema.ToolCall{ID: id, Type: "function", Function: schema.FunctionCall{Name: name, Arguments: args}}
}

type staticFetcher map[dataflows.QueryKind]string

func (f staticFetcher) Fetch(_ context.Context, kind dataflows.QueryKind, _ string) (dataflows.RawDocument, error) {
	body, ok := f[kind]
	if !ok {
		return nil, &models.DataUnavailableError{Kind: kind.DataKind(), Ticker: "X", Reason: "offline"}
	}
	var doc dataflows.RawDocument
	err := json.Unmarshal([]byte(body), &doc)
	return doc, err
}

func newTestAgent(t *testing.T, m *scriptedModel, opts ...AgentOption) *Agent {
	t.Helper()
	registry := tools.NewRegistry(staticFetcher{
		dataflows.QueryQuote: `{"Global Quote": {"05. price": "189.84", "10. change percent": "0.5%"}}`,
	}, logger.Discard())
	opts = append([]AgentOption{WithLogger(logger.Discard())}, opts...)
	a, err := NewAgent(m, registry, opts...)
	require.NoError(t, err)
	return a
}

func TestNewAgentBindsAllTools(t *testing.T) {
	m := &scriptedModel{}
	newTestAgent(t, m)

	require.Len(t, m.tools, 6)
	assert.Equal(t, consts.ToolGetStockPrice, m.tools[0].Name)
}

func TestAskWithoutToolCalls(t *testing.T) {
	m := &scriptedModel{replies: []func([]*schema.Message) (*schema.Message, error){answer("Hello there.")}}
	s := newTestAgent(t, m).NewSession()

	out, err := s.Ask(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", out)
	assert.Equal(t, consts.State_AnswerReady, s.State())

	transcript := s.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, schema.System, transcript[0].Role)
	assert.Equal(t, SystemPrompt, transcript[0].Content)
	assert.Equal(t, schema.User, transcript[1].Role)
	assert.Equal(t, schema.Assistant, transcript[2].Role)
}

func TestAskRunsToolsAndKeepsRequestOrder(t *testing.T) {
	m := &scriptedModel{replies: []func([]*schema.Message) (*schema.Message, error){
		callTools(
			call("call_1", consts.ToolGetStockPrice, `{"ticker":"aapl"}`),
			call("call_2", consts.ToolGetFundamentals, `{"ticker":"AAPL"}`),
			call("call_3", "get_weather", `{}`),
			call("call_4", consts.ToolCalculateReturn, `{"start_price":100,"end_price":110}`),
		),
		answer("AAPL trades at $189.84."),
	}}
	s := newTestAgent(t, m).NewSession()

	out, err := s.Ask(context.Background(), "What is Apple's price?")
	require.NoError(t, err)
	assert.Equal(t, "AAPL trades at $189.84.", out)

	require.Len(t, m.inputs, 2)
	second := m.inputs[1]
	// system, user, assistant(tool calls), 4 tool results
	require.Len(t, second, 7)
	assert.Len(t, second[2].ToolCalls, 4)

	results := second[3:]
	for i, id := range []string{"call_1", "call_2", "call_3", "call_4"} {
		assert.Equal(t, schema.Tool, results[i].Role)
		assert.Equal(t, id, results[i].ToolCallID)
	}
	assert.Equal(t, "AAPL is trading at $189.84 (0.5% today)", results[0].Content)
	assert.Contains(t, results[1].Content, "Unable to retrieve fundamental data")
	assert.Contains(t, results[2].Content, "tool not found")
	assert.Equal(t, "Return: 10.00% (gain)", results[3].Content)
}

func TestAskStopsAtRoundLimit(t *testing.T) {
	m := &scriptedModel{replies: []func([]*schema.Message) (*schema.Message, error){
		callTools(call("c", consts.ToolGetStockPrice, `{"ticker":"AAPL"}`)),
	}}
	s := newTestAgent(t, m, WithMaxToolRounds(3)).NewSession()

	out, err := s.Ask(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, out)
	assert.Len(t, m.inputs, 3)

	transcript := s.Transcript()
	assert.Equal(t, FallbackAnswer, transcript[len(transcript)-1].Content)
}

func TestAskRollsBackOnCompletionFailure(t *testing.T) {
	engineErr := errors.New("upstream 500")
	m := &scriptedModel{replies: []func([]*schema.Message) (*schema.Message, error){
		answer("first answer"),
		callTools(call("c", consts.ToolCalculateReturn, `{"start_price":1,"end_price":2}`)),
		func([]*schema.Message) (*schema.Message, error) { return nil, engineErr },
	}}
	s := newTestAgent(t, m).NewSession()

	_, err := s.Ask(context.Background(), "first")
	require.NoError(t, err)
	before := s.Transcript()

	_, err = s.Ask(context.Background(), "second")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCompletionFailed)
	assert.ErrorIs(t, err, engineErr)
	assert.Equal(t, before, s.Transcript())
	assert.Equal(t, consts.State_AwaitingUserInput, s.State())
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	m := &scriptedModel{}
	s := newTestAgent(t, m).NewSession()

	_, err := s.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
	assert.Empty(t, m.inputs)
	assert.Len(t, s.Transcript(), 1)
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	a := newTestAgent(t, &scriptedModel{})
	assert.NotEqual(t, a.NewSession().ID(), a.NewSession().ID())
}
