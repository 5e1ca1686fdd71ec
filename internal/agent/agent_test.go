package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/dileep-u-k/weather-assistant/internal/llm"
	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns pre-baked results in order, recording the messages
// it was sent on each call.
type scriptedClient struct {
	results []*llm.GenerationResult
	err     error
	calls   [][]llm.Message
}

func (s *scriptedClient) Generate(ctx context.Context, messages []llm.Message, config *llm.GenerationConfig, availableTools []tools.Tool) (*llm.GenerationResult, error) {
	snapshot := make([]llm.Message, len(messages))
	copy(snapshot, messages)
	s.calls = append(s.calls, snapshot)

	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) == 0 {
		return nil, errors.New("scripted client exhausted")
	}
	result := s.results[0]
	s.results = s.results[1:]
	return result, nil
}

// recordingTool returns a fixed payload and remembers the arguments it saw.
type recordingTool struct {
	name     string
	result   string
	err      error
	gotArgs  string
	executed bool
}

func (r *recordingTool) Definition() tools.Tool {
	return tools.NewFunctionTool(r.name, "test tool", tools.JSONSchema{
		Type: "object",
		Properties: map[string]*tools.JSONSchema{
			"location": {Type: "string"},
		},
		Required: []string{"location"},
	})
}

func (r *recordingTool) Execute(ctx context.Context, arguments string) (string, error) {
	r.executed = true
	r.gotArgs = arguments
	return r.result, r.err
}

func toolCall(name, arguments string) *tools.ToolCall {
	return &tools.ToolCall{
		ID:   "call-" + name,
		Type: tools.ToolTypeFunction,
		Function: tools.ToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func newTestAgent(client llm.LLMClient, executors ...tools.ToolExecutor) *Agent {
	manager := tools.NewToolManager()
	for _, e := range executors {
		manager.Register(e)
	}
	return New(client, manager, Options{SystemPrompt: "test prompt"}, zerolog.Nop())
}

func TestRunTurnPlainText(t *testing.T) {
	client := &scriptedClient{results: []*llm.GenerationResult{
		{Content: "Hello!", Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}},
	}}
	a := newTestAgent(client)

	reply, usage, err := a.RunTurn(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)
	assert.Equal(t, 12, usage.TotalTokens)

	transcript := a.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, llm.RoleSystem, transcript[0].Role)
	assert.Equal(t, llm.RoleUser, transcript[1].Role)
	assert.Equal(t, llm.RoleAssistant, transcript[2].Role)
}

func TestRunTurnWeatherToolDispatch(t *testing.T) {
	weather := &recordingTool{
		name:   "get_weather",
		result: `{"temperature":18,"condition":"Cloudy","humidity":72}`,
	}
	client := &scriptedClient{results: []*llm.GenerationResult{
		{
			ToolCalls: []*tools.ToolCall{toolCall("get_weather", `{"location":"Paris"}`)},
			Usage:     llm.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25},
		},
		{
			Content: "It's 18°C and cloudy in Paris with 72% humidity.",
			Usage:   llm.Usage{PromptTokens: 30, CompletionTokens: 12, TotalTokens: 42},
		},
	}}
	a := newTestAgent(client, weather)

	reply, usage, err := a.RunTurn(context.Background(), "What's the weather in Paris?")
	require.NoError(t, err)
	assert.Equal(t, "It's 18°C and cloudy in Paris with 72% humidity.", reply)
	assert.True(t, weather.executed)
	assert.JSONEq(t, `{"location":"Paris"}`, weather.gotArgs)
	assert.Equal(t, 67, usage.TotalTokens, "usage accumulates across the tool loop")

	// The second model call must carry the tool result back.
	require.Len(t, client.calls, 2)
	last := client.calls[1][len(client.calls[1])-1]
	assert.Equal(t, llm.RoleTool, last.Role)
	assert.Equal(t, "get_weather", last.ToolName)
	assert.JSONEq(t, weather.result, last.Content)
}

func TestRunTurnTimeToolDispatch(t *testing.T) {
	timeTool := &recordingTool{
		name:   "get_current_time",
		result: `{"date":"2024-06-01","time":"21:15:00"}`,
	}
	client := &scriptedClient{results: []*llm.GenerationResult{
		{ToolCalls: []*tools.ToolCall{toolCall("get_current_time", `{"location":"Tokyo"}`)}},
		{Content: "In Tokyo it is 21:15:00 on 2024-06-01."},
	}}
	a := newTestAgent(client, timeTool)

	reply, _, err := a.RunTurn(context.Background(), "What time is it in Tokyo?")
	require.NoError(t, err)
	assert.Contains(t, reply, "2024-06-01")
	assert.Contains(t, reply, "21:15:00")
}

func TestRunTurnUndeclaredToolIsProtocolError(t *testing.T) {
	weather := &recordingTool{name: "get_weather"}
	client := &scriptedClient{results: []*llm.GenerationResult{
		{ToolCalls: []*tools.ToolCall{toolCall("get_stock_price", `{"symbol":"GOOG"}`)}},
	}}
	a := newTestAgent(client, weather)

	_, _, err := a.RunTurn(context.Background(), "What's Google trading at?")
	require.ErrorIs(t, err, ErrUndeclaredTool)
	assert.False(t, weather.executed, "an undeclared call must never be forwarded to a client")
	assert.Len(t, client.calls, 1, "no further model call after a protocol violation")
}

func TestRunTurnToolFailureAbortsTurn(t *testing.T) {
	weather := &recordingTool{name: "get_weather", err: errors.New("provider returned HTTP 401")}
	client := &scriptedClient{results: []*llm.GenerationResult{
		{ToolCalls: []*tools.ToolCall{toolCall("get_weather", `{"location":"Paris"}`)}},
		{Content: "should never be reached"},
	}}
	a := newTestAgent(client, weather)

	_, _, err := a.RunTurn(context.Background(), "Weather in Paris?")
	require.Error(t, err)
	assert.Len(t, client.calls, 1, "no model call is made with a fabricated tool result")
}

func TestRunTurnGenerationFailure(t *testing.T) {
	client := &scriptedClient{err: errors.New("gemini API call failed")}
	a := newTestAgent(client)

	_, _, err := a.RunTurn(context.Background(), "Hi")
	assert.Error(t, err)
}

func TestRunTurnToolBudget(t *testing.T) {
	weather := &recordingTool{name: "get_weather", result: `{"temperature":18}`}
	// The model keeps asking for tools and never settles on an answer.
	var results []*llm.GenerationResult
	for i := 0; i < 10; i++ {
		results = append(results, &llm.GenerationResult{
			ToolCalls: []*tools.ToolCall{toolCall("get_weather", `{"location":"Paris"}`)},
		})
	}
	client := &scriptedClient{results: results}
	a := newTestAgent(client, weather)

	_, _, err := a.RunTurn(context.Background(), "Weather in Paris?")
	require.ErrorIs(t, err, ErrToolBudgetExceeded)
	assert.Len(t, client.calls, defaultMaxToolCalls)
}

func TestRunTurnMultipleToolCallsInOneResponse(t *testing.T) {
	weather := &recordingTool{name: "get_weather", result: `{"temperature":18}`}
	timeTool := &recordingTool{name: "get_current_time", result: `{"date":"2024-06-01","time":"21:15:00"}`}
	client := &scriptedClient{results: []*llm.GenerationResult{
		{ToolCalls: []*tools.ToolCall{
			toolCall("get_weather", `{"location":"Tokyo"}`),
			toolCall("get_current_time", `{"location":"Tokyo"}`),
		}},
		{Content: "Both answered."},
	}}
	a := newTestAgent(client, weather, timeTool)

	reply, _, err := a.RunTurn(context.Background(), "Weather and time in Tokyo?")
	require.NoError(t, err)
	assert.Equal(t, "Both answered.", reply)
	assert.True(t, weather.executed)
	assert.True(t, timeTool.executed)

	// Tool results appear in response order right after the assistant's
	// tool-call message.
	transcript := a.Transcript()
	require.Len(t, transcript, 6)
	assert.Equal(t, "get_weather", transcript[3].ToolName)
	assert.Equal(t, "get_current_time", transcript[4].ToolName)
}

func TestRestoreTranscript(t *testing.T) {
	client := &scriptedClient{results: []*llm.GenerationResult{{Content: "Still cloudy."}}}
	a := newTestAgent(client)

	prior := []llm.Message{
		{Role: llm.RoleSystem, Content: "test prompt"},
		{Role: llm.RoleUser, Content: "Weather in Paris?"},
		{Role: llm.RoleAssistant, Content: "It's cloudy."},
	}
	a.RestoreTranscript(prior)

	_, _, err := a.RunTurn(context.Background(), "And now?")
	require.NoError(t, err)
	require.Len(t, client.calls, 1)
	assert.Len(t, client.calls[0], 4, "restored history precedes the new user turn")
}
