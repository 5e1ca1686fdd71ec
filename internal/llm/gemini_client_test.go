package llm

import (
	"context"
	"testing"

	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageAdd(t *testing.T) {
	u := Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	u.Add(Usage{PromptTokens: 20, CompletionTokens: 8, TotalTokens: 28})
	assert.Equal(t, Usage{PromptTokens: 30, CompletionTokens: 13, TotalTokens: 43}, u)
}

func TestSplitSystemMessage(t *testing.T) {
	system, turns := splitSystemMessage([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "be brief", system)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
}

func TestConvertSchema(t *testing.T) {
	schema := convertSchema(tools.JSONSchema{
		Type: "object",
		Properties: map[string]*tools.JSONSchema{
			"location": {Type: "string", Description: "place name"},
			"unit":     {Type: "string", Enum: []string{"C", "F"}},
		},
		Required: []string{"location"},
	})

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"location"}, schema.Required)
	require.Contains(t, schema.Properties, "location")
	assert.Equal(t, genai.TypeString, schema.Properties["location"].Type)
	assert.Equal(t, "place name", schema.Properties["location"].Description)
	assert.Equal(t, []string{"C", "F"}, schema.Properties["unit"].Enum)
}

func TestToGeminiTools(t *testing.T) {
	defs := []tools.Tool{
		tools.NewFunctionTool("get_weather", "weather lookup", tools.JSONSchema{Type: "object"}),
		tools.NewFunctionTool("get_current_time", "time lookup", tools.JSONSchema{Type: "object"}),
	}
	geminiTools := toGeminiTools(defs)
	require.Len(t, geminiTools, 2)
	require.Len(t, geminiTools[0].FunctionDeclarations, 1)
	assert.Equal(t, "get_weather", geminiTools[0].FunctionDeclarations[0].Name)
	assert.Equal(t, "get_current_time", geminiTools[1].FunctionDeclarations[0].Name)
}

func TestToGeminiPartsText(t *testing.T) {
	parts := toGeminiParts(Message{Role: RoleUser, Content: "hi"})
	require.Len(t, parts, 1)
	assert.Equal(t, genai.Text("hi"), parts[0])
}

func TestToGeminiPartsToolCall(t *testing.T) {
	parts := toGeminiParts(Message{
		Role: RoleAssistant,
		ToolCalls: []*tools.ToolCall{{
			ID:   "call-1",
			Type: tools.ToolTypeFunction,
			Function: tools.ToolCallFunction{
				Name:      "get_weather",
				Arguments: `{"location":"Paris"}`,
			},
		}},
	})
	require.Len(t, parts, 1)

	call, ok := parts[0].(genai.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "get_weather", call.Name)
	assert.Equal(t, map[string]any{"location": "Paris"}, call.Args)
}

func TestToGeminiPartsToolResult(t *testing.T) {
	parts := toGeminiParts(Message{
		Role:     RoleTool,
		ToolName: "get_weather",
		Content:  `{"temperature":18,"condition":"Cloudy","humidity":72}`,
	})
	require.Len(t, parts, 1)

	resp, ok := parts[0].(genai.FunctionResponse)
	require.True(t, ok)
	assert.Equal(t, "get_weather", resp.Name)
	assert.Equal(t, "Cloudy", resp.Response["condition"])
}

func TestToolResponsePayloadNonJSON(t *testing.T) {
	payload := toolResponsePayload("plain text result")
	assert.Equal(t, map[string]any{"result": "plain text result"}, payload)
}

func TestToGeminiContentHistoryRoles(t *testing.T) {
	history := toGeminiContentHistory([]Message{
		{Role: RoleUser, Content: "weather in Paris?"},
		{Role: RoleAssistant, ToolCalls: []*tools.ToolCall{{
			Function: tools.ToolCallFunction{Name: "get_weather", Arguments: `{"location":"Paris"}`},
		}}},
		{Role: RoleTool, ToolName: "get_weather", Content: `{"temperature":18}`},
		{Role: RoleAssistant, Content: "It's 18°C."},
	})
	require.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "function", history[2].Role)
	assert.Equal(t, "model", history[3].Role)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", zerolog.Nop())
	assert.Error(t, err)
}
