// Package llm contains the model-facing side of the assistant: the
// conversation message types, the universal client interface, and the Gemini
// implementation of it.
package llm

import (
	"context"

	"github.com/dileep-u-k/weather-assistant/internal/tools"
)

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single turn in the conversation transcript. A message is
// either text (user, assistant, system), an assistant tool-call request
// (ToolCalls set), or a tool result (RoleTool with ToolName and the result
// payload in Content).
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// ToolCallID matches a tool result back to the call that produced it.
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolName is the declared name of the tool a RoleTool message answers.
	// Gemini keys function responses by function name rather than call ID.
	ToolName string `json:"tool_name,omitempty"`
	// ToolCalls holds the tool calls an assistant message requested.
	ToolCalls []*tools.ToolCall `json:"tool_calls,omitempty"`
}

// Usage holds token accounting for a generation request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates usage from another request, e.g. across the iterations of
// a tool loop.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// GenerationConfig holds the parameters controlling generation behavior.
type GenerationConfig struct {
	// Model is the specific model to use (e.g. "gemini-2.0-flash").
	Model string
	// Temperature controls randomness. A pointer distinguishes 0.0 from unset.
	Temperature *float32
	// MaxTokens caps the response length. Zero means the client default.
	MaxTokens int
	// TopP is nucleus sampling, an alternative to temperature.
	TopP *float32
}

// GenerationResult is the complete output of one model call: either final
// text, or one or more tool calls the model wants executed, plus usage.
type GenerationResult struct {
	Content   string
	ToolCalls []*tools.ToolCall
	Usage     Usage
}

// LLMClient is the universal interface a model client must implement. The
// agent depends only on this, so tests can substitute a scripted fake and a
// different provider client stays a drop-in replacement.
type LLMClient interface {
	// Generate sends the full conversation plus the available tool
	// declarations and returns a single, complete result.
	Generate(
		ctx context.Context,
		messages []Message,
		config *GenerationConfig,
		availableTools []tools.Tool,
	) (*GenerationResult, error)
}
