// Package agent drives the conversation: it owns the transcript, mediates
// between the model and the registered tools, and turns one line of user
// input into one final natural-language answer.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/dileep-u-k/weather-assistant/internal/llm"
	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/rs/zerolog"
)

// ErrUndeclaredTool reports that the model requested a tool outside the
// declared set. The declared schema is the only contract between the
// dispatcher and the model, so this is a fatal protocol violation.
var ErrUndeclaredTool = errors.New("model requested an undeclared tool")

// ErrToolBudgetExceeded reports a turn that kept requesting tools past the
// configured bound without producing a final answer.
var ErrToolBudgetExceeded = errors.New("exceeded maximum number of tool calls in one turn")

// defaultMaxToolCalls bounds the Generate/dispatch iterations per user turn.
const defaultMaxToolCalls = 5

// Agent owns one conversation. The transcript grows monotonically for the
// lifetime of the session and is mutated only here, on a single goroutine.
type Agent struct {
	client       llm.LLMClient
	toolManager  *tools.ToolManager
	config       *llm.GenerationConfig
	maxToolCalls int
	transcript   []llm.Message
	logger       zerolog.Logger
}

// Options tunes an Agent beyond its required collaborators.
type Options struct {
	// SystemPrompt is declared once, as the first transcript entry.
	SystemPrompt string
	// MaxToolCalls bounds tool dispatches per user turn. Zero means default.
	MaxToolCalls int
	// Config is passed through to the model client on every call.
	Config *llm.GenerationConfig
}

// New creates an Agent over the given model client and tool registry.
func New(client llm.LLMClient, toolManager *tools.ToolManager, opts Options, logger zerolog.Logger) *Agent {
	maxCalls := opts.MaxToolCalls
	if maxCalls <= 0 {
		maxCalls = defaultMaxToolCalls
	}
	a := &Agent{
		client:       client,
		toolManager:  toolManager,
		config:       opts.Config,
		maxToolCalls: maxCalls,
		logger:       logger.With().Str("component", "agent").Logger(),
	}
	if opts.SystemPrompt != "" {
		a.transcript = append(a.transcript, llm.Message{
			Role:    llm.RoleSystem,
			Content: opts.SystemPrompt,
		})
	}
	return a
}

// Transcript returns a copy of the conversation so far.
func (a *Agent) Transcript() []llm.Message {
	out := make([]llm.Message, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// RestoreTranscript replaces the conversation, e.g. when resuming a stored
// session in the HTTP serve mode.
func (a *Agent) RestoreTranscript(messages []llm.Message) {
	a.transcript = make([]llm.Message, len(messages))
	copy(a.transcript, messages)
}

// RunTurn processes one line of user input: it appends the user message,
// calls the model, dispatches any tool calls the model requests (feeding
// each result back), and returns the model's final text along with the
// cumulative token usage for the turn.
//
// Every error is unrecoverable at this level: a failed tool call never
// produces a fabricated result for the model, it aborts the turn.
func (a *Agent) RunTurn(ctx context.Context, userInput string) (string, llm.Usage, error) {
	a.transcript = append(a.transcript, llm.Message{
		Role:    llm.RoleUser,
		Content: userInput,
	})

	var cumulativeUsage llm.Usage
	for i := 0; i < a.maxToolCalls; i++ {
		result, err := a.client.Generate(ctx, a.transcript, a.config, a.toolManager.GetDefinitions())
		if err != nil {
			return "", cumulativeUsage, fmt.Errorf("LLM generation failed: %w", err)
		}
		cumulativeUsage.Add(result.Usage)

		if len(result.ToolCalls) == 0 {
			a.transcript = append(a.transcript, llm.Message{
				Role:    llm.RoleAssistant,
				Content: result.Content,
			})
			return result.Content, cumulativeUsage, nil
		}

		a.transcript = append(a.transcript, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})

		// A response may carry several calls; they run sequentially in
		// response order, each appending its own tool message.
		for _, toolCall := range result.ToolCalls {
			a.logger.Info().
				Str("tool", toolCall.Function.Name).
				Str("args", toolCall.Function.Arguments).
				Msg("Executing tool")

			toolResult, err := a.toolManager.Execute(ctx, toolCall.Function.Name, toolCall.Function.Arguments)
			if err != nil {
				if errors.Is(err, tools.ErrUnknownTool) {
					return "", cumulativeUsage, fmt.Errorf("%w: %q", ErrUndeclaredTool, toolCall.Function.Name)
				}
				return "", cumulativeUsage, fmt.Errorf("tool execution failed for %q: %w", toolCall.Function.Name, err)
			}

			a.transcript = append(a.transcript, llm.Message{
				Role:       llm.RoleTool,
				Content:    toolResult,
				ToolCallID: toolCall.ID,
				ToolName:   toolCall.Function.Name,
			})
		}
	}

	return "", cumulativeUsage, ErrToolBudgetExceeded
}
