package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dileep-u-k/weather-assistant/internal/tools"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// GeminiClient is the client for interacting with Google's Gemini models.
type GeminiClient struct {
	model  *genai.GenerativeModel
	logger zerolog.Logger
}

var _ LLMClient = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini-backed LLMClient for the given model ID.
func NewGeminiClient(ctx context.Context, apiKey, modelID string, logger zerolog.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key cannot be empty")
	}
	if modelID == "" {
		modelID = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{
		model:  client.GenerativeModel(modelID),
		logger: logger.With().Str("component", "gemini").Str("model", modelID).Logger(),
	}, nil
}

// Generate performs a standard, blocking request to the Gemini API. The last
// message is sent as the new turn; everything before it becomes chat history.
func (c *GeminiClient) Generate(
	ctx context.Context,
	messages []Message,
	config *GenerationConfig,
	availableTools []tools.Tool,
) (*GenerationResult, error) {
	if len(messages) == 0 {
		return nil, errors.New("cannot generate from an empty conversation")
	}

	c.configureModel(config, availableTools)

	system, turns := splitSystemMessage(messages)
	if system != "" {
		c.model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	if len(turns) == 0 {
		return nil, errors.New("conversation contains only a system message")
	}

	chat := c.model.StartChat()
	chat.History = toGeminiContentHistory(turns[:len(turns)-1])

	lastParts := toGeminiParts(turns[len(turns)-1])
	c.logger.Debug().Int("history_len", len(chat.History)).Msg("Sending request to the model")

	resp, err := chat.SendMessage(ctx, lastParts...)
	if err != nil {
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return c.parseResponse(ctx, resp)
}

// configureModel applies generation settings using the SDK's setter methods.
func (c *GeminiClient) configureModel(config *GenerationConfig, availableTools []tools.Tool) {
	if config != nil {
		if config.Temperature != nil {
			c.model.SetTemperature(*config.Temperature)
		}
		if config.TopP != nil {
			c.model.SetTopP(*config.TopP)
		}
		if config.MaxTokens > 0 {
			c.model.SetMaxOutputTokens(int32(config.MaxTokens))
		} else {
			c.model.SetMaxOutputTokens(defaultMaxOutputTokens)
		}
	} else {
		c.model.SetMaxOutputTokens(defaultMaxOutputTokens)
	}

	if len(availableTools) > 0 {
		c.model.Tools = toGeminiTools(availableTools)
	} else {
		c.model.Tools = nil
	}
}

// splitSystemMessage pulls the system prompt out of the transcript; Gemini
// takes it as a model-level instruction, not a conversation turn.
func splitSystemMessage(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = msg.Content
			continue
		}
		turns = append(turns, msg)
	}
	return system, turns
}

// toGeminiTools converts the internal tool definitions to the SDK's format.
func toGeminiTools(toolsToConvert []tools.Tool) []*genai.Tool {
	var geminiTools []*genai.Tool
	for _, t := range toolsToConvert {
		funcDecl := &genai.FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  convertSchema(t.Function.Parameters),
		}
		geminiTools = append(geminiTools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{funcDecl},
		})
	}
	return geminiTools
}

// convertSchema converts the internal JSONSchema to the SDK's schema type.
func convertSchema(s tools.JSONSchema) *genai.Schema {
	genaiSchema := &genai.Schema{
		Description: s.Description,
		Enum:        s.Enum,
		Required:    s.Required,
	}
	switch s.Type {
	case "object":
		genaiSchema.Type = genai.TypeObject
	case "string":
		genaiSchema.Type = genai.TypeString
	case "number":
		genaiSchema.Type = genai.TypeNumber
	case "integer":
		genaiSchema.Type = genai.TypeInteger
	case "boolean":
		genaiSchema.Type = genai.TypeBoolean
	}
	if s.Properties != nil {
		genaiSchema.Properties = make(map[string]*genai.Schema)
		for k, v := range s.Properties {
			genaiSchema.Properties[k] = convertSchema(*v)
		}
	}
	return genaiSchema
}

// toGeminiContentHistory converts transcript messages to SDK chat history.
func toGeminiContentHistory(messages []Message) []*genai.Content {
	var history []*genai.Content
	for _, msg := range messages {
		role := "user"
		switch msg.Role {
		case RoleAssistant:
			role = "model"
		case RoleTool:
			role = "function"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: toGeminiParts(msg),
		})
	}
	return history
}

// toGeminiParts maps one transcript message onto SDK content parts: plain
// text, the function calls an assistant turn requested, or a function
// response carrying a tool result back to the model.
func toGeminiParts(msg Message) []genai.Part {
	if msg.Role == RoleTool {
		return []genai.Part{genai.FunctionResponse{
			Name:     msg.ToolName,
			Response: toolResponsePayload(msg.Content),
		}}
	}
	if len(msg.ToolCalls) > 0 {
		var parts []genai.Part
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
		for _, call := range msg.ToolCalls {
			args := map[string]any{}
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				args = map[string]any{}
			}
			parts = append(parts, genai.FunctionCall{
				Name: call.Function.Name,
				Args: args,
			})
		}
		return parts
	}
	return []genai.Part{genai.Text(msg.Content)}
}

// toolResponsePayload decodes a tool's JSON result into the map the SDK
// expects. A non-JSON result is wrapped rather than dropped.
func toolResponsePayload(content string) map[string]any {
	payload := map[string]any{}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return map[string]any{"result": content}
	}
	return payload
}

// parseResponse converts a Gemini API response into a GenerationResult.
func (c *GeminiClient) parseResponse(ctx context.Context, resp *genai.GenerateContentResponse) (*GenerationResult, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no content returned from Gemini")
	}

	candidate := resp.Candidates[0]
	var contentBuilder strings.Builder
	var toolCalls []*tools.ToolCall

	for _, part := range candidate.Content.Parts {
		switch v := part.(type) {
		case genai.Text:
			contentBuilder.WriteString(string(v))
		case genai.FunctionCall:
			args, err := json.Marshal(v.Args)
			if err != nil {
				c.logger.Warn().Err(err).Str("function", v.Name).Msg("Could not marshal tool call args")
				continue
			}
			toolCalls = append(toolCalls, &tools.ToolCall{
				ID:   fmt.Sprintf("gemini-toolcall-%s", v.Name),
				Type: tools.ToolTypeFunction,
				Function: tools.ToolCallFunction{
					Name:      v.Name,
					Arguments: string(args),
				},
			})
		}
	}

	result := &GenerationResult{
		Content:   strings.TrimSpace(contentBuilder.String()),
		ToolCalls: toolCalls,
	}

	if resp.UsageMetadata != nil {
		result.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		result.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	// Some responses omit completion tokens from the metadata; count them
	// manually so per-turn usage stays meaningful.
	if result.Usage.CompletionTokens == 0 && result.Content != "" {
		countResp, err := c.model.CountTokens(ctx, genai.Text(result.Content))
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to manually count completion tokens")
		} else {
			result.Usage.CompletionTokens = int(countResp.TotalTokens)
			result.Usage.TotalTokens = result.Usage.PromptTokens + result.Usage.CompletionTokens
		}
	}

	return result, nil
}
