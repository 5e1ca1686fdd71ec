package tools

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTool is returned when the model requests a tool that was never
// declared to it. The declared schema is the only contract between the
// dispatcher and the model, so an unknown name is a protocol violation, not
// something to ignore.
var ErrUnknownTool = errors.New("tool not found")

// ToolManager holds the registry of all available tools.
type ToolManager struct {
	tools map[string]ToolExecutor
	order []string
}

func NewToolManager() *ToolManager {
	return &ToolManager{
		tools: make(map[string]ToolExecutor),
	}
}

// Register adds a tool to the registry under its declared name.
func (tm *ToolManager) Register(tool ToolExecutor) {
	name := tool.Definition().Function.Name
	if _, exists := tm.tools[name]; !exists {
		tm.order = append(tm.order, name)
	}
	tm.tools[name] = tool
}

// GetDefinitions returns all registered tool definitions in registration
// order, ready to be advertised to the model.
func (tm *ToolManager) GetDefinitions() []Tool {
	defs := make([]Tool, 0, len(tm.tools))
	for _, name := range tm.order {
		defs = append(defs, tm.tools[name].Definition())
	}
	return defs
}

// Execute dispatches a tool call by name. An undeclared name yields
// ErrUnknownTool and the call never reaches any executor.
func (tm *ToolManager) Execute(ctx context.Context, name, arguments string) (string, error) {
	tool, ok := tm.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool.Execute(ctx, arguments)
}

// ToolCount returns the number of registered tools.
func (tm *ToolManager) ToolCount() int {
	return len(tm.tools)
}
