package tools

import "context"

// ToolExecutor is the contract every callable tool implements. The agent only
// talks to tools through this interface, so adding a capability means
// implementing it and registering the instance with the ToolManager.
type ToolExecutor interface {
	// Definition returns the tool's schema. It is sent to the model so the
	// model knows the tool's name, purpose, and argument shape.
	Definition() Tool

	// Execute runs the tool. Arguments arrive as the JSON string the model
	// generated against the tool's schema; the result is a JSON string that
	// is fed back to the model as the tool's response.
	Execute(ctx context.Context, arguments string) (string, error)
}
