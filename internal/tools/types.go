// Package tools defines the function-calling (tool use) surface of the
// assistant: provider-agnostic tool schemas, the executor contract, the
// registry that dispatches model tool calls, and the two built-in tools
// (current weather, current local time).
package tools

// ToolTypeFunction is the standard type for function-based tools.
const ToolTypeFunction = "function"

// Tool is the schema for a function that can be described to the model.
type Tool struct {
	// Type is the kind of tool, which is almost always "function".
	Type string `json:"type"`
	// Function holds the detailed definition of the function.
	Function Function `json:"function"`
}

// Function defines the name, description, and parameters of a callable tool.
// The description matters: the model decides from it when to use the tool.
type Function struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is a structured, type-safe representation of the JSON Schema
// used for tool parameters. Using this instead of map[string]interface{}
// keeps tool definitions readable and catches shape mistakes at compile time.
type JSONSchema struct {
	// Type is the data type of a schema node ("object", "string", "number",
	// "integer"). The top-level parameters node is always "object".
	Type string `json:"type"`
	// Description explains what a specific parameter is for.
	Description string `json:"description,omitempty"`
	// Enum restricts a string parameter to a fixed set of values.
	Enum []string `json:"enum,omitempty"`
	// Properties maps parameter names to their schemas.
	Properties map[string]*JSONSchema `json:"properties,omitempty"`
	// Required lists the mandatory parameter names.
	Required []string `json:"required,omitempty"`
}

// ToolCall is a request from the model to execute a declared tool with the
// given arguments. The dispatcher executes it and sends the result back.
type ToolCall struct {
	// ID identifies this specific call so the execution result can be matched
	// back to the request in a multi-turn conversation.
	ID string `json:"id"`
	// Type is the kind of tool being called, almost always "function".
	Type string `json:"type"`
	// Function carries the name and arguments the model wants executed.
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction holds the name and arguments of a requested function call.
type ToolCallFunction struct {
	Name string `json:"name"`
	// Arguments is a JSON string matching the function's parameter schema.
	Arguments string `json:"arguments"`
}

// NewFunctionTool builds a Tool with the correct "function" type.
func NewFunctionTool(name, description string, parameters JSONSchema) Tool {
	return Tool{
		Type: ToolTypeFunction,
		Function: Function{
			Name:        name,
			Description: description,
			Parameters:  parameters,
		},
	}
}
