package tool

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
)

// Tool defines the interface for extending agent capabilities with external
// functions. Registered tools become callable by the model through function
// calling; the runtime translates their parameter schema into the
// function-call declaration sent to the backend.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case recommended)
//   - Define proper JSON schema for parameters
//   - Hold no per-call state; accept all required state through the
//     ToolContext and arguments so one instance is safe under concurrent
//     invocation from different runs
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the LLM to help it decide when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with structured arguments and the per-invocation
	// ToolContext. Arguments are parsed from JSON and validated against the
	// tool's schema before reaching the implementation.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// Param declares a single named tool parameter. A list of Params is the
// declarative alternative to writing the JSON schema map by hand.
type Param struct {
	Name        string // Parameter name as exposed to the model
	Type        string // JSON schema type: string, integer, number, boolean, array, object
	Description string // Human description shown to the model
	Required    bool   // Whether the model must supply the parameter
}

// SchemaFromParams translates a parameter declaration list into the minimal
// JSON-Schema object shape used throughout the framework.
func SchemaFromParams(params []Param) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string

	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
