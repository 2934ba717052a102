package tool

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/hupe1980/agentrelay/core"
)

// ErrorHandler is optionally implemented by tools that want to shape the
// user-facing text produced when their Call fails.
type ErrorHandler interface {
	HandleError(err error, toolCtx *core.ToolContext) string
}

// Execute is the public entry point for running a tool: it wraps Call,
// catching any error or panic raised inside it and converting the failure to
// a user-facing string result. Tool execution therefore never fails past this
// boundary; the model sees the failure text as an ordinary tool result and
// may react to it in-conversation.
//
// Successful non-string results are JSON-encoded so structured values survive
// the trip through the transcript.
func Execute(t Tool, toolCtx *core.ToolContext, args map[string]any) string {
	result, err := call(t, toolCtx, args)
	if err != nil {
		if h, ok := t.(ErrorHandler); ok {
			return h.HandleError(err, toolCtx)
		}
		return DefaultErrorResult(t.Name(), err)
	}
	return Stringify(result)
}

// call invokes the tool, converting panics into errors so one misbehaving
// tool cannot abort the batch or the run.
func call(t Tool, toolCtx *core.ToolContext, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			toolCtx.Logger().Error("tool.call.panic", "tool", t.Name(), "recover", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Call(toolCtx, args)
}

// DefaultErrorResult renders the standard user-facing failure text.
func DefaultErrorResult(toolName string, err error) string {
	return fmt.Sprintf("Error executing %s: %s", toolName, err.Error())
}

// Stringify converts an arbitrary tool result into transcript text.
func Stringify(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
