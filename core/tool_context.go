package core

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentrelay/logging"
)

// ToolContext is the constrained surface a single tool invocation sees. It is
// freshly constructed for every call, so a tool instance shared across
// concurrent runs never receives an aliased per-call handle. Shared state
// reads and writes go through the underlying RunContext, which is the only
// sanctioned channel for cross-tool and cross-turn communication.
type ToolContext struct {
	ctx       context.Context
	runCtx    *RunContext
	callID    string
	agentName string

	*loggerAdapter
}

// NewToolContext binds a tool invocation to its run context and the tool-call
// id issued by the model.
func NewToolContext(ctx context.Context, runCtx *RunContext, callID, agentName string) *ToolContext {
	return &ToolContext{
		ctx:           ctx,
		runCtx:        runCtx,
		callID:        callID,
		agentName:     agentName,
		loggerAdapter: newLoggerAdapter(runCtx.Logger()),
	}
}

// Context returns the cancellation context of the surrounding run.
func (tc *ToolContext) Context() context.Context { return tc.ctx }

// Logger returns the logger associated with the invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// CallID returns the tool-call identifier issued by the model response.
func (tc *ToolContext) CallID() string { return tc.callID }

// AgentName returns the agent on whose behalf the tool executes.
func (tc *ToolContext) AgentName() string { return tc.agentName }

// RunID returns the identifier of the surrounding run.
func (tc *ToolContext) RunID() string { return tc.runCtx.RunID() }

// Get reads a shared state key from the run context.
func (tc *ToolContext) Get(key string) (any, bool) { return tc.runCtx.Get(key) }

// Set writes a shared state key on the run context.
func (tc *ToolContext) Set(key string, value any) { tc.runCtx.Set(key, value) }

// History returns a copy of the conversation history accumulated so far.
func (tc *ToolContext) History() []Message { return tc.runCtx.History() }

// Validate performs a structural sanity check of the context.
func (tc *ToolContext) Validate() error {
	if tc.runCtx == nil || tc.callID == "" {
		return fmt.Errorf("invalid ToolContext")
	}
	return nil
}
