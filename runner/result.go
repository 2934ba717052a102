package runner

import (
	"fmt"

	"github.com/hupe1980/agentrelay/core"
)

// MaxTurnsExceededError reports that a run was stopped because it consumed
// its entire turn budget without producing a final answer.
type MaxTurnsExceededError struct {
	MaxTurns int
}

func (e *MaxTurnsExceededError) Error() string {
	return fmt.Sprintf("maximum number of turns (%d) exceeded", e.MaxTurns)
}

// RunResult is the complete outcome of one Run call. It is always returned,
// even on failure, so callers can inspect partial progress and persist the
// checkpointed context.
type RunResult struct {
	// Output is the final assistant text, or a diagnostic message when the
	// run ended without one.
	Output string

	// Messages is the full in-run transcript, excluding internal transfer
	// acknowledgments.
	Messages []core.Message

	// FinalAgent is the agent that was active when the run ended.
	FinalAgent string

	// Turns is the number of model round-trips consumed.
	Turns int

	// Transitions lists the handoffs applied during the run, in order.
	Transitions []core.Transition

	// Usage aggregates token counts across all model calls of the run.
	Usage core.Usage

	// Context is the checkpointed context map to pass to the next run.
	Context map[string]any

	// Error is non-nil when the run failed or exhausted its turn budget.
	// Tool execution failures do not set it; they are surfaced to the
	// model as tool results instead.
	Error error
}

// Success reports whether the run completed with a final answer.
func (r *RunResult) Success() bool { return r.Error == nil }
