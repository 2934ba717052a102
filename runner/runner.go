package runner

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/chat"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
)

// DefaultMaxTurns bounds a run when no explicit budget is configured. A turn
// is one model round-trip; handoffs consume a turn like any other.
const DefaultMaxTurns = 10

// Options configures a Runner.
type Options struct {
	// MaxTurns caps model round-trips per run. Zero or negative selects
	// DefaultMaxTurns.
	MaxTurns int

	// ParallelTools executes multi-call tool batches concurrently.
	ParallelTools bool

	// MaxParallel caps the tool worker pool when ParallelTools is set.
	MaxParallel int

	// Logger receives structured run events. Defaults to a no-op logger.
	Logger logging.Logger
}

// Runner executes conversation runs against a fixed agent graph. It is the
// single writer of the active-agent state: tools request transfers, the
// runner applies them. A Runner is immutable after New and safe for
// concurrent Run calls; each run gets its own deep-copied context.
type Runner struct {
	registry *agent.Registry
	opts     Options
}

// New builds a runner rooted at the starting agent. The reachable handoff
// graph is validated eagerly, so misconfigurations such as duplicate agent
// names fail here rather than mid-conversation.
func New(starting *agent.Agent, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{
		MaxTurns: DefaultMaxTurns,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	registry, err := agent.BuildRegistry(starting)
	if err != nil {
		return nil, err
	}

	return &Runner{registry: registry, opts: opts}, nil
}

// Registry exposes the validated agent graph.
func (r *Runner) Registry() *agent.Registry { return r.registry }

// Run executes one complete conversation run: restore state from the context
// map, append the user input, loop model round-trips until a final answer,
// an error, or the turn budget. The returned result always carries a
// checkpointed context map, whatever the exit path.
func (r *Runner) Run(ctx context.Context, input string, contextMap map[string]any) (result *RunResult) {
	runCtx := core.NewRunContext(contextMap, r.opts.Logger)

	current := r.resolveCurrent(runCtx)
	runCtx.SetCurrentAgent(current.Name())

	session := r.newChat(current, runCtx)
	session.Restore(runCtx.History())
	session.AddUserMessage(input)

	defer func() {
		if rec := recover(); rec != nil {
			r.opts.Logger.Error("run.panic", "run_id", runCtx.RunID(), "panic", rec, "stack", string(debug.Stack()))
			result = r.finish(runCtx, session, "", fmt.Errorf("run aborted by panic: %v", rec))
		}
	}()

	r.opts.Logger.Info("run.start",
		"run_id", runCtx.RunID(),
		"agent", current.Name(),
		"max_turns", r.opts.MaxTurns,
	)

	for runCtx.TurnCount() < r.opts.MaxTurns {
		outcome, err := session.Step(ctx)
		turn := runCtx.IncrementTurn()

		if err != nil {
			r.opts.Logger.Error("run.step.error", "run_id", runCtx.RunID(), "agent", current.Name(), "turn", turn, "error", err)
			return r.finish(runCtx, session, "", err)
		}

		r.checkpoint(runCtx, session)

		switch outcome.Kind {
		case chat.OutcomeFinal:
			r.opts.Logger.Info("run.complete", "run_id", runCtx.RunID(), "agent", current.Name(), "turns", turn)
			return r.finish(runCtx, session, outcome.Content, nil)

		case chat.OutcomeHandoff:
			target := outcome.Handoff.Target
			runCtx.RecordTransition(current.Name(), target.Name(), outcome.HandoffReason)

			r.opts.Logger.Info("run.handoff",
				"run_id", runCtx.RunID(),
				"from", current.Name(),
				"to", target.Name(),
				"reason", outcome.HandoffReason,
				"turn", turn,
			)

			transcript := session.Messages()
			current = target
			runCtx.SetCurrentAgent(current.Name())

			session = r.newChat(current, runCtx)
			session.Resume(transcript)

			r.checkpoint(runCtx, session)

		case chat.OutcomeContinue:
			r.opts.Logger.Debug("run.tools.complete", "run_id", runCtx.RunID(), "agent", current.Name(), "turn", turn)
		}
	}

	r.opts.Logger.Warn("run.max_turns", "run_id", runCtx.RunID(), "agent", current.Name(), "max_turns", r.opts.MaxTurns)

	output := fmt.Sprintf("The conversation was stopped after reaching the maximum of %d turns without a final answer.", r.opts.MaxTurns)

	return r.finish(runCtx, session, output, &MaxTurnsExceededError{MaxTurns: r.opts.MaxTurns})
}

// resolveCurrent picks the active agent from persisted state, falling back
// to the starting agent when the persisted name matches nothing in the
// graph. A stale name should not strand the conversation.
func (r *Runner) resolveCurrent(runCtx *core.RunContext) *agent.Agent {
	name := runCtx.CurrentAgent()
	if name == "" {
		return r.registry.Entry()
	}

	resolved, ok := r.registry.Resolve(name)
	if !ok {
		r.opts.Logger.Warn("run.agent.fallback",
			"run_id", runCtx.RunID(),
			"persisted", name,
			"fallback", r.registry.Entry().Name(),
		)
		return r.registry.Entry()
	}

	return resolved
}

func (r *Runner) newChat(a *agent.Agent, runCtx *core.RunContext) *chat.Chat {
	return chat.New(a, runCtx, func(o *chat.Options) {
		o.ParallelTools = r.opts.ParallelTools
		o.MaxParallel = r.opts.MaxParallel
	})
}

// checkpoint writes the session transcript back into the run context so a
// crash or budget stop never loses completed turns. Internal transfer
// acknowledgments are stripped; they are scaffolding, not conversation.
func (r *Runner) checkpoint(runCtx *core.RunContext, session *chat.Chat) {
	runCtx.SetHistory(stripHandoffAcks(session.Messages()))
}

func (r *Runner) finish(runCtx *core.RunContext, session *chat.Chat, output string, runErr error) *RunResult {
	r.checkpoint(runCtx, session)

	return &RunResult{
		Output:      output,
		Messages:    stripHandoffAcks(session.Messages()),
		FinalAgent:  runCtx.CurrentAgent(),
		Turns:       runCtx.TurnCount(),
		Transitions: runCtx.Transitions(),
		Usage:       runCtx.Usage(),
		Context:     runCtx.Snapshot(),
		Error:       runErr,
	}
}

func stripHandoffAcks(msgs []core.Message) []core.Message {
	out := make([]core.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role == core.RoleTool && agent.IsHandoffToolName(msg.ToolName) {
			continue
		}
		out = append(out, msg)
	}
	return out
}
