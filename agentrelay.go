// Package agentrelay provides a high-level façade over the runner and the
// context store, enabling rapid construction of multi-agent conversation
// systems. Most applications interact with this package by:
//  1. Defining agents with their tools and handoff targets (package agent)
//  2. Creating an AgentRelay via New() rooted at the starting agent
//  3. Calling Chat() per user message, keyed by conversation ID
//
// The façade delegates orchestration to runner.Runner and persists the
// checkpointed context map between calls. All defaults are safe for local
// development and testing; production deployments typically supply a durable
// ContextStore implementation and a structured logger.
package agentrelay

import (
	"context"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/runner"
	"github.com/hupe1980/agentrelay/store"
)

// Options configures the AgentRelay instance.
type Options struct {
	// MaxTurns caps model round-trips per Chat call. Zero selects the
	// runner default.
	MaxTurns int

	// ParallelTools executes multi-call tool batches concurrently instead
	// of sequentially. Results keep request order either way.
	ParallelTools bool

	// MaxParallel caps the tool worker pool when ParallelTools is set.
	MaxParallel int

	// ContextStore persists conversation state between Chat calls.
	// Defaults to an in-memory implementation.
	ContextStore store.ContextStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentRelay is the high-level façade aggregating the runner and the
// conversation store.
type AgentRelay struct {
	opts   Options
	runner *runner.Runner
	store  store.ContextStore
}

// New creates a new AgentRelay rooted at the starting agent. The reachable
// handoff graph is validated eagerly, so configuration errors surface here.
func New(starting *agent.Agent, optFns ...func(o *Options)) (*AgentRelay, error) {
	opts := Options{
		ContextStore: store.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ContextStore == nil {
		opts.ContextStore = store.NewInMemoryStore()
	}

	r, err := runner.New(starting, func(o *runner.Options) {
		o.MaxTurns = opts.MaxTurns
		o.ParallelTools = opts.ParallelTools
		o.MaxParallel = opts.MaxParallel
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &AgentRelay{opts: opts, runner: r, store: opts.ContextStore}, nil
}

// Runner exposes the underlying runner for callers that manage context maps
// themselves.
func (m *AgentRelay) Runner() *runner.Runner { return m.runner }

// Chat sends one user message within a conversation: it loads the persisted
// context map, executes a run and saves the checkpointed state back, so
// repeated calls with the same conversation ID continue the same
// conversation across agents.
func (m *AgentRelay) Chat(ctx context.Context, conversationID, input string) (*runner.RunResult, error) {
	contextMap, err := m.store.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	result := m.runner.Run(ctx, input, contextMap)

	if err := m.store.Save(ctx, conversationID, result.Context); err != nil {
		return result, err
	}

	return result, nil
}

// Reset forgets a conversation's persisted state.
func (m *AgentRelay) Reset(ctx context.Context, conversationID string) error {
	return m.store.Delete(ctx, conversationID)
}
