package agent

import (
	"fmt"

	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// Options configures an Agent instance. Use functional options with New.
type Options struct {
	// Description is a human-readable summary of the agent's purpose, shown
	// to sibling agents in handoff tool descriptions.
	Description string
	// Instruction is the system prompt, static or derived from run state.
	Instruction Instruction
	// Tools are the agent's regular (non-handoff) capabilities, in order.
	Tools []tool.Tool
	// Handoffs are the declared transfer destinations, in order.
	Handoffs []*Agent
}

// Agent is an immutable bundle of instructions, model binding, tools and
// handoff targets. It holds no per-run state, so one instance is safe to
// share across concurrent runs. The only post-construction mutation point is
// RegisterHandoffs, which exists to wire mutually recursive graphs and must
// only be used during composition, before the first run starts.
type Agent struct {
	name        string
	description string
	instruction Instruction
	llm         model.Model
	tools       []tool.Tool
	handoffs    []*Agent
}

// New constructs an Agent. The name doubles as the registry key and handoff
// target identifier; an empty name or nil model is a configuration error and
// is rejected eagerly.
func New(name string, llm model.Model, optFns ...func(o *Options)) (*Agent, error) {
	if name == "" {
		return nil, fmt.Errorf("agent name must not be empty")
	}
	if llm == nil {
		return nil, fmt.Errorf("agent %s: model must not be nil", name)
	}

	opts := Options{
		Description: fmt.Sprintf("Agent %s", name),
		Instruction: NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Agent{
		name:        name,
		description: opts.Description,
		instruction: opts.Instruction,
		llm:         llm,
	}
	a.tools = append(a.tools, opts.Tools...)
	a.handoffs = append(a.handoffs, opts.Handoffs...)

	for _, t := range a.tools {
		if t == nil {
			return nil, fmt.Errorf("agent %s: nil tool", name)
		}
	}

	return a, nil
}

// MustNew is New for declarative composition; it panics on configuration errors.
func MustNew(name string, llm model.Model, optFns ...func(o *Options)) *Agent {
	a, err := New(name, llm, optFns...)
	if err != nil {
		panic(err)
	}
	return a
}

// Name returns the unique agent identifier.
func (a *Agent) Name() string { return a.name }

// Description returns the human-readable summary of the agent's purpose.
func (a *Agent) Description() string { return a.description }

// Model returns the language model binding.
func (a *Agent) Model() model.Model { return a.llm }

// Instruction returns the agent's instruction source.
func (a *Agent) Instruction() Instruction { return a.instruction }

// Tools returns a copy of the agent's regular tools.
func (a *Agent) Tools() []tool.Tool {
	out := make([]tool.Tool, len(a.tools))
	copy(out, a.tools)
	return out
}

// Handoffs returns a copy of the declared transfer destinations.
func (a *Agent) Handoffs() []*Agent {
	out := make([]*Agent, len(a.handoffs))
	copy(out, a.handoffs)
	return out
}

// RegisterHandoffs appends transfer destinations after construction. It
// exists because mutually recursive graphs (triage <-> billing) cannot be
// declared in a single construction pass. Call it only while composing the
// agent graph; definitions are treated as read-only once runs start.
func (a *Agent) RegisterHandoffs(targets ...*Agent) {
	a.handoffs = append(a.handoffs, targets...)
}

// FindTool returns the named regular tool, or nil.
func (a *Agent) FindTool(name string) tool.Tool {
	for _, t := range a.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}
