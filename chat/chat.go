package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

// OutcomeKind describes what a single Step produced.
type OutcomeKind int

const (
	// OutcomeContinue means tools were executed and their results appended;
	// the model should be called again with the extended history.
	OutcomeContinue OutcomeKind = iota

	// OutcomeFinal means the model produced a plain assistant message.
	OutcomeFinal

	// OutcomeHandoff means the model requested a transfer to another agent.
	OutcomeHandoff
)

// Outcome is the result of one model round-trip.
type Outcome struct {
	Kind    OutcomeKind
	Content string

	// Handoff is set when Kind is OutcomeHandoff.
	Handoff *agent.Handoff

	// HandoffReason carries the model-supplied reason, if any.
	HandoffReason string
}

// Options configures a Chat session.
type Options struct {
	// ParallelTools enables concurrent execution of a multi-call batch.
	// Results are appended in request order either way.
	ParallelTools bool

	// MaxParallel caps the worker pool size when ParallelTools is set.
	// Zero means one worker per call.
	MaxParallel int
}

// Chat drives the conversation for a single active agent. The runner creates
// a fresh Chat whenever control transfers to a different agent and carries
// the message list across via Resume.
type Chat struct {
	agent    *agent.Agent
	runCtx   *core.RunContext
	messages []core.Message
	tools    map[string]tool.Tool
	handoffs map[string]tool.Tool
	executor *batchExecutor
}

// New creates a chat session bound to an agent and a run context.
func New(a *agent.Agent, runCtx *core.RunContext, optFns ...func(o *Options)) *Chat {
	opts := Options{}

	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make(map[string]tool.Tool, len(a.Tools()))
	for _, t := range a.Tools() {
		tools[t.Name()] = t
	}

	handoffs := make(map[string]tool.Tool)
	for _, t := range a.HandoffTools() {
		handoffs[t.Name()] = t
	}

	return &Chat{
		agent:    a,
		runCtx:   runCtx,
		tools:    tools,
		handoffs: handoffs,
		executor: &batchExecutor{
			parallel:    opts.ParallelTools,
			maxParallel: opts.MaxParallel,
		},
	}
}

// Agent returns the agent this session is bound to.
func (c *Chat) Agent() *agent.Agent {
	return c.agent
}

// Messages returns a copy of the session's message list.
func (c *Chat) Messages() []core.Message {
	return core.CloneMessages(c.messages)
}

// Restore seeds the session from persisted history. Only non-empty user and
// assistant messages survive; tool traces and handoff acknowledgments from
// earlier runs are dropped so the model sees a clean transcript.
func (c *Chat) Restore(history []core.Message) {
	restored := make([]core.Message, 0, len(history))

	for _, msg := range history {
		if msg.Role != core.RoleUser && msg.Role != core.RoleAssistant {
			continue
		}

		if strings.TrimSpace(msg.Content) == "" || msg.HasToolCalls() {
			continue
		}

		restored = append(restored, msg.Clone())
	}

	c.messages = restored
}

// Resume seeds the session with an in-flight message list, verbatim. Used
// when control transfers mid-run: the next agent sees the full transcript
// including tool traces and the transfer acknowledgment.
func (c *Chat) Resume(messages []core.Message) {
	c.messages = core.CloneMessages(messages)
}

// AddUserMessage appends a user turn to the session.
func (c *Chat) AddUserMessage(content string) {
	c.messages = append(c.messages, core.NewUserMessage(content))
}

// Step performs exactly one model round-trip. The caller counts turns and
// decides whether to loop, stop, or transfer control.
func (c *Chat) Step(ctx context.Context) (*Outcome, error) {
	instructions, err := c.agent.Instruction().Resolve(c.runCtx)
	if err != nil {
		return nil, fmt.Errorf("resolving instruction for agent %s: %w", c.agent.Name(), err)
	}

	resp, err := c.agent.Model().Generate(ctx, model.Request{
		Instructions: instructions,
		Messages:     core.CloneMessages(c.messages),
		Tools:        c.toolDefinitions(),
	})
	if err != nil {
		return nil, fmt.Errorf("model generate for agent %s: %w", c.agent.Name(), err)
	}

	if resp.Usage != nil {
		c.runCtx.AddUsage(core.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		})
	}

	if !resp.HasToolCalls() {
		c.messages = append(c.messages, core.NewAssistantMessage(c.agent.Name(), resp.Content))

		return &Outcome{Kind: OutcomeFinal, Content: resp.Content}, nil
	}

	calls := ensureCallIDs(resp.ToolCalls)

	assistant := core.Message{
		Role:      core.RoleAssistant,
		Content:   resp.Content,
		AgentName: c.agent.Name(),
		ToolCalls: calls,
	}
	c.messages = append(c.messages, assistant)

	if hc, ok := c.firstHandoffCall(calls); ok {
		return c.performHandoff(ctx, calls, hc)
	}

	results := c.executor.Run(ctx, c.runCtx, c.agent.Name(), c.tools, calls)

	for i, call := range calls {
		c.messages = append(c.messages, core.NewToolResultMessage(c.agent.Name(), call.ID, call.Name, results[i]))
	}

	return &Outcome{Kind: OutcomeContinue, Content: resp.Content}, nil
}

// firstHandoffCall returns the first requested tool call that targets a
// registered handoff. Calls that merely look like transfers but match no
// registered target fall through to regular execution, where they produce
// an error result the model can recover from.
func (c *Chat) firstHandoffCall(calls []core.ToolCall) (core.ToolCall, bool) {
	for _, call := range calls {
		if !agent.IsHandoffToolName(call.Name) {
			continue
		}

		if _, ok := c.handoffs[call.Name]; ok {
			return call, true
		}
	}

	return core.ToolCall{}, false
}

// performHandoff executes the chosen transfer and answers the whole batch.
// Every requested call must get a result message; providers reject the next
// model call otherwise. The calls the transfer displaces are skipped, never
// executed, and their results say so.
func (c *Chat) performHandoff(ctx context.Context, calls []core.ToolCall, chosen core.ToolCall) (*Outcome, error) {
	ht := c.handoffs[chosen.Name]
	args := ParseArguments(chosen.Arguments)

	toolCtx := core.NewToolContext(ctx, c.runCtx, chosen.ID, c.agent.Name())

	result, err := ht.Call(toolCtx, args)
	if err != nil {
		return nil, fmt.Errorf("handoff %s: %w", chosen.Name, err)
	}

	handoff, ok := result.(*agent.Handoff)
	if !ok {
		return nil, fmt.Errorf("handoff %s: unexpected result type %T", chosen.Name, result)
	}

	skipped := "Skipped: conversation transferred to " + handoff.Target.Name() + "."

	for _, call := range calls {
		content := skipped
		if call.ID == chosen.ID {
			content = handoff.Message
		}
		c.messages = append(c.messages, core.NewToolResultMessage(c.agent.Name(), call.ID, call.Name, content))
	}

	return &Outcome{
		Kind:          OutcomeHandoff,
		Handoff:       handoff,
		HandoffReason: agent.HandoffReason(args),
	}, nil
}

func (c *Chat) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(c.tools)+len(c.handoffs))

	for _, t := range c.agent.Tools() {
		defs = append(defs, model.NewToolDefinition(t.Name(), t.Description(), t.Parameters()))
	}

	for _, t := range c.agent.HandoffTools() {
		defs = append(defs, model.NewToolDefinition(t.Name(), t.Description(), t.Parameters()))
	}

	return defs
}

// ensureCallIDs fills in identifiers for providers that omit them so tool
// results can always be correlated with their originating call.
func ensureCallIDs(calls []core.ToolCall) []core.ToolCall {
	out := make([]core.ToolCall, len(calls))
	copy(out, calls)

	for i := range out {
		if out[i].ID == "" {
			out[i].ID = core.NewID()
		}
	}

	return out
}

// ParseArguments decodes a tool call's raw argument payload. Providers are
// inconsistent here: some send a JSON object, some send the object doubly
// encoded as a JSON string, some send nothing at all. Anything that does not
// decode to an object becomes an empty map so validation can report missing
// fields instead of the run crashing on malformed input.
func ParseArguments(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return map[string]any{}
	}

	v := gjson.Parse(raw)

	if v.Type == gjson.String {
		inner := v.String()
		if !gjson.Valid(inner) {
			return map[string]any{}
		}
		v = gjson.Parse(inner)
	}

	if !v.IsObject() {
		return map[string]any{}
	}

	args, ok := v.Value().(map[string]any)
	if !ok || args == nil {
		return map[string]any{}
	}

	return args
}
