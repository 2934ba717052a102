package agent

import (
	"strings"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// HandoffToolPrefix names the synthesized transfer tools. Classification of a
// model's tool-call batch into handoff vs regular calls keys off this prefix.
const HandoffToolPrefix = "transfer_to_"

// Handoff is the value returned by executing a handoff tool. It is a signal,
// not a side effect: the tool mutates nothing, and the runner alone applies
// the agent switch, keeping single-writer discipline over the active agent.
type Handoff struct {
	Target  *Agent
	Message string
}

// HandoffToolName derives the deterministic tool name for a transfer target.
func HandoffToolName(agentName string) string {
	return HandoffToolPrefix + sanitizeToolName(agentName)
}

// IsHandoffToolName reports whether a tool-call name denotes a handoff.
func IsHandoffToolName(name string) bool {
	return strings.HasPrefix(name, HandoffToolPrefix)
}

// sanitizeToolName lowercases and normalizes an agent name into the
// snake_case identifier charset providers accept for function names.
func sanitizeToolName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// handoffTool is the synthetic transfer tool generated per handoff target.
// It closes over the target agent so executing it can return a typed Handoff
// without any registry lookup.
type handoffTool struct {
	target *Agent
}

// NewHandoffTool synthesizes the transfer tool for a target agent.
func NewHandoffTool(target *Agent) tool.Tool {
	return &handoffTool{target: target}
}

func (t *handoffTool) Name() string { return HandoffToolName(t.target.Name()) }

func (t *handoffTool) Description() string {
	return "Transfer to " + t.target.Name() + ". " + t.target.Description()
}

func (t *handoffTool) Parameters() map[string]any {
	return tool.SchemaFromParams([]tool.Param{
		{Name: "reason", Type: "string", Description: "Why the conversation is being transferred"},
	})
}

func (t *handoffTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	reason, _ := args["reason"].(string)

	toolCtx.Logger().Info(
		"handoff.request",
		"from_agent", toolCtx.AgentName(),
		"to_agent", t.target.Name(),
		"reason", reason,
		"call_id", toolCtx.CallID(),
	)

	return &Handoff{
		Target:  t.target,
		Message: "Transferred to " + t.target.Name() + ". Adopt the persona immediately.",
	}, nil
}

// HandoffReason extracts the optional reason argument from a raw handoff
// tool-call argument map.
func HandoffReason(args map[string]any) string {
	reason, _ := args["reason"].(string)
	return reason
}

// HandoffTools synthesizes the transfer tools for the agent's declared
// targets, in declaration order.
func (a *Agent) HandoffTools() []tool.Tool {
	tools := make([]tool.Tool, 0, len(a.handoffs))
	for _, target := range a.handoffs {
		tools = append(tools, NewHandoffTool(target))
	}
	return tools
}
