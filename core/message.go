package core

import "github.com/google/uuid"

// Conversation roles. Ordering of messages within a run is append-only and
// significant; roles decide how a message is rendered for a model backend.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a single function invocation requested by a model response.
// Arguments is the raw serialized payload exactly as the provider returned it;
// normalization into a map happens at execution time.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Message is one entry of the conversation transcript.
//
// AgentName attributes assistant output to the agent that produced it, which
// matters once handoffs put several agents into one transcript. ToolCallID and
// ToolName are set on tool-result messages and correlate the result with the
// originating ToolCall so providers can line them up on the next model call.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	AgentName  string     `json:"agent_name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolName   string     `json:"tool_name,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant text message attributed to an agent.
func NewAssistantMessage(agentName, text string) Message {
	return Message{Role: RoleAssistant, Content: text, AgentName: agentName}
}

// NewToolResultMessage records the outcome of a tool call.
func NewToolResultMessage(agentName, callID, toolName, result string) Message {
	return Message{
		Role:       RoleTool,
		Content:    result,
		AgentName:  agentName,
		ToolCallID: callID,
		ToolName:   toolName,
	}
}

// HasToolCalls reports whether the message carries function call requests.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a copy with its own ToolCalls slice.
func (m Message) Clone() Message {
	c := m
	if len(m.ToolCalls) > 0 {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(c.ToolCalls, m.ToolCalls)
	}
	return c
}

// CloneMessages deep-copies a message slice.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}

// NewID generates a unique identifier for runs, tool calls and transitions.
func NewID() string { return uuid.NewString() }
