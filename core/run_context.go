package core

import (
	"sync"
	"time"

	"github.com/hupe1980/agentrelay/internal/util"
	"github.com/hupe1980/agentrelay/logging"
)

// Reserved keys of the serializable context map exchanged with callers.
// Everything else in the map is caller-defined shared state.
const (
	KeyConversationHistory = "conversationHistory"
	KeyCurrentAgent        = "currentAgent"
	KeyTurnCount           = "turnCount"
	KeyLastUpdated         = "lastUpdated"
)

// Transition records one handoff applied during a run.
type Transition struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RunContext is the single owner of run-scoped mutable state: the shared
// key/value data written by tools, the conversation history, the active agent
// name, the turn counter, the token usage accumulator and the transition log.
//
// Exactly one RunContext exists per run. It is constructed from a deep copy of
// the caller-supplied context map, so concurrent runs against the same agent
// and tool instances never observe each other's in-flight mutations. All
// methods are safe for concurrent use; within a run that matters only when
// regular tool calls of one turn execute in parallel.
type RunContext struct {
	mu           sync.RWMutex
	runID        string
	data         map[string]any
	history      []Message
	currentAgent string
	turnCount    int
	usage        Usage
	transitions  []Transition

	*loggerAdapter
}

// NewRunContext builds a fresh run context from the caller-supplied context
// map. Reserved keys are lifted into their typed fields; user-defined keys are
// deep-copied into the shared data map. The persisted turn count is metadata
// of the previous run and is not restored: each run starts counting at zero.
func NewRunContext(seed map[string]any, logger logging.Logger) *RunContext {
	rc := &RunContext{
		runID:         NewID(),
		data:          map[string]any{},
		loggerAdapter: newLoggerAdapter(logger),
	}

	for k, v := range seed {
		switch k {
		case KeyConversationHistory:
			rc.history = decodeHistory(v)
		case KeyCurrentAgent:
			if name, ok := v.(string); ok {
				rc.currentAgent = name
			}
		case KeyTurnCount, KeyLastUpdated:
			// Informational leftovers from the previous run.
		default:
			rc.data[k] = util.DeepCopy(v)
		}
	}

	return rc
}

// RunID returns the unique identifier of this run.
func (rc *RunContext) RunID() string { return rc.runID }

// Get returns the value stored under a user-defined key.
func (rc *RunContext) Get(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	v, ok := rc.data[key]
	return v, ok
}

// Set stores a value under a user-defined key.
func (rc *RunContext) Set(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.data[key] = value
}

// Delete removes a user-defined key.
func (rc *RunContext) Delete(key string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	delete(rc.data, key)
}

// Data returns a deep copy of the user-defined shared state, suitable for
// template rendering or inspection without holding the context lock.
func (rc *RunContext) Data() map[string]any {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return util.DeepCopyMap(rc.data)
}

// Keys returns the user-defined keys currently present.
func (rc *RunContext) Keys() []string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	keys := make([]string, 0, len(rc.data))
	for k := range rc.data {
		keys = append(keys, k)
	}
	return keys
}

// History returns a defensive copy of the conversation history.
func (rc *RunContext) History() []Message {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return CloneMessages(rc.history)
}

// SetHistory replaces the conversation history with a copy of msgs. The runner
// calls this at every turn boundary when checkpointing session state.
func (rc *RunContext) SetHistory(msgs []Message) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.history = CloneMessages(msgs)
}

// CurrentAgent returns the name of the active agent, or "" if unset.
func (rc *RunContext) CurrentAgent() string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.currentAgent
}

// SetCurrentAgent records the active agent. Only the runner writes this.
func (rc *RunContext) SetCurrentAgent(name string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.currentAgent = name
}

// TurnCount returns the number of model round-trips consumed so far.
func (rc *RunContext) TurnCount() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.turnCount
}

// IncrementTurn advances the turn counter and returns the new value.
func (rc *RunContext) IncrementTurn() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.turnCount++
	return rc.turnCount
}

// AddUsage sums a model call's token counts into the run accumulator.
func (rc *RunContext) AddUsage(delta Usage) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.usage.Add(delta)
}

// Usage returns the accumulated token usage.
func (rc *RunContext) Usage() Usage {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.usage
}

// RecordTransition appends a handoff record to the transition log.
func (rc *RunContext) RecordTransition(from, to, reason string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.transitions = append(rc.transitions, Transition{
		From:      from,
		To:        to,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	})
}

// Transitions returns a copy of the transition log.
func (rc *RunContext) Transitions() []Transition {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	out := make([]Transition, len(rc.transitions))
	copy(out, rc.transitions)
	return out
}

// Snapshot serializes the run state back into a context map the caller can
// persist and pass to a later run to continue the conversation.
func (rc *RunContext) Snapshot() map[string]any {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	snap := make(map[string]any, len(rc.data)+4)
	for k, v := range rc.data {
		snap[k] = util.DeepCopy(v)
	}
	snap[KeyConversationHistory] = CloneMessages(rc.history)
	if rc.currentAgent != "" {
		snap[KeyCurrentAgent] = rc.currentAgent
	}
	snap[KeyTurnCount] = rc.turnCount
	snap[KeyLastUpdated] = time.Now().UTC()

	return snap
}

// decodeHistory tolerates the two shapes history arrives in: the native
// []Message produced by Snapshot, and the []any of maps produced when a caller
// round-trips the context map through JSON.
func decodeHistory(v any) []Message {
	switch h := v.(type) {
	case []Message:
		return CloneMessages(h)
	case []any:
		msgs := make([]Message, 0, len(h))
		for _, item := range h {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			msgs = append(msgs, decodeMessage(m))
		}
		return msgs
	default:
		return nil
	}
}

func decodeMessage(m map[string]any) Message {
	msg := Message{}
	if s, ok := m["role"].(string); ok {
		msg.Role = s
	}
	if s, ok := m["content"].(string); ok {
		msg.Content = s
	}
	if s, ok := m["agent_name"].(string); ok {
		msg.AgentName = s
	}
	if s, ok := m["tool_call_id"].(string); ok {
		msg.ToolCallID = s
	}
	if s, ok := m["tool_name"].(string); ok {
		msg.ToolName = s
	}
	if calls, ok := m["tool_calls"].([]any); ok {
		for _, c := range calls {
			cm, ok := c.(map[string]any)
			if !ok {
				continue
			}
			tc := ToolCall{}
			if s, ok := cm["id"].(string); ok {
				tc.ID = s
			}
			if s, ok := cm["name"].(string); ok {
				tc.Name = s
			}
			if s, ok := cm["arguments"].(string); ok {
				tc.Arguments = s
			}
			msg.ToolCalls = append(msg.ToolCalls, tc)
		}
	}
	return msg
}
