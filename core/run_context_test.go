package core

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/logging"
)

func TestNewRunContext_SeedIsolation(t *testing.T) {
	seed := map[string]any{
		"customer": map[string]any{"id": "c-1", "tier": "gold"},
	}

	rc := NewRunContext(seed, logging.NoOpLogger{})

	// Mutating the caller's map after construction must not leak in.
	seed["customer"].(map[string]any)["tier"] = "bronze"

	v, ok := rc.Get("customer")
	require.True(t, ok)
	assert.Equal(t, "gold", v.(map[string]any)["tier"])
}

func TestNewRunContext_ReservedKeys(t *testing.T) {
	seed := map[string]any{
		KeyConversationHistory: []Message{NewUserMessage("hi"), NewAssistantMessage("A", "hello")},
		KeyCurrentAgent:        "Billing",
		KeyTurnCount:           7,
		"plain":                "value",
	}

	rc := NewRunContext(seed, logging.NoOpLogger{})

	assert.Len(t, rc.History(), 2)
	assert.Equal(t, "Billing", rc.CurrentAgent())
	assert.Equal(t, 0, rc.TurnCount(), "turn count is per-run, never restored")

	_, ok := rc.Get(KeyCurrentAgent)
	assert.False(t, ok, "reserved keys are not user data")

	v, ok := rc.Get("plain")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestNewRunContext_HistoryFromJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]any{
		KeyConversationHistory: []Message{
			NewUserMessage("question"),
			{Role: RoleAssistant, AgentName: "A", ToolCalls: []ToolCall{{ID: "c1", Name: "calc", Arguments: `{"a":1}`}}},
		},
	})
	require.NoError(t, err)

	var seed map[string]any
	require.NoError(t, json.Unmarshal(raw, &seed))

	rc := NewRunContext(seed, logging.NoOpLogger{})

	history := rc.History()
	require.Len(t, history, 2)
	assert.Equal(t, "question", history[0].Content)
	require.Len(t, history[1].ToolCalls, 1)
	assert.Equal(t, "calc", history[1].ToolCalls[0].Name)
	assert.Equal(t, `{"a":1}`, history[1].ToolCalls[0].Arguments)
}

func TestRunContext_Snapshot(t *testing.T) {
	rc := NewRunContext(map[string]any{"user": "sam"}, logging.NoOpLogger{})
	rc.SetCurrentAgent("Support")
	rc.SetHistory([]Message{NewUserMessage("hi")})
	rc.IncrementTurn()
	rc.IncrementTurn()

	snap := rc.Snapshot()

	assert.Equal(t, "sam", snap["user"])
	assert.Equal(t, "Support", snap[KeyCurrentAgent])
	assert.Equal(t, 2, snap[KeyTurnCount])
	assert.Contains(t, snap, KeyLastUpdated)

	history, ok := snap[KeyConversationHistory].([]Message)
	require.True(t, ok)
	assert.Len(t, history, 1)
}

func TestRunContext_HistoryCopies(t *testing.T) {
	rc := NewRunContext(nil, logging.NoOpLogger{})
	rc.SetHistory([]Message{NewUserMessage("hi")})

	h := rc.History()
	h[0].Content = "mutated"

	assert.Equal(t, "hi", rc.History()[0].Content)
}

func TestRunContext_Usage(t *testing.T) {
	rc := NewRunContext(nil, logging.NoOpLogger{})
	rc.AddUsage(Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	rc.AddUsage(Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3})

	assert.Equal(t, Usage{InputTokens: 11, OutputTokens: 7, TotalTokens: 18}, rc.Usage())
}

func TestRunContext_Transitions(t *testing.T) {
	rc := NewRunContext(nil, logging.NoOpLogger{})
	rc.RecordTransition("Triage", "Billing", "invoice question")

	transitions := rc.Transitions()
	require.Len(t, transitions, 1)
	assert.Equal(t, "Triage", transitions[0].From)
	assert.Equal(t, "Billing", transitions[0].To)
	assert.Equal(t, "invoice question", transitions[0].Reason)
	assert.False(t, transitions[0].Timestamp.IsZero())
}

func TestRunContext_ConcurrentAccess(t *testing.T) {
	rc := NewRunContext(nil, logging.NoOpLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			rc.Set("shared", n)
			rc.Get("shared")
			rc.IncrementTurn()
			rc.AddUsage(Usage{TotalTokens: 1})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 16, rc.TurnCount())
	assert.Equal(t, 16, rc.Usage().TotalTokens)
}
