package agentrelay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/model"
)

func TestChat_ContinuesConversation(t *testing.T) {
	llm := model.NewMockModel("m").
		EnqueueText("Hi Sam!").
		EnqueueText("You told me your name is Sam.")

	assistant := agent.MustNew("Assistant", llm)

	relay, err := New(assistant)
	require.NoError(t, err)

	first, err := relay.Chat(context.Background(), "conv-1", "My name is Sam.")
	require.NoError(t, err)
	assert.Equal(t, "Hi Sam!", first.Output)

	second, err := relay.Chat(context.Background(), "conv-1", "What is my name?")
	require.NoError(t, err)
	assert.Equal(t, "You told me your name is Sam.", second.Output)

	// The second request carried the restored transcript.
	requests := llm.Requests()
	require.Len(t, requests, 2)
	assert.Len(t, requests[1].Messages, 3)
}

func TestChat_ConversationsAreIndependent(t *testing.T) {
	llm := model.NewMockModel("m")
	llm.SetGenerateFunc(func(req model.Request) (*model.Response, error) {
		return &model.Response{Content: "ok", FinishReason: "stop"}, nil
	})

	relay, err := New(agent.MustNew("Assistant", llm))
	require.NoError(t, err)

	_, err = relay.Chat(context.Background(), "conv-a", "hello from a")
	require.NoError(t, err)

	_, err = relay.Chat(context.Background(), "conv-b", "hello from b")
	require.NoError(t, err)

	requests := llm.Requests()
	require.Len(t, requests, 2)
	assert.Len(t, requests[1].Messages, 1, "fresh conversation starts empty")
}

func TestChat_HandoffStickiness(t *testing.T) {
	billingLLM := model.NewMockModel("billing").
		EnqueueText("Refund issued.").
		EnqueueText("Anything else about billing?")
	billing := agent.MustNew("Billing", billingLLM)

	triageLLM := model.NewMockModel("triage").
		EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "transfer_to_billing", Arguments: `{"reason":"refund"}`})
	triage := agent.MustNew("Triage", triageLLM, func(o *agent.Options) {
		o.Handoffs = []*agent.Agent{billing}
	})

	relay, err := New(triage)
	require.NoError(t, err)

	first, err := relay.Chat(context.Background(), "conv-1", "I want a refund")
	require.NoError(t, err)
	assert.Equal(t, "Billing", first.FinalAgent)

	// The next message goes straight to the specialist.
	second, err := relay.Chat(context.Background(), "conv-1", "thanks, one more thing")
	require.NoError(t, err)
	assert.Equal(t, "Billing", second.FinalAgent)
	assert.Len(t, triageLLM.Requests(), 1)
}

func TestReset(t *testing.T) {
	llm := model.NewMockModel("m")
	llm.SetGenerateFunc(func(req model.Request) (*model.Response, error) {
		return &model.Response{Content: "ok", FinishReason: "stop"}, nil
	})

	relay, err := New(agent.MustNew("Assistant", llm))
	require.NoError(t, err)

	_, err = relay.Chat(context.Background(), "conv-1", "remember this")
	require.NoError(t, err)

	require.NoError(t, relay.Reset(context.Background(), "conv-1"))

	_, err = relay.Chat(context.Background(), "conv-1", "what did I say?")
	require.NoError(t, err)

	requests := llm.Requests()
	assert.Len(t, requests[len(requests)-1].Messages, 1, "reset forgets the transcript")
}
