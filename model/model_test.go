package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

func TestMockModel_ScriptedReplay(t *testing.T) {
	m := NewMockModel("test").
		EnqueueToolCalls(core.ToolCall{ID: "c1", Name: "calc", Arguments: `{"a":1}`}).
		EnqueueText("done")

	resp, err := m.Generate(context.Background(), Request{Instructions: "sys"})
	require.NoError(t, err)
	require.True(t, resp.HasToolCalls())
	assert.Equal(t, "calc", resp.ToolCalls[0].Name)
	assert.Equal(t, "tool_calls", resp.FinishReason)

	resp, err = m.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.False(t, resp.HasToolCalls())

	_, err = m.Generate(context.Background(), Request{})
	assert.Error(t, err, "queue exhausted")
}

func TestMockModel_RecordsRequests(t *testing.T) {
	m := NewMockModel("test").EnqueueText("ok")

	req := Request{
		Instructions: "be brief",
		Messages:     []core.Message{core.NewUserMessage("hi")},
		Tools:        []ToolDefinition{NewToolDefinition("calc", "Calculator", map[string]any{"type": "object"})},
	}

	_, err := m.Generate(context.Background(), req)
	require.NoError(t, err)

	requests := m.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "be brief", requests[0].Instructions)
	require.Len(t, requests[0].Tools, 1)
	assert.Equal(t, "function", requests[0].Tools[0].Type)
	assert.Equal(t, "calc", requests[0].Tools[0].Function.Name)
}

func TestMockModel_GenerateFunc(t *testing.T) {
	m := NewMockModel("test")
	m.SetGenerateFunc(func(req Request) (*Response, error) {
		return &Response{Content: req.Instructions, FinishReason: "stop"}, nil
	})

	resp, err := m.Generate(context.Background(), Request{Instructions: "echo me"})
	require.NoError(t, err)
	assert.Equal(t, "echo me", resp.Content)
}

func TestMockModel_ContextCancelled(t *testing.T) {
	m := NewMockModel("test").EnqueueText("never")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModel_Info(t *testing.T) {
	info := NewMockModel("test").Info()
	assert.Equal(t, "mock", info.Provider)
	assert.True(t, info.SupportsTools)
}
