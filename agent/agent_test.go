package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/tool"
)

func newTestRunContext() *core.RunContext {
	return core.NewRunContext(nil, logging.NoOpLogger{})
}

func TestNew_Defaults(t *testing.T) {
	a, err := New("Helper", model.NewMockModel("m"))
	require.NoError(t, err)

	assert.Equal(t, "Helper", a.Name())
	assert.Equal(t, "Agent Helper", a.Description())

	instructions, err := a.Instruction().Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Contains(t, instructions, "Helper")
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", model.NewMockModel("m"))
	assert.Error(t, err)

	_, err = New("NoModel", nil)
	assert.Error(t, err)

	_, err = New("NilTool", model.NewMockModel("m"), func(o *Options) {
		o.Tools = []tool.Tool{nil}
	})
	assert.Error(t, err)
}

func TestAgent_ToolsAreCopied(t *testing.T) {
	echo := tool.NewFunctionToolFromParams("echo", "Echo",
		[]tool.Param{{Name: "text", Type: "string", Required: true}},
		func(_ *core.ToolContext, args map[string]any) (any, error) { return args["text"], nil },
	)

	a := MustNew("Helper", model.NewMockModel("m"), func(o *Options) {
		o.Tools = []tool.Tool{echo}
	})

	tools := a.Tools()
	tools[0] = nil
	require.NotNil(t, a.Tools()[0])

	found := a.FindTool("echo")
	require.NotNil(t, found)
	assert.Equal(t, "echo", found.Name())

	assert.Nil(t, a.FindTool("missing"))
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	assert.True(t, inst.IsStatic())

	got, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "static instruction", got)
}

func TestInstruction_Template(t *testing.T) {
	inst := NewInstructionFromText("Help {{.customerName}} with their account.")

	runCtx := core.NewRunContext(map[string]any{"customerName": "Sam"}, logging.NoOpLogger{})

	got, err := inst.Resolve(runCtx)
	require.NoError(t, err)
	assert.Equal(t, "Help Sam with their account.", got)
}

func TestInstruction_FromFunc(t *testing.T) {
	inst := NewInstructionFromFunc(func(runCtx *core.RunContext) (string, error) {
		return "dynamic via func", nil
	})
	assert.False(t, inst.IsStatic())

	got, err := inst.Resolve(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "dynamic via func", got)
}

func TestInstruction_ErrorPropagation(t *testing.T) {
	wantErr := errors.New("resolution failed")
	inst := NewInstructionFromFunc(func(runCtx *core.RunContext) (string, error) {
		return "", wantErr
	})

	_, err := inst.Resolve(newTestRunContext())
	assert.ErrorIs(t, err, wantErr)
}

func TestHandoffToolName(t *testing.T) {
	assert.Equal(t, "transfer_to_billing", HandoffToolName("Billing"))
	assert.Equal(t, "transfer_to_flight_booking", HandoffToolName("Flight Booking"))
	assert.Equal(t, "transfer_to_tier_2_support", HandoffToolName("Tier-2 Support"))

	assert.True(t, IsHandoffToolName("transfer_to_billing"))
	assert.False(t, IsHandoffToolName("get_weather"))
}

func TestHandoffTool_Call(t *testing.T) {
	target := MustNew("Billing", model.NewMockModel("m"))
	ht := NewHandoffTool(target)

	assert.Equal(t, "transfer_to_billing", ht.Name())

	runCtx := newTestRunContext()
	toolCtx := core.NewToolContext(context.Background(), runCtx, "call-1", "Triage")

	result, err := ht.Call(toolCtx, map[string]any{"reason": "invoice question"})
	require.NoError(t, err)

	handoff, ok := result.(*Handoff)
	require.True(t, ok)
	assert.Same(t, target, handoff.Target)
	assert.Contains(t, handoff.Message, "Billing")
}

func TestAgent_HandoffTools(t *testing.T) {
	billing := MustNew("Billing", model.NewMockModel("m"))
	support := MustNew("Support", model.NewMockModel("m"))

	triage := MustNew("Triage", model.NewMockModel("m"), func(o *Options) {
		o.Handoffs = []*Agent{billing, support}
	})

	tools := triage.HandoffTools()
	require.Len(t, tools, 2)
	assert.Equal(t, "transfer_to_billing", tools[0].Name())
	assert.Equal(t, "transfer_to_support", tools[1].Name())
}

func TestBuildRegistry(t *testing.T) {
	billing := MustNew("Billing", model.NewMockModel("m"))
	support := MustNew("Support", model.NewMockModel("m"))

	triage := MustNew("Triage", model.NewMockModel("m"), func(o *Options) {
		o.Handoffs = []*Agent{billing, support}
	})

	// Cycle back to triage must not loop discovery.
	billing.RegisterHandoffs(triage)
	support.RegisterHandoffs(triage)

	reg, err := BuildRegistry(triage)
	require.NoError(t, err)

	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, []string{"Billing", "Support", "Triage"}, reg.Names())
	assert.Same(t, triage, reg.Entry())

	resolved, ok := reg.Resolve("Billing")
	require.True(t, ok)
	assert.Same(t, billing, resolved)

	_, ok = reg.Resolve("Unknown")
	assert.False(t, ok)
}

func TestBuildRegistry_DuplicateNames(t *testing.T) {
	a := MustNew("Specialist", model.NewMockModel("m"))
	b := MustNew("Specialist", model.NewMockModel("m"))

	entry := MustNew("Entry", model.NewMockModel("m"), func(o *Options) {
		o.Handoffs = []*Agent{a, b}
	})

	_, err := BuildRegistry(entry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate agent name")
}

func TestBuildRegistry_NilEntry(t *testing.T) {
	_, err := BuildRegistry(nil)
	assert.Error(t, err)
}
