package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/tool"
)

// batchExecutor runs a batch of regular tool calls and returns their string
// results aligned with the request order. Failures never propagate as
// errors; they surface as error-text results the model can react to.
type batchExecutor struct {
	parallel    bool
	maxParallel int
}

func (e *batchExecutor) Run(ctx context.Context, runCtx *core.RunContext, agentName string, tools map[string]tool.Tool, calls []core.ToolCall) []string {
	if e.parallel && len(calls) > 1 {
		return e.runParallel(ctx, runCtx, agentName, tools, calls)
	}

	results := make([]string, len(calls))
	for i, call := range calls {
		results[i] = executeCall(ctx, runCtx, agentName, tools, call)
	}

	return results
}

func (e *batchExecutor) runParallel(ctx context.Context, runCtx *core.RunContext, agentName string, tools map[string]tool.Tool, calls []core.ToolCall) []string {
	size := len(calls)
	if e.maxParallel > 0 && e.maxParallel < size {
		size = e.maxParallel
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		results := make([]string, len(calls))
		for i, call := range calls {
			results[i] = executeCall(ctx, runCtx, agentName, tools, call)
		}
		return results
	}
	defer pool.Release()

	results := make([]string, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)

		i, call := i, call
		if submitErr := pool.Submit(func() {
			defer wg.Done()
			results[i] = executeCall(ctx, runCtx, agentName, tools, call)
		}); submitErr != nil {
			results[i] = executeCall(ctx, runCtx, agentName, tools, call)
			wg.Done()
		}
	}
	wg.Wait()

	return results
}

func executeCall(ctx context.Context, runCtx *core.RunContext, agentName string, tools map[string]tool.Tool, call core.ToolCall) string {
	t, ok := tools[call.Name]
	if !ok {
		return tool.DefaultErrorResult(call.Name, fmt.Errorf("tool %q not found", call.Name))
	}

	toolCtx := core.NewToolContext(ctx, runCtx, call.ID, agentName)

	return tool.Execute(t, toolCtx, ParseArguments(call.Arguments))
}
