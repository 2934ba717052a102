package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentrelay/core"
)

// Interface compliance (compile-time assertion)
var _ ContextStore = (*InMemoryStore)(nil)

func TestInMemoryStore_LoadUnknown(t *testing.T) {
	s := NewInMemoryStore()

	cm, err := s.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, cm)
	assert.NotNil(t, cm)
}

func TestInMemoryStore_SaveLoadDelete(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.Save(context.Background(), "conv-1", map[string]any{"user": "sam"}))
	assert.Equal(t, 1, s.Len())

	cm, err := s.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "sam", cm["user"])

	require.NoError(t, s.Delete(context.Background(), "conv-1"))
	assert.Equal(t, 0, s.Len())
}

func TestInMemoryStore_CopiesOnBothSides(t *testing.T) {
	s := NewInMemoryStore()

	original := map[string]any{"nested": map[string]any{"k": "v"}}
	require.NoError(t, s.Save(context.Background(), "conv-1", original))

	// Mutating the caller's map after Save must not affect the store.
	original["nested"].(map[string]any)["k"] = "mutated"

	cm, err := s.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "v", cm["nested"].(map[string]any)["k"])

	// Mutating a loaded map must not affect subsequent loads.
	cm["nested"].(map[string]any)["k"] = "mutated"

	again, err := s.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "v", again["nested"].(map[string]any)["k"])
}

func TestInMemoryStore_CopiesMessageSlices(t *testing.T) {
	s := NewInMemoryStore()

	msgs := []core.Message{core.NewUserMessage("original")}
	require.NoError(t, s.Save(context.Background(), "conv-1", map[string]any{"history": msgs}))

	// Mutating the caller's slice after Save must not affect the store.
	msgs[0].Content = "mutated"

	cm, err := s.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	loaded, ok := cm["history"].([]core.Message)
	require.True(t, ok)
	require.Len(t, loaded, 1)
	assert.Equal(t, "original", loaded[0].Content)

	// Mutating a loaded slice must not affect subsequent loads.
	loaded[0].Content = "mutated"

	again, err := s.Load(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again["history"].([]core.Message)[0].Content)
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewInMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = s.Save(context.Background(), "conv-1", map[string]any{"n": n})
			_, _ = s.Load(context.Background(), "conv-1")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, s.Len())
}
