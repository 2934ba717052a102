package store

import (
	"context"
	"sync"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/util"
)

// ContextStore persists the context map of a conversation between runs.
type ContextStore interface {
	// Load returns the persisted context map for a conversation, or an
	// empty map for an unknown conversation.
	Load(ctx context.Context, conversationID string) (map[string]any, error)

	// Save replaces the persisted context map for a conversation.
	Save(ctx context.Context, conversationID string, contextMap map[string]any) error

	// Delete forgets a conversation.
	Delete(ctx context.Context, conversationID string) error
}

// InMemoryStore is a volatile ContextStore keeping context maps in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo processes. Maps are deep-copied on both store and load so
// callers can never mutate internal state through a retained reference.
type InMemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]map[string]any
}

// NewInMemoryStore constructs an empty in-memory context store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{contexts: make(map[string]map[string]any)}
}

// Load implements ContextStore.
func (s *InMemoryStore) Load(_ context.Context, conversationID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cm, ok := s.contexts[conversationID]; ok {
		return cloneContextMap(cm), nil
	}

	return map[string]any{}, nil
}

// Save implements ContextStore.
func (s *InMemoryStore) Save(_ context.Context, conversationID string, contextMap map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts[conversationID] = cloneContextMap(contextMap)

	return nil
}

// cloneContextMap deep-copies a context map. The conversation history value
// is a []core.Message, which the generic copier would alias, so it is cloned
// explicitly.
func cloneContextMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if msgs, ok := v.([]core.Message); ok {
			out[k] = core.CloneMessages(msgs)
			continue
		}
		out[k] = util.DeepCopy(v)
	}
	return out
}

// Delete implements ContextStore.
func (s *InMemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.contexts, conversationID)

	return nil
}

// Len returns the number of stored conversations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.contexts)
}
