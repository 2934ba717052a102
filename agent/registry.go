package agent

import (
	"fmt"
	"sort"
)

// Registry resolves a handoff target name to a live Agent without
// re-traversing the handoff graph on every call. It is built once per runner
// composition and read-only afterward, so lookups need no locking.
type Registry struct {
	entry  *Agent
	agents map[string]*Agent
}

// BuildRegistry discovers every agent reachable from entry by depth-first
// traversal over handoff targets. A visited set keyed by agent identity makes
// cyclic graphs (triage <-> billing) safe. Two distinct agents sharing one
// name would make handoff resolution ambiguous, so duplicates are rejected at
// build time instead of silently overwriting.
func BuildRegistry(entry *Agent) (*Registry, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry agent must not be nil")
	}

	r := &Registry{
		entry:  entry,
		agents: map[string]*Agent{},
	}

	visited := map[*Agent]bool{}
	if err := r.discover(entry, visited); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) discover(a *Agent, visited map[*Agent]bool) error {
	if visited[a] {
		return nil
	}
	visited[a] = true

	if existing, ok := r.agents[a.Name()]; ok && existing != a {
		return fmt.Errorf("duplicate agent name %q in handoff graph", a.Name())
	}
	r.agents[a.Name()] = a

	for _, target := range a.Handoffs() {
		if target == nil {
			return fmt.Errorf("agent %s declares a nil handoff target", a.Name())
		}
		if err := r.discover(target, visited); err != nil {
			return err
		}
	}

	return nil
}

// Entry returns the designated starting agent.
func (r *Registry) Entry() *Agent { return r.entry }

// Resolve looks up an agent by name.
func (r *Registry) Resolve(name string) (*Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.agents) }

// Names returns the registered agent names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
