// Package agent defines the immutable agent record (name, instructions, model
// binding, tools, handoff targets), the handoff protocol that represents
// agent-to-agent transfers as synthesized tools, and the registry built by
// walking the handoff graph from an entry agent.
//
// Agents are composed once at process start and shared across concurrent
// runs; all per-run state lives in core.RunContext. Mutually recursive
// handoff graphs are wired in two phases: construct the agents, then call
// RegisterHandoffs before the first run.
package agent
