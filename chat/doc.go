// Package chat implements the per-agent conversation session: it owns the
// message list for as long as one agent remains active, dispatches model
// calls, classifies returned tool calls into handoff vs regular, executes
// regular tools and reports handoffs upward as signals.
//
// A Chat never switches agents itself. Each Step is exactly one model
// round-trip, which is the unit the runner's turn budget counts.
package chat
