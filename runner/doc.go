// Package runner drives complete conversation runs: it resolves the active
// agent from persisted state, loops model round-trips against a chat session,
// applies handoffs, enforces the turn budget and checkpoints the context map
// at every turn boundary so callers can persist and resume conversations.
package runner
