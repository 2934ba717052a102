// Package store persists conversation context maps between runs. The runner
// checkpoints a serializable map per run; a ContextStore keeps one such map
// per conversation so multi-run conversations can resume where they stopped.
package store
