// Package core contains the shared data model of AgentRelay: conversation
// messages, tool-call payloads, token usage accounting and the per-run
// execution context passed between the runner, chat sessions and tools.
//
// Everything in this package is either an immutable value type (Message,
// ToolCall, Transition) or an explicitly synchronized per-run container
// (RunContext, ToolContext). Agent definitions, tools and model bindings live
// in their own packages and depend on core; core depends on nothing above it.
package core
