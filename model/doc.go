// Package model defines the normalized request/response contract between the
// chat layer and language-model providers, plus adapters under model/openai,
// model/anthropic and model/gemini. A backend receives system instructions, a
// message transcript and tool schemas and answers with either final text or a
// batch of requested tool invocations; everything provider-specific stays
// inside the adapter.
package model
