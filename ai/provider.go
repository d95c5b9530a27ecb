// Package ai defines the interface for LLM providers and the
// implementations the pipeline can run against.
//
// Design decisions:
//   - Provider is an interface so we can swap backends (OpenAI, Anthropic,
//     Gemini, Ollama) without changing pipeline code.
//   - Every stage of the pipeline is a single (system, user) completion;
//     conversation history is folded into the user prompt by the caller,
//     so providers stay stateless.
//   - All methods accept context for cancellation.
//   - The placeholder provider returns canned responses for development
//     and tests.
package ai

import (
	"context"
)

// Provider is the interface all LLM backends must implement.
type Provider interface {
	// Complete sends a system prompt and a user prompt and returns the
	// model's text completion.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Name returns the provider name for display and logging.
	Name() string
}
