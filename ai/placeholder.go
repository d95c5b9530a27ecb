package ai

import (
	"context"
	"strings"
	"time"
)

// Placeholder is a mock LLM provider for development. It answers each
// pipeline stage with a canned response keyed off the system prompt, so
// the full pipeline can be exercised without credentials (the generated
// SQL is a harmless SELECT 1).
type Placeholder struct{}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Simulate network latency
	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	switch {
	case strings.Contains(systemPrompt, "syntactically correct SQL"):
		return "SELECT 1 AS placeholder", nil
	case strings.Contains(systemPrompt, "natural-language answers"):
		return "🤖 [Placeholder AI] This is a canned answer. Configure a real provider (OpenAI, Anthropic, Gemini, Ollama) to interpret actual results.", nil
	case strings.Contains(systemPrompt, "explains how"):
		return "🤖 [Placeholder AI] The query selects a constant; with a real provider this would walk through the joins, filters and aggregations.", nil
	default:
		return "🤖 [Placeholder AI] Canned response for: " + truncate(userPrompt, 80), nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
