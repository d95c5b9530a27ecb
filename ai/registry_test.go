package ai

import (
	"context"
	"testing"

	"github.com/DachengChen/paiChat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDefaultsToPlaceholder(t *testing.T) {
	p, err := NewProvider(config.AIConfig{})
	require.NoError(t, err)
	assert.Equal(t, "placeholder", p.Name())
}

func TestNewProviderRequiresKeys(t *testing.T) {
	_, err := NewProvider(config.AIConfig{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewProvider(config.AIConfig{Provider: "anthropic"})
	assert.Error(t, err)

	_, err = NewProvider(config.AIConfig{Provider: "nope"})
	assert.Error(t, err)
}

func TestPlaceholderAnswersEachStage(t *testing.T) {
	p := NewPlaceholder()
	ctx := context.Background()

	sql, err := p.Complete(ctx, "You write syntactically correct SQL.", "q")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 AS placeholder", sql)

	answer, err := p.Complete(ctx, "You convert results into natural-language answers.", "q")
	require.NoError(t, err)
	assert.Contains(t, answer, "Placeholder")
}

func TestPlaceholderHonorsCancellation(t *testing.T) {
	p := NewPlaceholder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Complete(ctx, "system", "user")
	assert.ErrorIs(t, err, context.Canceled)
}
