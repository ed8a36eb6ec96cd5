package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinvec/clinvec/internal/config"
)

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, _, err := NewClient(context.Background(), config.LLMConfig{Provider: "watson"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "watson")
}

func TestNewClient_OpenAI(t *testing.T) {
	gen, emb, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.NotNil(t, gen)
	assert.NotNil(t, emb)
}

func TestNewClient_ClaudeHasNoEmbedder(t *testing.T) {
	gen, emb, err := NewClient(context.Background(), config.LLMConfig{
		Provider: "claude",
		APIKey:   "sk-ant-test",
		Model:    "claude-sonnet-4-20250514",
	})
	require.NoError(t, err)
	assert.NotNil(t, gen)
	assert.Nil(t, emb)
}

func TestOllamaBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:11434/v1", ollamaBaseURL(""))
	assert.Equal(t, "http://gpu-box:11434/v1", ollamaBaseURL("http://gpu-box:11434"))
	assert.Equal(t, "http://gpu-box:11434/v1", ollamaBaseURL("http://gpu-box:11434/"))
	assert.Equal(t, "http://gpu-box:11434/v1", ollamaBaseURL("http://gpu-box:11434/v1"))
}
