package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[llm]
provider = "openai"
model = "gpt-4o-mini"
embedding_model = "text-embedding-3-small"

[qdrant]
host = "qdrant.internal"
port = 6334
collection = "icd_custom"

[coding]
default_limit = 10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, "icd_custom", cfg.Qdrant.Collection)
	assert.Equal(t, 10, cfg.Coding.DefaultLimit)
	// Unset keys keep their defaults.
	assert.Equal(t, 50, cfg.Coding.MaxLimit)
	assert.Equal(t, 5, cfg.Coding.MaxSubQueries)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("QDRANT_HOST", "10.0.0.7")
	t.Setenv("QDRANT_PORT", "7443")
	t.Setenv("QDRANT_COLLECTION", "icd_minilm")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "10.0.0.7", cfg.Qdrant.Host)
	assert.Equal(t, 7443, cfg.Qdrant.Port)
	assert.Equal(t, "icd_minilm", cfg.Qdrant.Collection)
}

func TestApplyEnv_IgnoresBadPort(t *testing.T) {
	t.Setenv("QDRANT_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 6334, cfg.Qdrant.Port)
}
