package llm

import (
	"context"
)

// LLMClient generates a free-text completion for a prompt. The coding
// pipeline uses it only for optional query decomposition.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient maps text to a fixed-dimension dense vector. For a given
// provider and embedding model the output is deterministic; the vector
// length is constant for the life of the client.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
