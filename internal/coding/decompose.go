package coding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clinvec/clinvec/internal/llm"
)

// DefaultMaxSubQueries bounds decomposition fan-out: each sub-query costs
// one embedding call and one index search.
const DefaultMaxSubQueries = 5

// Decomposer splits free clinical text into independently searchable
// phrases. Implementations never fail: when decomposition is impossible the
// trimmed input comes back as a single-element slice.
type Decomposer interface {
	Decompose(ctx context.Context, text string) []string
}

// IdentityDecomposer is the default, safe path: the whole narrative is one
// query.
type IdentityDecomposer struct{}

func (IdentityDecomposer) Decompose(_ context.Context, text string) []string {
	return []string{strings.TrimSpace(text)}
}

const decomposePrompt = `You are a certified ICD-10 coding specialist.

From the clinical text below, extract the distinct diagnostic entities that
would be coded in ICD-10.

Guidelines:
1. Use official ICD-10 terminology (e.g., "Calculus of gallbladder", "Fatty liver").
2. Merge related findings that describe a single condition into one canonical phrase.
3. Exclude duplicates, general organ descriptions, and non-diagnostic qualifiers.
4. Output only the phrases, one per line, no numbering or bullets.

Clinical text:
%s
`

// LLMDecomposer asks a language model for one diagnostic phrase per
// condition. Any failure on the LLM path degrades to the identity result:
// code suggestion stays available without the optional enhancement.
type LLMDecomposer struct {
	LLM    llm.LLMClient
	MaxSub int
	Log    *slog.Logger
}

func NewLLMDecomposer(client llm.LLMClient, maxSub int, logger *slog.Logger) *LLMDecomposer {
	if maxSub <= 0 {
		maxSub = DefaultMaxSubQueries
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMDecomposer{LLM: client, MaxSub: maxSub, Log: logger}
}

func (d *LLMDecomposer) Decompose(ctx context.Context, text string) []string {
	fallback := []string{strings.TrimSpace(text)}
	if d.LLM == nil {
		return fallback
	}

	resp, err := d.LLM.Generate(ctx, fmt.Sprintf(decomposePrompt, text))
	if err != nil {
		d.Log.Warn("query decomposition failed, using whole text", "err", err)
		return fallback
	}

	queries := parsePhrases(resp, d.MaxSub)
	if len(queries) == 0 {
		d.Log.Warn("query decomposition returned no phrases, using whole text")
		return fallback
	}
	return queries
}

// parsePhrases extracts up to max trimmed phrases from an LLM response, one
// per line, dropping empties and case-insensitive duplicates while
// preserving the model's ordering.
func parsePhrases(resp string, max int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(resp, "\n") {
		phrase := strings.TrimSpace(line)
		phrase = strings.TrimLeft(phrase, "-•* \t")
		phrase = strings.TrimRight(strings.TrimSpace(phrase), ".")
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		key := strings.ToLower(phrase)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, phrase)
		if len(out) == max {
			break
		}
	}
	return out
}
