package coding

import "errors"

// Sentinel errors classifying every failure the suggestion pipeline can
// surface. Wrap them with fmt.Errorf("%w: ...") so errors.Is keeps working
// across layers.
var (
	// ErrInvalidInput marks a request the caller must change before
	// retrying (empty text, negative limit).
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbedding marks an embedding model that is unavailable or failed
	// to encode; retryable once the backend recovers.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexUnavailable marks a missing collection or unreachable vector
	// index. Kept distinct from an empty result on purpose: "no matches"
	// is a successful outcome, this is an operator problem.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrSuggestion marks an aggregate failure where every sub-query
	// failed; it wraps the first underlying cause.
	ErrSuggestion = errors.New("suggestion failed")
)

// Kind maps a classified error to its machine-readable kind for the
// response envelope. More specific kinds win over the aggregate one, so a
// missing collection reports index_unavailable even when wrapped by
// ErrSuggestion.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrIndexUnavailable):
		return "index_unavailable"
	case errors.Is(err, ErrEmbedding):
		return "embedding_error"
	case errors.Is(err, ErrSuggestion):
		return "suggestion_error"
	default:
		return "internal"
	}
}
