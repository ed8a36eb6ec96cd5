package coding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clinvec/clinvec/internal/llm"
)

const (
	// DefaultLimit is used when the caller does not request a limit.
	DefaultLimit = 5
	// MaxLimit bounds response size and index fan-out; larger requests are
	// clamped, not rejected.
	MaxLimit = 50

	defaultTimeout = 30 * time.Second
	searchFanOut   = 4
)

// Searcher performs a top-k similarity query against the vector index.
// Results come back ordered by descending score. A missing collection or
// unreachable index must surface as ErrIndexUnavailable, never as an empty
// list.
type Searcher interface {
	Search(ctx context.Context, vector []float32, limit int) ([]Candidate, error)
}

// InitFunc builds the embedding client and index client. The service calls
// it at most once, on first use; construction may take seconds when the
// backing model loads lazily.
type InitFunc func(ctx context.Context) (llm.EmbedderClient, Searcher, error)

// Options tune per-request behavior. The zero value selects the defaults
// above.
type Options struct {
	MaxLimit int
	// Timeout applies to each sub-query's embed+search pair, not the whole
	// request.
	Timeout time.Duration
}

// Service coordinates decomposition, embedding, index search and merging
// behind the single Suggest operation. Safe for concurrent use: all
// request state is local to a call, and the embedder/searcher pair is
// initialized exactly once behind the init gate.
type Service struct {
	init       InitFunc
	decomposer Decomposer
	opts       Options
	log        *slog.Logger

	once     sync.Once
	embedder llm.EmbedderClient
	searcher Searcher
	initErr  error
}

func NewService(init InitFunc, dec Decomposer, opts Options, logger *slog.Logger) *Service {
	if dec == nil {
		dec = IdentityDecomposer{}
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{init: init, decomposer: dec, opts: opts, log: logger}
}

// components runs the init gate. A failed initialization is remembered and
// returned to every subsequent call rather than retried.
func (s *Service) components(ctx context.Context) (llm.EmbedderClient, Searcher, error) {
	s.once.Do(func() {
		s.embedder, s.searcher, s.initErr = s.init(ctx)
		if s.initErr != nil {
			s.log.Error("coding service initialization failed", "err", s.initErr)
		}
	})
	return s.embedder, s.searcher, s.initErr
}

// Suggest returns up to limit ranked, deduplicated code suggestions for the
// given clinical narrative. A negative limit is invalid, zero
// short-circuits to an empty result without touching the index, and values
// above the maximum are clamped. When refine is true the narrative is
// first decomposed into per-condition sub-queries.
//
// A failure on one sub-query is absorbed as long as another succeeds; only
// when every sub-query fails does the call return an error.
func (s *Service) Suggest(ctx context.Context, text string, limit int, refine bool) ([]Suggestion, error) {
	start := time.Now()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: clinical text is empty", ErrInvalidInput)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidInput, limit)
	}
	if limit == 0 {
		return []Suggestion{}, nil
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	embedder, searcher, err := s.components(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSuggestion, err)
	}

	query := ClinicalQuery{RawText: text, SubQueries: []string{text}}
	if refine {
		query.SubQueries = s.decomposer.Decompose(ctx, text)
	}

	lists := make([][]Candidate, len(query.SubQueries))
	errs := make([]error, len(query.SubQueries))

	var g errgroup.Group
	g.SetLimit(searchFanOut)
	for i, sub := range query.SubQueries {
		g.Go(func() error {
			lists[i], errs[i] = s.searchOne(ctx, embedder, searcher, sub, i, limit)
			return nil
		})
	}
	_ = g.Wait()

	raw := 0
	failed := 0
	var firstErr error
	for i, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			s.log.Warn("sub-query failed", "sub_query_index", i, "err", err)
			continue
		}
		raw += len(lists[i])
	}
	if failed == len(query.SubQueries) {
		return nil, fmt.Errorf("%w: all %d sub-queries failed: %w", ErrSuggestion, len(query.SubQueries), firstErr)
	}

	results := Merge(lists, query.SubQueries, limit)

	// Counts only: the narrative itself never reaches the logs.
	s.log.Info("suggest completed",
		"input_len", len(query.RawText),
		"sub_queries", len(query.SubQueries),
		"failed_sub_queries", failed,
		"raw_candidates", raw,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	return results, nil
}

// searchOne embeds a single sub-query and runs the index search, stamping
// provenance onto the candidates. Empty sub-queries are skipped without
// error.
func (s *Service) searchOne(ctx context.Context, embedder llm.EmbedderClient, searcher Searcher, sub string, idx, limit int) ([]Candidate, error) {
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return nil, nil
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding client configured", ErrEmbedding)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	vector, err := embedder.Embed(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrEmbedding)
	}

	candidates, err := searcher.Search(ctx, vector, limit)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		candidates[i].QueryIndex = idx
	}
	return candidates, nil
}
