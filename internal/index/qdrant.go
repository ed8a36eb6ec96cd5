// Package index wraps the Qdrant client with the two operations the coding
// pipeline needs: nearest-neighbor search over a coded-concept collection,
// and bulk upsert for the offline indexer.
package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clinvec/clinvec/internal/coding"
)

type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// Client is a thin Qdrant wrapper pinned to one collection.
type Client struct {
	qc         *qdrant.Client
	collection string
}

func New(cfg Config) (*Client, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection name is required")
	}
	qc, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Client{qc: qc, collection: cfg.Collection}, nil
}

func (c *Client) Close() error {
	return c.qc.Close()
}

// Search returns up to limit candidates ordered by descending similarity.
// limit is clamped to coding.MaxLimit. The call is idempotent and safe to
// retry.
func (c *Client) Search(ctx context.Context, vector []float32, limit int) ([]coding.Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	if limit > coding.MaxLimit {
		limit = coding.MaxLimit
	}

	points, err := c.qc.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, c.classify(err)
	}

	candidates := make([]coding.Candidate, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, coding.Candidate{
			Code:      payloadString(p.Payload, "code"),
			ShortDesc: payloadString(p.Payload, "short"),
			LongDesc:  payloadString(p.Payload, "long"),
			Score:     p.Score,
		})
	}
	return candidates, nil
}

// classify translates transport errors into the pipeline's taxonomy. A
// NotFound from Qdrant means the named collection was never created, the
// single most common operator mistake; it must stay distinguishable from a
// legitimate empty result.
func (c *Client) classify(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: collection %q does not exist", coding.ErrIndexUnavailable, c.collection)
	case codes.Unavailable:
		return fmt.Errorf("%w: qdrant unreachable: %v", coding.ErrIndexUnavailable, err)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: qdrant query timed out: %v", coding.ErrIndexUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", coding.ErrIndexUnavailable, err)
	}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if payload == nil {
		return ""
	}
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

// Concept is one coded entry loaded by the indexer.
type Concept struct {
	Code      string
	ShortDesc string
	LongDesc  string
	Vector    []float32
}

// EnsureCollection creates the collection with cosine distance when absent.
// Recreating an existing collection with the same parameters is a no-op.
func (c *Client) EnsureCollection(ctx context.Context, dimension int) error {
	exists, err := c.qc.CollectionExists(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("%w: %v", coding.ErrIndexUnavailable, err)
	}
	if exists {
		return nil
	}
	err = c.qc.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", c.collection, err)
	}
	return nil
}

// Upsert writes a batch of concepts. Point IDs are derived from the code so
// re-running the indexer overwrites rather than duplicates.
func (c *Client) Upsert(ctx context.Context, concepts []Concept) error {
	if len(concepts) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, len(concepts))
	for i, concept := range concepts {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(concept.Code))
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id.String()),
			Vectors: qdrant.NewVectors(concept.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"code":  concept.Code,
				"short": concept.ShortDesc,
				"long":  concept.LongDesc,
			}),
		}
	}
	_, err := c.qc.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert %d points into %q: %w", len(concepts), c.collection, err)
	}
	return nil
}
