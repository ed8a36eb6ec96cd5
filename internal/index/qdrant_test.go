package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clinvec/clinvec/internal/coding"
)

func TestNew_RequiresCollection(t *testing.T) {
	_, err := New(Config{Host: "localhost", Port: 6334})
	assert.Error(t, err)
}

func TestSearch_NonPositiveLimit(t *testing.T) {
	c := &Client{collection: "icd"}

	out, err := c.Search(context.Background(), []float32{0.1}, 0)
	assert.NoError(t, err)
	assert.Nil(t, out)
}

func TestClassify_MissingCollection(t *testing.T) {
	c := &Client{collection: "icd_mpnet_basev2"}

	err := c.classify(status.Error(codes.NotFound, "Collection `icd_mpnet_basev2` doesn't exist!"))

	assert.ErrorIs(t, err, coding.ErrIndexUnavailable)
	assert.Contains(t, err.Error(), "icd_mpnet_basev2")
	assert.Equal(t, "index_unavailable", coding.Kind(err))
}

func TestClassify_Unreachable(t *testing.T) {
	c := &Client{collection: "icd"}

	for _, err := range []error{
		status.Error(codes.Unavailable, "connection refused"),
		status.Error(codes.DeadlineExceeded, "context deadline exceeded"),
		fmt.Errorf("plain transport error"),
	} {
		classified := c.classify(err)
		assert.ErrorIs(t, classified, coding.ErrIndexUnavailable)
	}
}

func TestPayloadString(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"code":  qdrant.NewValueString("R05"),
		"short": qdrant.NewValueString("Cough"),
	}

	assert.Equal(t, "R05", payloadString(payload, "code"))
	assert.Equal(t, "", payloadString(payload, "long"))
	assert.Equal(t, "", payloadString(nil, "code"))
}
