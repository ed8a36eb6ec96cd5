package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge_DeduplicatesByCode(t *testing.T) {
	lists := [][]Candidate{
		{{Code: "R05", ShortDesc: "Cough", Score: 0.80, QueryIndex: 0}},
		{{Code: "R05", ShortDesc: "Cough", Score: 0.91, QueryIndex: 1}},
	}

	out := Merge(lists, []string{"dry cough", "persistent cough"}, 5)

	assert.Len(t, out, 1)
	assert.Equal(t, "R05", out[0].Code)
	assert.Equal(t, float32(0.91), out[0].Score)
	assert.Equal(t, "persistent cough", out[0].MatchedQuery)
}

func TestMerge_TieKeepsEarliestSubQuery(t *testing.T) {
	lists := [][]Candidate{
		{{Code: "R05", Score: 0.9, QueryIndex: 0}},
		{{Code: "R05", Score: 0.9, QueryIndex: 1}},
	}

	out := Merge(lists, []string{"first", "second"}, 5)

	assert.Len(t, out, 1)
	assert.Equal(t, "first", out[0].MatchedQuery)
}

func TestMerge_SortsByScoreThenCode(t *testing.T) {
	lists := [][]Candidate{{
		{Code: "R50.9", ShortDesc: "Fever, unspecified", Score: 0.89},
		{Code: "R06.02", ShortDesc: "Shortness of breath", Score: 0.86},
		{Code: "R05", ShortDesc: "Cough", Score: 0.91},
		// Equal scores order lexicographically by code.
		{Code: "J45.909", Score: 0.86},
	}}

	out := Merge(lists, []string{"q"}, 10)

	codes := make([]string, len(out))
	for i, s := range out {
		codes[i] = s.Code
	}
	assert.Equal(t, []string{"R05", "R50.9", "J45.909", "R06.02"}, codes)
}

func TestMerge_TruncatesToLimit(t *testing.T) {
	lists := [][]Candidate{{
		{Code: "A", Score: 0.9},
		{Code: "B", Score: 0.8},
		{Code: "C", Score: 0.7},
	}}

	out := Merge(lists, []string{"q"}, 2)

	assert.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Code)
	assert.Equal(t, "B", out[1].Code)
}

func TestMerge_EmptyPool(t *testing.T) {
	out := Merge(nil, nil, 5)
	assert.Empty(t, out)

	out = Merge([][]Candidate{{}, nil}, []string{"a", "b"}, 5)
	assert.Empty(t, out)
}

func TestMerge_ZeroLimit(t *testing.T) {
	lists := [][]Candidate{{{Code: "R05", Score: 0.9}}}
	assert.Empty(t, Merge(lists, []string{"q"}, 0))
}

func TestMerge_FallsBackToLongDescription(t *testing.T) {
	lists := [][]Candidate{{{Code: "R05", LongDesc: "Cough, long form", Score: 0.9}}}

	out := Merge(lists, []string{"q"}, 5)

	assert.Equal(t, "Cough, long form", out[0].Description)
}
