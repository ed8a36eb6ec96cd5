package coding

import (
	"context"
	"sync/atomic"
)

type MockEmbedder struct {
	// Vectors maps input text to a canned vector; Vector is the fallback.
	Vectors map[string][]float32
	Vector  []float32
	Errs    map[string]error
	Err     error
	Calls   atomic.Int32
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.Calls.Add(1)
	if err, ok := m.Errs[text]; ok {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if v, ok := m.Vectors[text]; ok {
		return v, nil
	}
	return m.Vector, nil
}

type MockSearcher struct {
	// Results keyed by the first element of the query vector, so tests can
	// route different sub-queries to different candidate lists.
	Results   map[float32][]Candidate
	Default   []Candidate
	Err       error
	Calls     atomic.Int32
	LastLimit atomic.Int32
}

func (m *MockSearcher) Search(_ context.Context, vector []float32, limit int) ([]Candidate, error) {
	m.Calls.Add(1)
	m.LastLimit.Store(int32(limit))
	if m.Err != nil {
		return nil, m.Err
	}
	list := m.Default
	if len(vector) > 0 {
		if r, ok := m.Results[vector[0]]; ok {
			list = r
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]Candidate, len(list))
	copy(out, list)
	return out, nil
}

type MockLLM struct {
	Response string
	Err      error
	Prompt   string
}

func (m *MockLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockDecomposer struct {
	Queries []string
	Calls   atomic.Int32
}

func (m *MockDecomposer) Decompose(_ context.Context, text string) []string {
	m.Calls.Add(1)
	if len(m.Queries) > 0 {
		return m.Queries
	}
	return []string{text}
}
