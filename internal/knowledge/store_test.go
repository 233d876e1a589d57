package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-agent/backend/internal/source"
	"github.com/math-agent/backend/internal/vector/milvus"
)

type fakeEmbedder struct {
	err        error
	batchCalls int
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeSearcher struct {
	results  []milvus.SearchResult
	err      error
	inserted []milvus.KnowledgeChunk
	topics   []string
}

func (f *fakeSearcher) Search(_ context.Context, _ []float32, _ int, topic string) ([]milvus.SearchResult, error) {
	f.topics = append(f.topics, topic)
	return f.results, f.err
}

func (f *fakeSearcher) Insert(_ context.Context, chunks []milvus.KnowledgeChunk) error {
	f.inserted = append(f.inserted, chunks...)
	return f.err
}

func TestQueryAssemblesContextAndReferences(t *testing.T) {
	searcher := &fakeSearcher{results: []milvus.SearchResult{
		{Text: "The power rule states d/dx(x^n) = n*x^(n-1).", Topic: "calculus", SourceTitle: "Paul's Notes", SourceURL: "https://tutorial.math.lamar.edu", Distance: 0.2},
		{Text: "Constants factor out of derivatives.", Topic: "calculus", SourceTitle: "Paul's Notes", SourceURL: "https://tutorial.math.lamar.edu", Distance: 0.4},
	}}
	s := NewStore(&fakeEmbedder{}, searcher)

	lookup, err := s.Query(context.Background(), "What is the derivative of x^2?")

	require.NoError(t, err)
	assert.Contains(t, lookup.Context, "power rule")
	assert.Contains(t, lookup.Context, "Constants factor out")
	require.Len(t, lookup.References, 2)
	assert.Equal(t, source.OriginKnowledgeStore, lookup.References[0].Origin)
	// avg distance 0.3 -> confidence 0.7, within float32 rounding
	assert.InDelta(t, 0.7, lookup.Confidence, 1e-6)
}

func TestQueryConfidenceClamped(t *testing.T) {
	searcher := &fakeSearcher{results: []milvus.SearchResult{
		{Text: "exact match", Distance: 0.0},
	}}
	s := NewStore(&fakeEmbedder{}, searcher)

	lookup, err := s.Query(context.Background(), "2 + 2")
	require.NoError(t, err)
	assert.Equal(t, maxConfidence, lookup.Confidence)

	searcher.results = []milvus.SearchResult{{Text: "far", Distance: 3.0}}
	lookup, err = s.Query(context.Background(), "2 + 2")
	require.NoError(t, err)
	assert.Equal(t, minConfidence, lookup.Confidence)
}

func TestQueryNoMatchesLowConfidence(t *testing.T) {
	s := NewStore(&fakeEmbedder{}, &fakeSearcher{})

	lookup, err := s.Query(context.Background(), "What is a derivative?")

	require.NoError(t, err)
	assert.Empty(t, lookup.Context)
	assert.Empty(t, lookup.References)
	assert.Equal(t, minConfidence, lookup.Confidence)
}

func TestQueryRetriesWithoutTopicFilter(t *testing.T) {
	searcher := &fakeSearcher{}
	s := NewStore(&fakeEmbedder{}, searcher)

	_, err := s.Query(context.Background(), "What is the derivative of x^2?")

	require.NoError(t, err)
	require.Len(t, searcher.topics, 2)
	assert.Equal(t, "calculus", searcher.topics[0])
	assert.Equal(t, "", searcher.topics[1])
}

func TestQueryEmbedderFailure(t *testing.T) {
	s := NewStore(&fakeEmbedder{err: errors.New("model offline")}, &fakeSearcher{})

	_, err := s.Query(context.Background(), "2 + 2")

	assert.Error(t, err)
}

func TestAddStoresChunk(t *testing.T) {
	searcher := &fakeSearcher{}
	s := NewStore(&fakeEmbedder{}, searcher)

	id, err := s.Add(context.Background(), "Division by zero is undefined.", "arithmetic", "Khan Academy - Arithmetic", "https://www.khanacademy.org/math/arithmetic")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, searcher.inserted, 1)
	assert.Equal(t, "arithmetic", searcher.inserted[0].Topic)
	assert.Equal(t, id, searcher.inserted[0].ID)
}

func TestDetectTopic(t *testing.T) {
	tests := []struct {
		question string
		topic    string
	}{
		{"What is the derivative of x^2?", "calculus"},
		{"Find the determinant of this matrix", "linear_algebra"},
		{"Area of a circle with radius 3", "geometry"},
		{"Solve 2x + 5 = 13", "algebra"},
		{"What is 20 percent of 50?", "arithmetic"},
		{"Tell me a story", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.topic, DetectTopic(tt.question), tt.question)
	}
}

func TestSeedCorpusHasReferences(t *testing.T) {
	searcher := &fakeSearcher{}
	embedder := &fakeEmbedder{}
	s := NewStore(embedder, searcher)

	require.NoError(t, s.Seed(context.Background()))
	// The corpus is embedded in a single batch, not entry by entry.
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Len(t, searcher.inserted, len(seedCorpus))
	for _, chunk := range searcher.inserted {
		assert.NotEmpty(t, chunk.ID)
		assert.NotEmpty(t, chunk.SourceTitle)
		assert.NotEmpty(t, chunk.SourceURL)
	}
}

func TestSeedEmbeddingFailureAborts(t *testing.T) {
	searcher := &fakeSearcher{}
	s := NewStore(&fakeEmbedder{err: errors.New("model offline")}, searcher)

	err := s.Seed(context.Background())

	assert.Error(t, err)
	assert.Empty(t, searcher.inserted)
}
