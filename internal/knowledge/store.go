package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/metrics"
	"github.com/math-agent/backend/internal/source"
	"github.com/math-agent/backend/internal/vector/milvus"
	"github.com/math-agent/backend/pkg/logger"
)

const (
	defaultTopK = 5

	// Vector matches are never trusted as a sole answer source, so the
	// lookup confidence is clamped below the certainty ceiling.
	minConfidence = 0.10
	maxConfidence = 0.85
)

// Embedder turns text into vectors for similarity search. The batch form
// serves corpus loads, where one round trip per entry would be wasteful.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorSearcher is the slice of the vector client the store depends on.
type VectorSearcher interface {
	Search(ctx context.Context, queryEmbedding []float32, topK int, topic string) ([]milvus.SearchResult, error)
	Insert(ctx context.Context, chunks []milvus.KnowledgeChunk) error
}

// Lookup is the outcome of a knowledge-store query: assembled context text,
// a confidence estimate for how well the corpus covers the question, and the
// source references backing the matched chunks.
type Lookup struct {
	Context    string
	Confidence float64
	References []source.Reference
}

type Store struct {
	embedder Embedder
	searcher VectorSearcher
	topK     int
}

func NewStore(embedder Embedder, searcher VectorSearcher) *Store {
	return &Store{
		embedder: embedder,
		searcher: searcher,
		topK:     defaultTopK,
	}
}

// Query embeds the question and returns the nearest corpus chunks with a
// coverage confidence derived from their average distance.
func (s *Store) Query(ctx context.Context, question string) (*Lookup, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	topic := DetectTopic(question)
	results, err := s.searcher.Search(ctx, embedding, s.topK, topic)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	if len(results) == 0 && topic != "" {
		// Retry unfiltered before concluding the corpus has nothing.
		results, err = s.searcher.Search(ctx, embedding, s.topK, "")
		if err != nil {
			return nil, fmt.Errorf("knowledge search failed: %w", err)
		}
	}

	if len(results) == 0 {
		logger.Debug("Knowledge store returned no matches", zap.String("topic", topic))
		return &Lookup{Confidence: minConfidence}, nil
	}

	var parts []string
	var sumDist float64
	refs := make([]source.Reference, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Text)
		sumDist += float64(r.Distance)
		refs = append(refs, source.Reference{
			Title:   r.SourceTitle,
			URL:     r.SourceURL,
			Origin:  source.OriginKnowledgeStore,
			Snippet: snippet(r.Text),
		})
	}

	confidence := clampConfidence(1 - sumDist/float64(len(results)))

	logger.Debug("Knowledge lookup complete",
		zap.String("topic", topic),
		zap.Int("matches", len(results)),
		zap.Float64("confidence", confidence),
	)

	return &Lookup{
		Context:    strings.Join(parts, "\n\n"),
		Confidence: confidence,
		References: refs,
	}, nil
}

// Add embeds and stores a new corpus entry, returning its chunk id.
func (s *Store) Add(ctx context.Context, text, topic, sourceTitle, sourceURL string) (string, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to embed entry: %w", err)
	}

	id := uuid.New().String()
	chunk := milvus.KnowledgeChunk{
		ID:          id,
		Embedding:   embedding,
		Text:        text,
		Topic:       topic,
		SourceTitle: sourceTitle,
		SourceURL:   sourceURL,
		Timestamp:   time.Now(),
	}
	if err := s.searcher.Insert(ctx, []milvus.KnowledgeChunk{chunk}); err != nil {
		return "", fmt.Errorf("failed to store entry: %w", err)
	}

	metrics.KnowledgeEntriesTotal.Inc()
	logger.Info("Knowledge entry added", zap.String("id", id), zap.String("topic", topic))
	return id, nil
}

// Seed loads the built-in corpus in one batch. Any failure aborts the load
// so a partially seeded store is not mistaken for a full one.
func (s *Store) Seed(ctx context.Context) error {
	texts := make([]string, len(seedCorpus))
	for i, entry := range seedCorpus {
		texts[i] = entry.Text
	}

	embeddings, err := s.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}
	if len(embeddings) != len(seedCorpus) {
		return fmt.Errorf("corpus embedding count mismatch: got %d, want %d", len(embeddings), len(seedCorpus))
	}

	now := time.Now()
	chunks := make([]milvus.KnowledgeChunk, len(seedCorpus))
	for i, entry := range seedCorpus {
		chunks[i] = milvus.KnowledgeChunk{
			ID:          uuid.New().String(),
			Embedding:   embeddings[i],
			Text:        entry.Text,
			Topic:       entry.Topic,
			SourceTitle: entry.SourceTitle,
			SourceURL:   entry.SourceURL,
			Timestamp:   now,
		}
	}
	if err := s.searcher.Insert(ctx, chunks); err != nil {
		return fmt.Errorf("failed to store corpus: %w", err)
	}

	metrics.KnowledgeEntriesTotal.Add(float64(len(chunks)))
	logger.Info("Knowledge corpus seeded", zap.Int("entries", len(chunks)))
	return nil
}

func clampConfidence(v float64) float64 {
	if v < minConfidence {
		return minConfidence
	}
	if v > maxConfidence {
		return maxConfidence
	}
	return v
}

func snippet(text string) string {
	const max = 200
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
