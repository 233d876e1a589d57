package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/math-agent/backend/pkg/logger"
)

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

// KnowledgeChunk is one embedded entry of the math knowledge corpus.
type KnowledgeChunk struct {
	ID          string
	Embedding   []float32
	Text        string
	Topic       string
	SourceTitle string
	SourceURL   string
	Timestamp   time.Time
}

type SearchResult struct {
	ChunkID     string
	Text        string
	Topic       string
	SourceTitle string
	SourceURL   string
	// Distance is the raw L2 metric; lower is closer.
	Distance float32
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Mathematics knowledge base embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "topic",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "source_title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "256",
				},
			},
			{
				Name:     "source_url",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "timestamp",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to build index config: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

func (m *Client) Insert(ctx context.Context, chunks []KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	texts := make([]string, len(chunks))
	topics := make([]string, len(chunks))
	titles := make([]string, len(chunks))
	urls := make([]string, len(chunks))
	timestamps := make([]int64, len(chunks))

	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		texts[i] = chunk.Text
		topics[i] = chunk.Topic
		titles[i] = chunk.SourceTitle
		urls[i] = chunk.SourceURL
		timestamps[i] = chunk.Timestamp.Unix()
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("topic", topics),
		entity.NewColumnVarChar("source_title", titles),
		entity.NewColumnVarChar("source_url", urls),
		entity.NewColumnInt64("timestamp", timestamps),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks inserted into vector DB", zap.Int("count", len(chunks)))

	return nil
}

// Search returns the topK nearest chunks by L2 distance, optionally filtered
// to a single topic.
func (m *Client) Search(ctx context.Context, queryEmbedding []float32, topK int, topic string) ([]SearchResult, error) {
	expr := ""
	if topic != "" {
		expr = fmt.Sprintf(`topic == "%s"`, topic)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(16)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		[]string{"chunk_id", "text", "topic", "source_title", "source_url"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			chunkIDCol := sr.Fields.GetColumn("chunk_id")
			textCol := sr.Fields.GetColumn("text")
			topicCol := sr.Fields.GetColumn("topic")
			titleCol := sr.Fields.GetColumn("source_title")
			urlCol := sr.Fields.GetColumn("source_url")

			chunkID, _ := chunkIDCol.Get(i)
			text, _ := textCol.Get(i)
			topicVal, _ := topicCol.Get(i)
			title, _ := titleCol.Get(i)
			url, _ := urlCol.Get(i)

			results = append(results, SearchResult{
				ChunkID:     chunkID.(string),
				Text:        text.(string),
				Topic:       topicVal.(string),
				SourceTitle: title.(string),
				SourceURL:   url.(string),
				Distance:    sr.Scores[i],
			})
		}
	}

	logger.Info("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
		zap.String("filter", expr),
	)

	return results, nil
}
