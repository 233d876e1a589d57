package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/math-agent/backend/pkg/logger"
)

// Client caches resolved answers and question embeddings. A cold cache is
// never an error for callers; misses just fall through to the pipeline.
type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) SetAnswer(ctx context.Context, questionHash string, answer interface{}, ttl time.Duration) error {
	data, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("answer:%s", questionHash), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set answer cache: %w", err)
	}

	logger.Debug("Answer cached", zap.String("question_hash", questionHash), zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetAnswer(ctx context.Context, questionHash string, answer interface{}) (bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("answer:%s", questionHash)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get answer cache: %w", err)
	}

	err = json.Unmarshal(data, answer)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal answer: %w", err)
	}

	logger.Debug("Answer cache hit", zap.String("question_hash", questionHash))
	return true, nil
}

func (c *Client) SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	err = c.client.Set(ctx, fmt.Sprintf("embedding:%s", textHash), data, ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set embedding cache: %w", err)
	}

	logger.Debug("Embedding cached", zap.String("text_hash", textHash))
	return nil
}

func (c *Client) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf("embedding:%s", textHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get embedding cache: %w", err)
	}

	var embedding []float32
	err = json.Unmarshal(data, &embedding)
	if err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}

	logger.Debug("Embedding cache hit", zap.String("text_hash", textHash))
	return embedding, true, nil
}

// InvalidateAnswers drops every cached answer, used after corpus updates so
// stale knowledge does not keep serving.
func (c *Client) InvalidateAnswers(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "answer:*", 0).Iterator()
	for iter.Next(ctx) {
		err := c.client.Del(ctx, iter.Val()).Err()
		if err != nil {
			logger.Warn("Failed to delete cache key", zap.Error(err))
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to iterate cache keys: %w", err)
	}

	logger.Info("Answer cache invalidated")
	return nil
}
