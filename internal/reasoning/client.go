package reasoning

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/metrics"
	"github.com/math-agent/backend/pkg/circuitbreaker"
	"github.com/math-agent/backend/pkg/logger"
	"github.com/math-agent/backend/pkg/retry"
)

// Client wraps the chat and embedding models behind a circuit breaker and
// retry policy. It serves two roles: step-by-step answer generation and
// question embedding for the knowledge store.
type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	cb             *circuitbreaker.Breaker
	retryPolicy    retry.Policy
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(apiKey, model, embeddingModel string, temperature float32, maxTokens int) *Client {
	client := openai.NewClient(apiKey)

	cb := circuitbreaker.New("reasoning", circuitbreaker.Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		CooldownPeriod:   30 * time.Second,
		Logger:           logger.GetLogger(),
	})

	retryPolicy := retry.Policy{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Reasoning client initialized",
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
	)

	return &Client{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
		cb:             cb,
		retryPolicy:    retryPolicy,
	}
}

const tutorSystemPrompt = `You are a mathematics tutor. Answer mathematical questions with clear, rigorous, step-by-step reasoning.

Your responses must:
1. State the problem being solved
2. Show every step of the derivation, one operation at a time
3. Verify the final result when possible (substitution, differentiation, estimation)
4. Use only the mathematical context provided when it is relevant
5. End with a clearly marked final answer

Stay strictly within mathematics. Decline anything outside it.`

// Generate produces a step-by-step answer for the question, grounded in the
// supplied context when one is available.
func (c *Client) Generate(ctx context.Context, question, mathContext string) (string, error) {
	userPrompt := fmt.Sprintf("Question: %s", question)
	if mathContext != "" {
		userPrompt = fmt.Sprintf("Question: %s\n\nRelevant mathematical context:\n%s", question, mathContext)
	}

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: tutorSystemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.2,
		MaxTokens:    2048,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	logger.Info("Answer generated",
		zap.String("question", question),
		zap.Int("answer_length", len(resp.Content)),
	)

	return resp.Content, nil
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	var result *CompletionResponse

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryPolicy, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)

			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("Completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			metrics.TokensUsed.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.TokensUsed.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))

			result = &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var embedding []float32

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryPolicy, func() error {
			resp, err := c.client.CreateEmbeddings(
				ctx,
				openai.EmbeddingRequest{
					Input: []string{text},
					Model: openai.EmbeddingModel(c.embeddingModel),
				},
			)

			if err != nil {
				return fmt.Errorf("failed to generate embedding: %w", err)
			}

			if len(resp.Data) == 0 {
				return fmt.Errorf("embedding response contained no data")
			}

			embedding = make([]float32, len(resp.Data[0].Embedding))
			copy(embedding, resp.Data[0].Embedding)

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return embedding, nil
}

func (c *Client) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var embeddings [][]float32

	batchSize := 100
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[i:end]

		err := c.cb.Execute(ctx, func() error {
			return retry.Do(ctx, c.retryPolicy, func() error {
				resp, err := c.client.CreateEmbeddings(
					ctx,
					openai.EmbeddingRequest{
						Input: batch,
						Model: openai.EmbeddingModel(c.embeddingModel),
					},
				)

				if err != nil {
					return fmt.Errorf("failed to generate batch embeddings: %w", err)
				}

				if len(resp.Data) != len(batch) {
					return fmt.Errorf("embedding response returned %d vectors for %d inputs", len(resp.Data), len(batch))
				}

				for _, data := range resp.Data {
					embedding := make([]float32, len(data.Embedding))
					copy(embedding, data.Embedding)
					embeddings = append(embeddings, embedding)
				}

				return nil
			})
		})

		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))

	return embeddings, nil
}
