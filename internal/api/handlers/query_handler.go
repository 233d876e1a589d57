package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/metrics"
	"github.com/math-agent/backend/internal/query"
	"github.com/math-agent/backend/internal/source"
	"github.com/math-agent/backend/internal/storage/sqlite"
	"github.com/math-agent/backend/pkg/logger"
)

type QueryHandler struct {
	engine *query.Engine
	db     *sqlite.Client
}

func NewQueryHandler(engine *query.Engine, db *sqlite.Client) *QueryHandler {
	return &QueryHandler{
		engine: engine,
		db:     db,
	}
}

// HandleQuery resolves a question through the full pipeline. Rejected
// questions come back as 400 with the classifier's message and reasons.
func (h *QueryHandler) HandleQuery(c *fiber.Ctx) error {
	var req query.Request

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question is required",
		})
	}

	resp, err := h.engine.Resolve(c.Context(), req)
	if err != nil {
		logger.Error("Failed to resolve query", zap.Error(err))
		metrics.QueryTotal.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve query",
		})
	}

	if resp.Rejected {
		metrics.QueryTotal.WithLabelValues("rejected").Inc()
		for _, reason := range resp.Reasons {
			metrics.RejectionTotal.WithLabelValues(reason).Inc()
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	metrics.QueryTotal.WithLabelValues("success").Inc()
	metrics.QueryDuration.WithLabelValues(string(resp.SourceKind)).Observe(float64(resp.LatencyMS) / 1000)
	metrics.ConfidenceScore.Observe(resp.Confidence)
	metrics.KnowledgeConfidence.Observe(resp.KnowledgeConfidence)
	if resp.WebSearchUsed {
		metrics.WebSearchTriggered.Inc()
	}
	if resp.SourceKind == source.KindFallback {
		metrics.FallbackUsed.Inc()
	}

	return c.JSON(resp)
}

// GetQuery returns a previously resolved answer with its stored references.
func (h *QueryHandler) GetQuery(c *fiber.Ctx) error {
	id := c.Params("id")

	record, err := h.db.GetAnswerRecord(id)
	if err != nil {
		logger.Error("Failed to load answer record", zap.String("query_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load query",
		})
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "query not found",
		})
	}

	sources, err := h.db.GetAnswerSources(id)
	if err != nil {
		logger.Warn("Failed to load answer sources", zap.String("query_id", id), zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"id":                  record.ID,
		"question":            record.Question,
		"answer":              record.Answer,
		"sourceKind":          record.SourceKind,
		"confidence":          record.Confidence,
		"knowledgeConfidence": record.KnowledgeConfidence,
		"webSearchUsed":       record.WebSearchUsed,
		"reasoningTrace":      record.ReasoningTrace,
		"references":          sources,
		"createdAt":           record.CreatedAt,
	})
}

// GetHistory lists recent resolved queries, newest first.
func (h *QueryHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := h.db.GetRecentAnswers(limit)
	if err != nil {
		logger.Error("Failed to load query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
	})
}
