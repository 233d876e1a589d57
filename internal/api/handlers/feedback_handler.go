package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/feedback"
	"github.com/math-agent/backend/internal/metrics"
	"github.com/math-agent/backend/pkg/logger"
)

type FeedbackHandler struct {
	manager *feedback.Manager
}

func NewFeedbackHandler(manager *feedback.Manager) *FeedbackHandler {
	return &FeedbackHandler{
		manager: manager,
	}
}

// HandleSubmit accepts feedback on a resolved answer. Unprocessable
// submissions come back as 200 with processed=false and a message; only a
// malformed body is a client error.
func (h *FeedbackHandler) HandleSubmit(c *fiber.Ctx) error {
	var sub feedback.Submission

	if err := c.BodyParser(&sub); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result := h.manager.Submit(sub)
	metrics.FeedbackTotal.WithLabelValues(string(sub.Type), strconv.FormatBool(result.Processed)).Inc()

	return c.JSON(result)
}

// HandleList returns all feedback recorded for a query id.
func (h *FeedbackHandler) HandleList(c *fiber.Ctx) error {
	queryID := c.Params("id")

	records, err := h.manager.ListForQuery(queryID)
	if err != nil {
		logger.Error("Failed to list feedback", zap.String("query_id", queryID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list feedback",
		})
	}

	return c.JSON(fiber.Map{
		"queryId":  queryID,
		"feedback": records,
	})
}

// HandleStats returns aggregate feedback counters.
func (h *FeedbackHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.manager.Stats()
	if err != nil {
		logger.Error("Failed to aggregate feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to aggregate feedback",
		})
	}

	return c.JSON(stats)
}
