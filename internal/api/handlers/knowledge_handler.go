package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/knowledge"
	"github.com/math-agent/backend/pkg/logger"
)

type KnowledgeHandler struct {
	store *knowledge.Store
}

func NewKnowledgeHandler(store *knowledge.Store) *KnowledgeHandler {
	return &KnowledgeHandler{
		store: store,
	}
}

// HandleAdd inserts one entry into the knowledge corpus. The source title
// and URL default to the topic's canonical reference when omitted.
func (h *KnowledgeHandler) HandleAdd(c *fiber.Ctx) error {
	var req struct {
		Text        string `json:"text"`
		Topic       string `json:"topic"`
		SourceTitle string `json:"sourceTitle"`
		SourceURL   string `json:"sourceUrl"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	if req.Topic == "" {
		req.Topic = knowledge.DetectTopic(req.Text)
	}
	if req.SourceTitle == "" || req.SourceURL == "" {
		title, url := knowledge.TopicReference(req.Topic)
		if req.SourceTitle == "" {
			req.SourceTitle = title
		}
		if req.SourceURL == "" {
			req.SourceURL = url
		}
	}

	id, err := h.store.Add(c.Context(), req.Text, req.Topic, req.SourceTitle, req.SourceURL)
	if err != nil {
		logger.Error("Failed to add knowledge entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add knowledge entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    id,
		"topic": req.Topic,
	})
}
