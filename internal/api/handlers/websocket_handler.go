package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/query"
	"github.com/math-agent/backend/pkg/logger"
)

// WebSocketHandler streams answers word by word over a persistent
// connection, then closes each exchange with a complete frame carrying the
// references and confidence.
type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string `json:"type"`
			Question string `json:"question"`
			UserID   string `json:"userId"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		logger.Info("Processing WebSocket query", zap.String("question", msg.Question))

		err = h.streamAnswer(c, msg.Question, msg.UserID)
		if err != nil {
			logger.Error("Failed to stream answer", zap.Error(err))
			h.sendError(c, "Failed to resolve query")
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, question, userID string) error {
	ctx := context.Background()

	h.sendChunk(c, "status", "Resolving question...")

	resp, err := h.engine.Resolve(ctx, query.Request{Question: question, UserID: userID})
	if err != nil {
		return err
	}

	if resp.Rejected {
		return c.WriteJSON(map[string]interface{}{
			"type":    "rejected",
			"message": resp.Message,
			"reasons": resp.Reasons,
		})
	}

	words := splitIntoWords(resp.Answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}

		err := h.sendChunk(c, "chunk", chunk)
		if err != nil {
			return err
		}
	}

	return h.sendComplete(c, resp)
}

func (h *WebSocketHandler) sendChunk(c *websocket.Conn, msgType, content string) error {
	msg := map[string]interface{}{
		"type":    msgType,
		"content": content,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, resp *query.Response) error {
	msg := map[string]interface{}{
		"type":       "complete",
		"id":         resp.ID,
		"sourceKind": resp.SourceKind,
		"references": resp.References,
		"confidence": resp.Confidence,
		"latencyMs":  resp.LatencyMS,
	}

	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	msg := map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	}

	c.WriteJSON(msg)
}

func splitIntoWords(text string) []string {
	words := []string{}
	currentWord := ""

	for _, char := range text {
		if char == ' ' || char == '\n' {
			if currentWord != "" {
				words = append(words, currentWord)
				currentWord = ""
			}
			if char == '\n' {
				words = append(words, "\n")
			}
		} else {
			currentWord += string(char)
		}
	}

	if currentWord != "" {
		words = append(words, currentWord)
	}

	return words
}
