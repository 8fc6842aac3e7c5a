package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/pipeline"
	"github.com/creditrust/backend/pkg/logger"
)

type WebSocketHandler struct {
	pipeline *pipeline.Pipeline
}

func NewWebSocketHandler(p *pipeline.Pipeline) *WebSocketHandler {
	return &WebSocketHandler{
		pipeline: p,
	}
}

// HandleConnection serves one client. Each "ask" message gets staged
// status updates followed by the full response.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type          string `json:"type"`
			Question      string `json:"question"`
			ProductFilter string `json:"product_filter"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "ask" {
			continue
		}

		if msg.Question == "" {
			h.sendError(c, "Question is required")
			continue
		}

		logger.Info("Processing WebSocket question", zap.String("question", msg.Question))

		err = h.streamResponse(c, msg.Question, msg.ProductFilter)
		if err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process question")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, question, productFilter string) error {
	ctx := context.Background()

	if err := h.sendStatus(c, "analyzing", "Analyzing question..."); err != nil {
		return err
	}
	if err := h.sendStatus(c, "retrieving", "Retrieving complaint evidence..."); err != nil {
		return err
	}

	response := h.pipeline.Ask(ctx, question, productFilter)

	return c.WriteJSON(map[string]interface{}{
		"type":     "complete",
		"response": response,
	})
}

func (h *WebSocketHandler) sendStatus(c *websocket.Conn, stage, message string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    "status",
		"stage":   stage,
		"message": message,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
