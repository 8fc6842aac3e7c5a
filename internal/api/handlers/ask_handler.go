package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/pipeline"
	"github.com/creditrust/backend/internal/storage/sqlite"
	"github.com/creditrust/backend/pkg/logger"
)

type AskHandler struct {
	pipeline *pipeline.Pipeline
	db       *sqlite.Client
}

func NewAskHandler(p *pipeline.Pipeline, db *sqlite.Client) *AskHandler {
	return &AskHandler{
		pipeline: p,
		db:       db,
	}
}

func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var req struct {
		Question      string `json:"question"`
		ProductFilter string `json:"product_filter"`
	}

	if body, ok := c.Locals("sanitized_body").(map[string]interface{}); ok {
		req.Question, _ = body["question"].(string)
		req.ProductFilter, _ = body["product_filter"].(string)
	} else if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	response := h.pipeline.Ask(c.Context(), req.Question, req.ProductFilter)

	return c.JSON(response)
}

func (h *AskHandler) GetHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	records, err := h.db.GetQueryHistory(limit)
	if err != nil {
		logger.Error("Failed to load query history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load query history",
		})
	}

	history := make([]fiber.Map, 0, len(records))
	for _, record := range records {
		history = append(history, fiber.Map{
			"id":               record.ID,
			"question":         record.QuestionText,
			"product_filter":   record.ProductFilter,
			"intent":           record.Intent,
			"confidence_score": record.ConfidenceScore,
			"confidence_level": record.ConfidenceLevel,
			"retrieved_count":  record.RetrievedCount,
			"latency_ms":       record.LatencyMS,
			"created_at":       record.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"history": history,
		"count":   len(history),
	})
}

func (h *AskHandler) GetReport(c *fiber.Ctx) error {
	snapshot := h.pipeline.PerformanceReport()

	return c.JSON(fiber.Map{
		"total_queries":       snapshot.TotalQueries,
		"successful_queries":  snapshot.SuccessfulQueries,
		"success_rate":        snapshot.SuccessRate,
		"avg_retrieval_count": snapshot.AvgRetrievalCount,
	})
}
