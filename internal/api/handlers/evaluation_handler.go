package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/evaluation"
	"github.com/creditrust/backend/pkg/logger"
)

type EvaluationHandler struct {
	evaluator *evaluation.Evaluator
}

func NewEvaluationHandler(evaluator *evaluation.Evaluator) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator: evaluator,
	}
}

// HandleEvaluate runs the provided dataset through the ask pipeline and
// returns the aggregated relevance report. Datasets run synchronously;
// callers should keep them small.
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	dataset, err := evaluation.LoadDataset(bytes.NewReader(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid evaluation dataset",
		})
	}

	report, err := h.evaluator.Run(c.Context(), dataset)
	if err != nil {
		logger.Error("Evaluation run failed", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
