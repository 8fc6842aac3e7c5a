package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/graph/neo4j"
	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/pkg/logger"
)

type GraphHandler struct {
	graph *neo4j.Client
}

func NewGraphHandler(graph *neo4j.Client) *GraphHandler {
	return &GraphHandler{
		graph: graph,
	}
}

// GetTopIssues returns the issue rollup for a product from the
// co-occurrence graph. Returns 503 when the graph is not configured.
func (h *GraphHandler) GetTopIssues(c *fiber.Ctx) error {
	if h.graph == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Graph store is not configured",
		})
	}

	product := c.Query("product")
	if product == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "product query parameter is required",
		})
	}

	product = vector.NormalizeProduct(product)
	limit := c.QueryInt("limit", 10)

	issues, err := h.graph.TopIssues(c.Context(), product, limit)
	if err != nil {
		logger.Error("Failed to query top issues", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to query issue graph",
		})
	}

	return c.JSON(fiber.Map{
		"product": product,
		"issues":  issues,
	})
}
