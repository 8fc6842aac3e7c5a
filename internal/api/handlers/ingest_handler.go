package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/ingestion"
	"github.com/creditrust/backend/pkg/logger"
)

type IngestHandler struct {
	processor *ingestion.Processor
}

func NewIngestHandler(processor *ingestion.Processor) *IngestHandler {
	return &IngestHandler{
		processor: processor,
	}
}

// HandleIngest accepts a batch of complaint records as JSON. Records that
// fail are reported individually; the batch is not transactional.
func (h *IngestHandler) HandleIngest(c *fiber.Ctx) error {
	var req struct {
		Complaints []ingestion.ComplaintRecord `json:"complaints"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Complaints) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "At least one complaint is required",
		})
	}

	processed := 0
	failed := make([]fiber.Map, 0)

	for i, record := range req.Complaints {
		if err := h.processor.ProcessComplaint(c.Context(), record); err != nil {
			logger.Warn("Failed to ingest complaint",
				zap.Int("index", i),
				zap.Error(err),
			)
			failed = append(failed, fiber.Map{
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		processed++
	}

	return c.JSON(fiber.Map{
		"processed": processed,
		"failed":    failed,
	})
}

// HandleIngestCSV accepts a complaint export as a multipart file upload.
func (h *IngestHandler) HandleIngestCSV(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "CSV file is required",
		})
	}

	f, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		logger.Error("Failed to read uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	processed, err := h.processor.ProcessCSV(c.Context(), &buf)
	if err != nil {
		logger.Error("CSV ingestion failed", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     err.Error(),
			"processed": processed,
		})
	}

	return c.JSON(fiber.Map{
		"processed": processed,
	})
}
