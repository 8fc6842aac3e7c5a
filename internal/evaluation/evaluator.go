package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/embedding"
	"github.com/creditrust/backend/internal/pipeline"
	"github.com/creditrust/backend/internal/storage/models"
	"github.com/creditrust/backend/internal/storage/sqlite"
	"github.com/creditrust/backend/pkg/logger"
)

const (
	fullyRelevantThreshold      = 0.85
	moderatelyRelevantThreshold = 0.6

	ClassFullyRelevant      = "fully_relevant"
	ClassModeratelyRelevant = "moderately_relevant"
	ClassIrrelevant         = "irrelevant"
)

// Evaluator scores generated summaries against ground-truth answers by
// embedding both and comparing cosine similarity.
type Evaluator struct {
	pipeline *pipeline.Pipeline
	embedder *embedding.Client
	db       *sqlite.Client
}

type DatasetItem struct {
	Question      string `json:"question"`
	GroundTruth   string `json:"ground_truth"`
	ProductFilter string `json:"product_filter,omitempty"`
}

type Dataset struct {
	Items []DatasetItem `json:"items"`
}

type ItemResult struct {
	Question         string  `json:"question"`
	Summary          string  `json:"summary"`
	CosineSimilarity float64 `json:"cosine_similarity"`
	Classification   string  `json:"classification"`
}

type Report struct {
	TotalItems         int          `json:"total_items"`
	FullyRelevant      int          `json:"fully_relevant"`
	ModeratelyRelevant int          `json:"moderately_relevant"`
	Irrelevant         int          `json:"irrelevant"`
	FullyRelevantPct   float64      `json:"fully_relevant_pct"`
	AvgSimilarity      float64      `json:"avg_similarity"`
	Results            []ItemResult `json:"results"`
}

func NewEvaluator(p *pipeline.Pipeline, embedder *embedding.Client, db *sqlite.Client) *Evaluator {
	return &Evaluator{
		pipeline: p,
		embedder: embedder,
		db:       db,
	}
}

// Run evaluates every dataset item through the full ask path. Items whose
// embedding calls fail are counted as irrelevant rather than aborting the
// whole run.
func (e *Evaluator) Run(ctx context.Context, dataset Dataset) (Report, error) {
	if len(dataset.Items) == 0 {
		return Report{}, fmt.Errorf("evaluation dataset is empty")
	}

	report := Report{
		TotalItems: len(dataset.Items),
		Results:    make([]ItemResult, 0, len(dataset.Items)),
	}

	var similaritySum float64

	for _, item := range dataset.Items {
		response := e.pipeline.Ask(ctx, item.Question, item.ProductFilter)

		similarity, err := e.summarySimilarity(ctx, response.Insights.ExecutiveSummary, item.GroundTruth)
		if err != nil {
			logger.Warn("Evaluation similarity failed",
				zap.String("question", item.Question),
				zap.Error(err),
			)
			similarity = 0
		}

		classification := classify(similarity)

		switch classification {
		case ClassFullyRelevant:
			report.FullyRelevant++
		case ClassModeratelyRelevant:
			report.ModeratelyRelevant++
		default:
			report.Irrelevant++
		}

		similaritySum += similarity

		report.Results = append(report.Results, ItemResult{
			Question:         item.Question,
			Summary:          response.Insights.ExecutiveSummary,
			CosineSimilarity: math.Round(similarity*1000) / 1000,
			Classification:   classification,
		})

		if e.db != nil {
			err := e.db.InsertEvaluationResult(&models.EvaluationResult{
				QueryID:          response.ID,
				Question:         item.Question,
				CosineSimilarity: similarity,
				Classification:   classification,
				CreatedAt:        time.Now(),
			})
			if err != nil {
				logger.Warn("Failed to persist evaluation result", zap.Error(err))
			}
		}
	}

	report.AvgSimilarity = math.Round(similaritySum/float64(report.TotalItems)*1000) / 1000
	report.FullyRelevantPct = math.Round(float64(report.FullyRelevant)/float64(report.TotalItems)*1000) / 10

	logger.Info("Evaluation run completed",
		zap.Int("items", report.TotalItems),
		zap.Int("fully_relevant", report.FullyRelevant),
		zap.Float64("avg_similarity", report.AvgSimilarity),
	)

	return report, nil
}

func (e *Evaluator) summarySimilarity(ctx context.Context, summary, groundTruth string) (float64, error) {
	if summary == "" || groundTruth == "" {
		return 0, nil
	}

	summaryVec, err := e.embedder.EmbedText(ctx, summary)
	if err != nil {
		return 0, fmt.Errorf("failed to embed summary: %w", err)
	}

	truthVec, err := e.embedder.EmbedText(ctx, groundTruth)
	if err != nil {
		return 0, fmt.Errorf("failed to embed ground truth: %w", err)
	}

	return cosineSimilarity(summaryVec, truthVec), nil
}

func classify(similarity float64) string {
	switch {
	case similarity >= fullyRelevantThreshold:
		return ClassFullyRelevant
	case similarity >= moderatelyRelevantThreshold:
		return ClassModeratelyRelevant
	default:
		return ClassIrrelevant
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func LoadDataset(r io.Reader) (Dataset, error) {
	var dataset Dataset

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&dataset); err != nil {
		return Dataset{}, fmt.Errorf("failed to decode evaluation dataset: %w", err)
	}

	return dataset, nil
}
