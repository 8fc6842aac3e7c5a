package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/analysis"
	"github.com/creditrust/backend/internal/analytics"
	"github.com/creditrust/backend/internal/confidence"
	"github.com/creditrust/backend/internal/insight"
	"github.com/creditrust/backend/internal/metrics"
	"github.com/creditrust/backend/internal/retrieval"
	"github.com/creditrust/backend/internal/storage/models"
	"github.com/creditrust/backend/internal/storage/sqlite"
	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/pkg/logger"
)

// Pipeline chains query analysis, enhancement, retrieval, scoring and
// insight generation into one Ask call. It is stateless per request apart
// from the injected analytics tracker.
type Pipeline struct {
	orchestrator *retrieval.Orchestrator
	tracker      *analytics.Tracker
	db           *sqlite.Client
}

type Source struct {
	SourceID     int     `json:"source_id"`
	Product      string  `json:"product"`
	Issue        string  `json:"issue"`
	Company      string  `json:"company"`
	State        string  `json:"state"`
	Similarity   float64 `json:"similarity_score"`
	DateReceived string  `json:"date_received"`
}

type RetrievalStats struct {
	TotalComplaints  int `json:"total_complaints"`
	ProductsCovered  int `json:"products_covered"`
	IssuesIdentified int `json:"issues_identified"`
}

// Response is assembled once per Ask and never mutated afterwards.
type Response struct {
	ID             string            `json:"id"`
	Question       string            `json:"question"`
	QueryAnalysis  analysis.Analysis `json:"query_analysis"`
	Insights       insight.Insight   `json:"business_insights"`
	Confidence     confidence.Result `json:"confidence_metrics"`
	Sources        []Source          `json:"sources"`
	RetrievalStats RetrievalStats    `json:"retrieval_stats"`
	LatencyMS      int               `json:"latency_ms"`
}

func New(orchestrator *retrieval.Orchestrator, tracker *analytics.Tracker, db *sqlite.Client) *Pipeline {
	return &Pipeline{
		orchestrator: orchestrator,
		tracker:      tracker,
		db:           db,
	}
}

// Ask answers a business question against the complaint corpus. It always
// returns a well-formed response: empty retrieval yields NO_DATA confidence
// and a degraded insight, never an error.
func (p *Pipeline) Ask(ctx context.Context, question, productFilter string) Response {
	startTime := time.Now()
	responseID := uuid.New().String()

	logger.Info("Processing question",
		zap.String("response_id", responseID),
		zap.String("question", question),
		zap.String("filter", productFilter),
	)

	qa := analysis.Analyze(question)
	variants := analysis.Enhance(question, qa)

	evidence := p.orchestrator.Retrieve(ctx, question, qa, variants, productFilter)

	conf := confidence.Score(evidence)
	insights := insight.Generate(question, evidence, conf, qa)

	sources := buildSources(evidence)
	stats := buildStats(sources, evidence.Count())

	latency := int(time.Since(startTime).Milliseconds())

	p.tracker.Record(evidence.Count())
	p.observeMetrics(qa, conf, evidence.Count(), startTime)

	response := Response{
		ID:             responseID,
		Question:       question,
		QueryAnalysis:  qa,
		Insights:       insights,
		Confidence:     conf,
		Sources:        sources,
		RetrievalStats: stats,
		LatencyMS:      latency,
	}

	p.persist(response, productFilter)

	logger.Info("Question processed",
		zap.String("response_id", responseID),
		zap.String("intent", string(qa.Intent)),
		zap.Float64("confidence", conf.TotalScore),
		zap.String("level", string(conf.Level)),
		zap.Int("retrieved", evidence.Count()),
		zap.Int("latency_ms", latency),
	)

	return response
}

// PerformanceReport exposes the running analytics snapshot.
func (p *Pipeline) PerformanceReport() analytics.Snapshot {
	return p.tracker.Snapshot()
}

func buildSources(evidence vector.Evidence) []Source {
	sources := make([]Source, 0, evidence.Count())
	for i := range evidence.Documents {
		meta := evidence.Metadata[i]
		similarity := (1 - evidence.Distances[i]) * 100

		sources = append(sources, Source{
			SourceID:     i + 1,
			Product:      meta.Product,
			Issue:        meta.Issue,
			Company:      meta.Company,
			State:        meta.State,
			Similarity:   math.Round(similarity*10) / 10,
			DateReceived: meta.DateReceived,
		})
	}
	return sources
}

func buildStats(sources []Source, total int) RetrievalStats {
	products := make(map[string]bool)
	issues := make(map[string]bool)

	for _, source := range sources {
		if source.Product != vector.UnknownProduct {
			products[source.Product] = true
		}
		if source.Issue != vector.GeneralIssue {
			issues[source.Issue] = true
		}
	}

	return RetrievalStats{
		TotalComplaints:  total,
		ProductsCovered:  len(products),
		IssuesIdentified: len(issues),
	}
}

func (p *Pipeline) observeMetrics(qa analysis.Analysis, conf confidence.Result, retrieved int, startTime time.Time) {
	metrics.AskDuration.Observe(time.Since(startTime).Seconds())
	metrics.IntentTotal.WithLabelValues(string(qa.Intent)).Inc()
	metrics.ConfidenceScore.Observe(conf.TotalScore)
	metrics.RetrievedCount.Observe(float64(retrieved))

	status := "success"
	if retrieved == 0 {
		status = "no_data"
	}
	metrics.AskTotal.WithLabelValues(status).Inc()
}

// History persistence is best-effort; a storage fault never fails an ask.
func (p *Pipeline) persist(response Response, productFilter string) {
	if p.db == nil {
		return
	}

	record := &models.QueryRecord{
		ID:              response.ID,
		QuestionText:    response.Question,
		ProductFilter:   productFilter,
		Intent:          string(response.QueryAnalysis.Intent),
		ConfidenceScore: response.Confidence.TotalScore,
		ConfidenceLevel: string(response.Confidence.Level),
		RetrievedCount:  response.Confidence.RetrievedCount,
		LatencyMS:       response.LatencyMS,
		CreatedAt:       time.Now(),
	}

	if err := p.db.InsertQueryRecord(record); err != nil {
		logger.Warn("Failed to persist query record", zap.Error(err))
		return
	}

	for _, source := range response.Sources {
		err := p.db.InsertQuerySource(&models.QuerySource{
			QueryID:    response.ID,
			Position:   source.SourceID,
			Product:    source.Product,
			Issue:      source.Issue,
			Company:    source.Company,
			State:      source.State,
			Similarity: source.Similarity,
		})
		if err != nil {
			logger.Warn("Failed to persist query source", zap.Error(err))
		}
	}
}
