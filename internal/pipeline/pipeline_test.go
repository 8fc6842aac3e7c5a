package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/creditrust/backend/internal/analytics"
	"github.com/creditrust/backend/internal/confidence"
	"github.com/creditrust/backend/internal/retrieval"
	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/pkg/config"
)

type stubIndex struct {
	evidence vector.Evidence
	err      error
}

func (s *stubIndex) Query(ctx context.Context, texts []string, nResults int, filter *vector.Filter) (vector.Evidence, error) {
	if s.err != nil {
		return vector.Evidence{}, s.err
	}
	ev := s.evidence
	ev.RequestedK = nResults
	return ev, nil
}

func (s *stubIndex) Count(ctx context.Context) (int64, error) {
	return int64(s.evidence.Count()), nil
}

func newTestPipeline(idx vector.Index) (*Pipeline, *analytics.Tracker) {
	cfg := config.RetrievalConfig{
		K:                5,
		MaxVariants:      2,
		ComparativeKCap:  8,
		TrendKCap:        10,
		ProductSpellings: config.DefaultProductSpellings(),
	}
	tracker := analytics.NewTracker()
	return New(retrieval.NewOrchestrator(idx, cfg), tracker, nil), tracker
}

func TestAskWithEvidence(t *testing.T) {
	idx := &stubIndex{
		evidence: vector.Evidence{
			Documents: []string{"charged a late fee twice", "interest rate doubled overnight"},
			Metadata: []vector.Metadata{
				{Product: "Credit card", Issue: "Billing dispute", Company: "Acme Bank", State: "CA", DateReceived: "2024-01-15"},
				{Product: "Mortgage", Issue: "Rate change", Company: "Home Corp", State: "TX", DateReceived: "2024-02-01"},
			},
			Distances: []float64{0.1, 0.3},
		},
	}
	p, _ := newTestPipeline(idx)

	got := p.Ask(context.Background(), "What are customers complaining about?", "")

	if got.ID == "" {
		t.Error("response ID is empty")
	}
	if got.Question != "What are customers complaining about?" {
		t.Errorf("Question = %q", got.Question)
	}
	if got.Confidence.Level == confidence.LevelNoData {
		t.Errorf("Level = %q, want data-bearing level", got.Confidence.Level)
	}

	if len(got.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(got.Sources))
	}
	if got.Sources[0].SourceID != 1 || got.Sources[1].SourceID != 2 {
		t.Errorf("source IDs = %d, %d; want 1, 2", got.Sources[0].SourceID, got.Sources[1].SourceID)
	}
	// distance 0.1 -> similarity 90.0
	if got.Sources[0].Similarity != 90.0 {
		t.Errorf("Sources[0].Similarity = %v, want 90.0", got.Sources[0].Similarity)
	}

	if got.RetrievalStats.TotalComplaints != 2 {
		t.Errorf("TotalComplaints = %d, want 2", got.RetrievalStats.TotalComplaints)
	}
	if got.RetrievalStats.ProductsCovered != 2 {
		t.Errorf("ProductsCovered = %d, want 2", got.RetrievalStats.ProductsCovered)
	}
	if got.RetrievalStats.IssuesIdentified != 2 {
		t.Errorf("IssuesIdentified = %d, want 2", got.RetrievalStats.IssuesIdentified)
	}
}

func TestAskIndexFailureYieldsNoDataResponse(t *testing.T) {
	idx := &stubIndex{err: errors.New("index unreachable")}
	p, tracker := newTestPipeline(idx)

	got := p.Ask(context.Background(), "any question at all", "")

	if got.Confidence.Level != confidence.LevelNoData {
		t.Errorf("Level = %q, want %q", got.Confidence.Level, confidence.LevelNoData)
	}
	if got.Confidence.TotalScore != 0 {
		t.Errorf("TotalScore = %v, want 0", got.Confidence.TotalScore)
	}
	if len(got.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", got.Sources)
	}
	if got.Insights.ExecutiveSummary != "No relevant complaints found for analysis." {
		t.Errorf("ExecutiveSummary = %q", got.Insights.ExecutiveSummary)
	}

	snap := tracker.Snapshot()
	if snap.TotalQueries != 1 {
		t.Errorf("TotalQueries = %d, want 1", snap.TotalQueries)
	}
	if snap.SuccessfulQueries != 0 {
		t.Errorf("SuccessfulQueries = %d, want 0", snap.SuccessfulQueries)
	}
}

func TestAskExcludesSentinelsFromStats(t *testing.T) {
	idx := &stubIndex{
		evidence: vector.Evidence{
			Documents: []string{"something went wrong", "no labels on this one"},
			Metadata: []vector.Metadata{
				{Product: "Credit card", Issue: "Billing dispute"},
				{Product: vector.UnknownProduct, Issue: vector.GeneralIssue},
			},
			Distances: []float64{0.2, 0.4},
		},
	}
	p, _ := newTestPipeline(idx)

	got := p.Ask(context.Background(), "label coverage question", "")

	if got.RetrievalStats.TotalComplaints != 2 {
		t.Errorf("TotalComplaints = %d, want 2", got.RetrievalStats.TotalComplaints)
	}
	if got.RetrievalStats.ProductsCovered != 1 {
		t.Errorf("ProductsCovered = %d, want 1 (Unknown excluded)", got.RetrievalStats.ProductsCovered)
	}
	if got.RetrievalStats.IssuesIdentified != 1 {
		t.Errorf("IssuesIdentified = %d, want 1 (General excluded)", got.RetrievalStats.IssuesIdentified)
	}
}

func TestPerformanceReport(t *testing.T) {
	idx := &stubIndex{
		evidence: vector.Evidence{
			Documents: []string{"one complaint"},
			Metadata:  []vector.Metadata{{Product: "Credit card", Issue: "Billing"}},
			Distances: []float64{0.2},
		},
	}
	p, _ := newTestPipeline(idx)

	p.Ask(context.Background(), "first question", "")
	p.Ask(context.Background(), "second question", "")

	snap := p.PerformanceReport()
	if snap.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d, want 2", snap.TotalQueries)
	}
	if snap.SuccessRate != 100 {
		t.Errorf("SuccessRate = %v, want 100", snap.SuccessRate)
	}
	if snap.AvgRetrievalCount != 1 {
		t.Errorf("AvgRetrievalCount = %v, want 1", snap.AvgRetrievalCount)
	}
}
