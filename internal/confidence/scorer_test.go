package confidence

import (
	"math"
	"testing"

	"github.com/creditrust/backend/internal/vector"
)

func evidenceWith(distances []float64, metadata []vector.Metadata, requestedK int) vector.Evidence {
	docs := make([]string, len(metadata))
	for i := range docs {
		docs[i] = "complaint narrative"
	}
	return vector.Evidence{
		Documents:  docs,
		Metadata:   metadata,
		Distances:  distances,
		RequestedK: requestedK,
	}
}

func TestScoreEmptyEvidence(t *testing.T) {
	got := Score(vector.Evidence{RequestedK: 5})

	if got.Level != LevelNoData {
		t.Errorf("Level = %q, want %q", got.Level, LevelNoData)
	}
	if got.TotalScore != 0 {
		t.Errorf("TotalScore = %v, want 0", got.TotalScore)
	}
	if got.RetrievedCount != 0 {
		t.Errorf("RetrievedCount = %d, want 0", got.RetrievedCount)
	}
	for key, v := range got.Breakdown {
		if v != 0 {
			t.Errorf("Breakdown[%q] = %v, want 0", key, v)
		}
	}
	if len(got.Breakdown) != 4 {
		t.Errorf("Breakdown has %d keys, want 4", len(got.Breakdown))
	}
}

func TestScoreFullEvidence(t *testing.T) {
	distances := []float64{0.1, 0.2, 0.1, 0.3, 0.2}
	metadata := []vector.Metadata{
		{Product: "Credit card", Issue: "Billing dispute"},
		{Product: "Mortgage", Issue: "Payment delay"},
		{Product: "Credit card", Issue: "Billing dispute"},
		{Product: "Savings account", Issue: "Account closure"},
		{Product: "Mortgage", Issue: "Payment delay"},
	}

	got := Score(evidenceWith(distances, metadata, 5))

	// mean distance 0.18 -> (1-0.18)*40 = 32.8
	if got.Breakdown["semantic_similarity"] != 32.8 {
		t.Errorf("semantic_similarity = %v, want 32.8", got.Breakdown["semantic_similarity"])
	}
	// 5 of 5 requested
	if got.Breakdown["retrieval_quality"] != 30 {
		t.Errorf("retrieval_quality = %v, want 30", got.Breakdown["retrieval_quality"])
	}
	// 3 distinct products over 5 items -> 12
	if got.Breakdown["source_diversity"] != 12 {
		t.Errorf("source_diversity = %v, want 12", got.Breakdown["source_diversity"])
	}
	// all items fully labeled
	if got.Breakdown["metadata_completeness"] != 10 {
		t.Errorf("metadata_completeness = %v, want 10", got.Breakdown["metadata_completeness"])
	}

	if got.TotalScore != 84.8 {
		t.Errorf("TotalScore = %v, want 84.8", got.TotalScore)
	}
	if got.Level != LevelHigh {
		t.Errorf("Level = %q, want %q", got.Level, LevelHigh)
	}
	if got.RetrievedCount != 5 {
		t.Errorf("RetrievedCount = %d, want 5", got.RetrievedCount)
	}
}

func TestScoreTotalIsSumOfBreakdown(t *testing.T) {
	metadata := []vector.Metadata{
		{Product: "Credit card", Issue: "Billing"},
		{Product: vector.UnknownProduct, Issue: vector.GeneralIssue},
	}

	got := Score(evidenceWith([]float64{0.35, 0.6}, metadata, 5))

	var sum float64
	for _, v := range got.Breakdown {
		sum += v
	}
	if math.Abs(got.TotalScore-math.Round(sum*10)/10) > 1e-9 {
		t.Errorf("TotalScore = %v, breakdown sum = %v", got.TotalScore, sum)
	}
}

func TestScoreUnknownProductsExcludedFromDiversity(t *testing.T) {
	metadata := []vector.Metadata{
		{Product: vector.UnknownProduct, Issue: "Billing"},
		{Product: vector.UnknownProduct, Issue: "Billing"},
	}

	got := Score(evidenceWith([]float64{0.2, 0.2}, metadata, 5))

	if got.Breakdown["source_diversity"] != 0 {
		t.Errorf("source_diversity = %v, want 0 for all-unknown products", got.Breakdown["source_diversity"])
	}
	if got.Breakdown["metadata_completeness"] != 0 {
		t.Errorf("metadata_completeness = %v, want 0", got.Breakdown["metadata_completeness"])
	}
}

func TestSemanticSimilarityBounds(t *testing.T) {
	// Distances above 1 would push the raw score negative.
	if got := semanticSimilarity([]float64{1.5, 1.8}); got != 0 {
		t.Errorf("semanticSimilarity(far) = %v, want 0", got)
	}
	// No distances falls back to the neutral midpoint.
	if got := semanticSimilarity(nil); got != 20 {
		t.Errorf("semanticSimilarity(nil) = %v, want 20", got)
	}
	// A perfect match cannot exceed the 40-point cap.
	if got := semanticSimilarity([]float64{0, 0}); got != 40 {
		t.Errorf("semanticSimilarity(exact) = %v, want 40", got)
	}
}

func TestRetrievalQualityBounds(t *testing.T) {
	if got := retrievalQuality(10, 5); got != 30 {
		t.Errorf("retrievalQuality(over-delivery) = %v, want capped 30", got)
	}
	if got := retrievalQuality(1, 5); got != 6 {
		t.Errorf("retrievalQuality(1, 5) = %v, want 6", got)
	}
	if got := retrievalQuality(3, 0); got != 0 {
		t.Errorf("retrievalQuality with zero requested = %v, want 0", got)
	}
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		total float64
		want  Level
	}{
		{70, LevelHigh},
		{69.9, LevelMedium},
		{40, LevelMedium},
		{39.9, LevelLow},
		{20, LevelLow},
		{19.9, LevelVeryLow},
		{0, LevelVeryLow},
	}

	for _, tt := range tests {
		if got := levelFor(tt.total); got != tt.want {
			t.Errorf("levelFor(%v) = %q, want %q", tt.total, got, tt.want)
		}
	}
}
