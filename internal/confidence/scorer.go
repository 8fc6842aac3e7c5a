package confidence

import (
	"math"

	"github.com/creditrust/backend/internal/vector"
)

type Level string

const (
	LevelNoData  Level = "NO_DATA"
	LevelVeryLow Level = "VERY_LOW"
	LevelLow     Level = "LOW"
	LevelMedium  Level = "MEDIUM"
	LevelHigh    Level = "HIGH"
)

const (
	keySemanticSimilarity   = "semantic_similarity"
	keyRetrievalQuality     = "retrieval_quality"
	keySourceDiversity      = "source_diversity"
	keyMetadataCompleteness = "metadata_completeness"
)

type Result struct {
	TotalScore     float64            `json:"total_score"`
	Level          Level              `json:"level"`
	Breakdown      map[string]float64 `json:"breakdown"`
	RetrievedCount int                `json:"retrieved_count"`
}

// Score computes a bounded 0-100 composite from retrieval evidence. Raw
// vector distance is a poor trust proxy on its own, so quantity, diversity
// and label completeness each contribute an independently bounded sub-score;
// the sum is additive so one weak factor degrades rather than zeroes the
// total.
func Score(evidence vector.Evidence) Result {
	if evidence.Count() == 0 {
		return Result{
			TotalScore: 0,
			Level:      LevelNoData,
			Breakdown: map[string]float64{
				keySemanticSimilarity:   0,
				keyRetrievalQuality:     0,
				keySourceDiversity:      0,
				keyMetadataCompleteness: 0,
			},
			RetrievedCount: 0,
		}
	}

	semantic := semanticSimilarity(evidence.Distances)
	retrieval := retrievalQuality(evidence.Count(), evidence.RequestedK)
	diversity := sourceDiversity(evidence.Metadata)
	completeness := metadataCompleteness(evidence.Metadata)

	breakdown := map[string]float64{
		keySemanticSimilarity:   round1(semantic),
		keyRetrievalQuality:     round1(retrieval),
		keySourceDiversity:      round1(diversity),
		keyMetadataCompleteness: round1(completeness),
	}

	total := breakdown[keySemanticSimilarity] +
		breakdown[keyRetrievalQuality] +
		breakdown[keySourceDiversity] +
		breakdown[keyMetadataCompleteness]
	total = round1(total)

	return Result{
		TotalScore:     total,
		Level:          levelFor(total),
		Breakdown:      breakdown,
		RetrievedCount: evidence.Count(),
	}
}

// 0-40. A neutral default applies when the index returned no distances.
func semanticSimilarity(distances []float64) float64 {
	if len(distances) == 0 {
		return 20
	}

	var sum float64
	for _, d := range distances {
		sum += d
	}
	mean := sum / float64(len(distances))

	score := (1 - mean) * 40
	if score < 0 {
		return 0
	}
	if score > 40 {
		return 40
	}
	return score
}

// 0-30. Rewards returning close to the requested volume of evidence.
func retrievalQuality(count, requestedK int) float64 {
	if requestedK <= 0 {
		return 0
	}
	return math.Min(30, float64(count)/float64(requestedK)*30)
}

// 0-20. Rewards evidence spanning multiple products over one repeated
// source. Unknown products are excluded from the distinct count but stay in
// the denominator.
func sourceDiversity(metadata []vector.Metadata) float64 {
	if len(metadata) == 0 {
		return 0
	}

	products := make(map[string]bool)
	for _, meta := range metadata {
		if meta.Product != vector.UnknownProduct {
			products[meta.Product] = true
		}
	}

	return math.Min(20, float64(len(products))/float64(len(metadata))*20)
}

// 0-10. Fraction of evidence carrying both a known product and a concrete
// issue label.
func metadataCompleteness(metadata []vector.Metadata) float64 {
	if len(metadata) == 0 {
		return 0
	}

	complete := 0
	for _, meta := range metadata {
		if meta.Product != vector.UnknownProduct && meta.Issue != vector.GeneralIssue {
			complete++
		}
	}

	return float64(complete) / float64(len(metadata)) * 10
}

func levelFor(total float64) Level {
	switch {
	case total >= 70:
		return LevelHigh
	case total >= 40:
		return LevelMedium
	case total >= 20:
		return LevelLow
	default:
		return LevelVeryLow
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
