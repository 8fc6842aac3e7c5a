package retrieval

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/analysis"
	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/pkg/config"
	"github.com/creditrust/backend/pkg/logger"
	"github.com/creditrust/backend/pkg/utils"
)

// Orchestrator issues semantic queries against the vector index, applies
// product filters, and shapes the merged result set. It never returns an
// error: an index fault falls back to one bare retry, then to empty
// evidence, so downstream stages can still produce a no-data response.
type Orchestrator struct {
	index vector.Index
	cfg   config.RetrievalConfig
}

// The filter matches both metadata fields because the corpus schema has
// drifted between snapshots.
var filterFields = []string{"product_category", "product"}

func NewOrchestrator(index vector.Index, cfg config.RetrievalConfig) *Orchestrator {
	return &Orchestrator{
		index: index,
		cfg:   cfg,
	}
}

// Retrieve runs the enhanced variants against the index and returns merged,
// deduplicated evidence ordered nearest-first. productFilter names a logical
// product; an unrecognized name resolves to no filter.
func (o *Orchestrator) Retrieve(ctx context.Context, question string, qa analysis.Analysis, variants []string, productFilter string) vector.Evidence {
	k := o.effectiveK(qa.Intent)

	var filter *vector.Filter
	if productFilter != "" {
		if spellings, ok := o.cfg.ProductSpellings[productFilter]; ok {
			filter = &vector.Filter{Fields: filterFields, Values: spellings}
		} else {
			logger.Warn("Unrecognized product filter ignored", zap.String("filter", productFilter))
		}
	}

	texts := variants
	if len(texts) > o.cfg.MaxVariants {
		texts = texts[:o.cfg.MaxVariants]
	}
	if len(texts) == 0 {
		texts = []string{question}
	}

	evidence, err := o.index.Query(ctx, texts, k, filter)
	if err != nil {
		logger.Warn("Index query failed, retrying with defaults",
			zap.Error(err),
			zap.Int("k", k),
		)

		evidence, err = o.index.Query(ctx, []string{question}, o.cfg.K, nil)
		if err != nil {
			logger.Error("Fallback index query failed, returning empty evidence", zap.Error(err))
			return vector.Evidence{RequestedK: o.cfg.K}
		}
		k = o.cfg.K
	}

	merged := mergeAndDedupe(evidence, k)
	merged.RequestedK = k

	logger.Debug("Retrieval completed",
		zap.Int("variants", len(texts)),
		zap.Int("effective_k", k),
		zap.Int("hits", merged.Count()),
	)

	return merged
}

// Comparative and trend questions feed per-category aggregates downstream;
// doubling k reduces sampling noise in those tallies.
func (o *Orchestrator) effectiveK(intent analysis.Intent) int {
	switch intent {
	case analysis.IntentComparative:
		return min(o.cfg.ComparativeKCap, o.cfg.K*2)
	case analysis.IntentTrend:
		return min(o.cfg.TrendKCap, o.cfg.K*2)
	default:
		return o.cfg.K
	}
}

type hit struct {
	document string
	meta     vector.Metadata
	distance float64
}

// mergeAndDedupe collapses duplicate documents retrieved under different
// query variants, keeping the nearest-distance instance, then orders the
// survivors by ascending distance and caps the set at limit.
func mergeAndDedupe(evidence vector.Evidence, limit int) vector.Evidence {
	best := make(map[string]int)
	hits := make([]hit, 0, evidence.Count())

	for i := range evidence.Documents {
		key := utils.DedupKey(evidence.Documents[i])
		h := hit{
			document: evidence.Documents[i],
			meta:     evidence.Metadata[i],
			distance: evidence.Distances[i],
		}

		if j, ok := best[key]; ok {
			if h.distance < hits[j].distance {
				hits[j] = h
			}
			continue
		}

		best[key] = len(hits)
		hits = append(hits, h)
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].distance < hits[b].distance
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	result := vector.Evidence{
		Documents: make([]string, len(hits)),
		Metadata:  make([]vector.Metadata, len(hits)),
		Distances: make([]float64, len(hits)),
	}
	for i, h := range hits {
		result.Documents[i] = h.document
		result.Metadata[i] = h.meta
		result.Distances[i] = h.distance
	}

	return result
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
