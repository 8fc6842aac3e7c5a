package analytics

import "sync"

// Tracker holds the process-wide query counters. A single mutex serializes
// updates from concurrent asks; readers get a consistent snapshot.
type Tracker struct {
	mu                sync.Mutex
	totalQueries      int64
	successfulQueries int64
	totalRetrieved    int64
}

type Snapshot struct {
	TotalQueries      int64   `json:"total_queries"`
	SuccessfulQueries int64   `json:"successful_queries"`
	SuccessRate       float64 `json:"success_rate"`
	AvgRetrievalCount float64 `json:"avg_retrieval_count"`
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Record registers one completed ask. A query counts as successful when it
// retrieved at least one piece of evidence.
func (t *Tracker) Record(retrievedCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalQueries++
	if retrievedCount > 0 {
		t.successfulQueries++
	}
	t.totalRetrieved += int64(retrievedCount)
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		TotalQueries:      t.totalQueries,
		SuccessfulQueries: t.successfulQueries,
	}
	if t.totalQueries > 0 {
		snap.SuccessRate = float64(t.successfulQueries) / float64(t.totalQueries) * 100
		snap.AvgRetrievalCount = float64(t.totalRetrieved) / float64(t.totalQueries)
	}
	return snap
}
