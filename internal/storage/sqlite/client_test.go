package sqlite

import (
	"testing"
	"time"

	"github.com/creditrust/backend/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(":memory:")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if err := client.InitSchema(); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return client
}

func TestInsertComplaint(t *testing.T) {
	client := newTestClient(t)

	err := client.InsertComplaint(&models.Complaint{
		ID:           "c-1",
		Product:      "Credit card",
		Issue:        "Billing dispute",
		Company:      "Acme Bank",
		State:        "CA",
		DateReceived: "2024-01-15",
		Narrative:    "I was charged twice for a single purchase.",
		ChunkCount:   1,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertComplaint: %v", err)
	}

	// Re-inserting the same ID replaces rather than erroring.
	err = client.InsertComplaint(&models.Complaint{
		ID:         "c-1",
		Narrative:  "updated narrative",
		ChunkCount: 2,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Errorf("InsertComplaint (replace): %v", err)
	}
}

func TestQueryHistoryRoundTrip(t *testing.T) {
	client := newTestClient(t)

	record := &models.QueryRecord{
		ID:              "q-1",
		QuestionText:    "Why so many credit card complaints?",
		ProductFilter:   "Credit card",
		Intent:          "root_cause",
		ConfidenceScore: 62.5,
		ConfidenceLevel: "MEDIUM",
		RetrievedCount:  5,
		LatencyMS:       120,
		CreatedAt:       time.Now(),
	}
	if err := client.InsertQueryRecord(record); err != nil {
		t.Fatalf("InsertQueryRecord: %v", err)
	}

	err := client.InsertQuerySource(&models.QuerySource{
		QueryID:    "q-1",
		Position:   1,
		Product:    "Credit card",
		Issue:      "Billing dispute",
		Company:    "Acme Bank",
		State:      "CA",
		Similarity: 88.2,
	})
	if err != nil {
		t.Fatalf("InsertQuerySource: %v", err)
	}

	history, err := client.GetQueryHistory(10)
	if err != nil {
		t.Fatalf("GetQueryHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d records, want 1", len(history))
	}

	got := history[0]
	if got.ID != "q-1" || got.Intent != "root_cause" || got.ConfidenceScore != 62.5 {
		t.Errorf("record = %+v", got)
	}
}

func TestInsertFeedbackAndEvaluation(t *testing.T) {
	client := newTestClient(t)

	if err := client.InsertQueryRecord(&models.QueryRecord{
		ID:           "q-2",
		QuestionText: "test",
		CreatedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("InsertQueryRecord: %v", err)
	}

	err := client.InsertFeedback(&models.Feedback{
		QueryID:   "q-2",
		Helpful:   true,
		Comment:   "useful answer",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Errorf("InsertFeedback: %v", err)
	}

	err = client.InsertEvaluationResult(&models.EvaluationResult{
		QueryID:          "q-2",
		Question:         "test",
		CosineSimilarity: 0.91,
		Classification:   "fully_relevant",
		CreatedAt:        time.Now(),
	})
	if err != nil {
		t.Errorf("InsertEvaluationResult: %v", err)
	}
}
