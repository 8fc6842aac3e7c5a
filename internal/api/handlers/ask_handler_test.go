package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/creditrust/backend/internal/analytics"
	"github.com/creditrust/backend/internal/pipeline"
	"github.com/creditrust/backend/internal/retrieval"
	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/pkg/config"
)

type stubIndex struct {
	evidence vector.Evidence
}

func (s *stubIndex) Query(ctx context.Context, texts []string, nResults int, filter *vector.Filter) (vector.Evidence, error) {
	ev := s.evidence
	ev.RequestedK = nResults
	return ev, nil
}

func (s *stubIndex) Count(ctx context.Context) (int64, error) {
	return int64(s.evidence.Count()), nil
}

func newAskApp(idx vector.Index) *fiber.App {
	cfg := config.RetrievalConfig{
		K:                5,
		MaxVariants:      2,
		ComparativeKCap:  8,
		TrendKCap:        10,
		ProductSpellings: config.DefaultProductSpellings(),
	}
	p := pipeline.New(retrieval.NewOrchestrator(idx, cfg), analytics.NewTracker(), nil)
	handler := NewAskHandler(p, nil)

	app := fiber.New()
	app.Post("/api/v1/ask", handler.HandleAsk)
	app.Get("/api/v1/report", handler.GetReport)
	return app
}

func TestHandleAsk(t *testing.T) {
	idx := &stubIndex{
		evidence: vector.Evidence{
			Documents: []string{"charged a hidden annual fee"},
			Metadata:  []vector.Metadata{{Product: "Credit card", Issue: "Billing dispute"}},
			Distances: []float64{0.15},
		},
	}
	app := newAskApp(idx)

	req := httptest.NewRequest("POST", "/api/v1/ask",
		strings.NewReader(`{"question": "What are common credit card issues?"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		ID             string `json:"id"`
		Question       string `json:"question"`
		Sources        []any  `json:"sources"`
		RetrievalStats struct {
			TotalComplaints int `json:"total_complaints"`
		} `json:"retrieval_stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if body.ID == "" {
		t.Error("response id is empty")
	}
	if body.Question != "What are common credit card issues?" {
		t.Errorf("question = %q", body.Question)
	}
	if len(body.Sources) != 1 {
		t.Errorf("got %d sources, want 1", len(body.Sources))
	}
	if body.RetrievalStats.TotalComplaints != 1 {
		t.Errorf("total_complaints = %d, want 1", body.RetrievalStats.TotalComplaints)
	}
}

func TestHandleAskMissingQuestion(t *testing.T) {
	app := newAskApp(&stubIndex{})

	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetReport(t *testing.T) {
	app := newAskApp(&stubIndex{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/report", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"total_queries", "successful_queries", "success_rate", "avg_retrieval_count"} {
		if _, ok := body[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
}
