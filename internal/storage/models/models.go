package models

import "time"

type Complaint struct {
	ID           string
	Product      string
	Issue        string
	Company      string
	State        string
	DateReceived string
	Narrative    string
	ChunkCount   int
	CreatedAt    time.Time
}

type QueryRecord struct {
	ID              string
	QuestionText    string
	ProductFilter   string
	Intent          string
	ConfidenceScore float64
	ConfidenceLevel string
	RetrievedCount  int
	LatencyMS       int
	CreatedAt       time.Time
}

type QuerySource struct {
	ID         int
	QueryID    string
	Position   int
	Product    string
	Issue      string
	Company    string
	State      string
	Similarity float64
}

type Feedback struct {
	ID        int
	QueryID   string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}

type EvaluationResult struct {
	ID               int
	QueryID          string
	Question         string
	CosineSimilarity float64
	Classification   string
	CreatedAt        time.Time
}
