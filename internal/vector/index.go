package vector

import (
	"context"
	"strings"
)

const (
	UnknownProduct = "Unknown"
	GeneralIssue   = "General"
	UnknownValue   = "Unknown"
)

// Metadata is the typed view of a complaint chunk's labels. Absent fields
// are resolved to sentinel defaults here, at the index boundary, so no
// downstream consumer deals with missing keys.
type Metadata struct {
	Product      string `json:"product"`
	Issue        string `json:"issue"`
	Company      string `json:"company"`
	State        string `json:"state"`
	DateReceived string `json:"date_received"`
}

// Evidence holds retrieval output as position-aligned sequences.
// RequestedK records the result count asked of the index, which the
// confidence scorer needs for its retrieval-quality ratio.
type Evidence struct {
	Documents  []string
	Metadata   []Metadata
	Distances  []float64
	RequestedK int
}

func (e Evidence) Count() int {
	return len(e.Documents)
}

// Filter is a logical OR across Fields, each matched against the full
// Values set. Two fields are matched because older corpus snapshots stored
// the product label under product_category and newer ones under product.
type Filter struct {
	Fields []string
	Values []string
}

// Index is the capability the retrieval pipeline consumes. Query embeds the
// given texts itself; callers never handle vectors.
type Index interface {
	Query(ctx context.Context, texts []string, nResults int, filter *Filter) (Evidence, error)
	Count(ctx context.Context) (int64, error)
}

// Embedder turns text into a vector. Satisfied by the embedding client.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// NormalizeProduct maps raw metadata values onto canonical product labels.
func NormalizeProduct(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || value == "null" || value == "None" {
		return UnknownProduct
	}

	lower := strings.ToLower(value)
	switch {
	case strings.Contains(lower, "credit") && strings.Contains(lower, "card"):
		return "Credit card"
	case strings.Contains(lower, "personal") && strings.Contains(lower, "loan"):
		return "Personal loan"
	case strings.Contains(lower, "savings") && strings.Contains(lower, "account"):
		return "Savings account"
	case strings.Contains(lower, "money") && strings.Contains(lower, "transfer"):
		return "Money transfers"
	case strings.Contains(lower, "mortgage"):
		return "Mortgage"
	case strings.Contains(lower, "checking") && strings.Contains(lower, "account"):
		return "Checking account"
	}

	return value
}

// NormalizeIssue trims an issue label, defaulting to the General sentinel.
func NormalizeIssue(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || value == "null" || value == "None" {
		return GeneralIssue
	}
	return value
}

// NormalizeField trims any other label, defaulting to Unknown.
func NormalizeField(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || value == "null" || value == "None" {
		return UnknownValue
	}
	return value
}
