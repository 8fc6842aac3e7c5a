package milvus

import (
	"testing"

	"github.com/creditrust/backend/internal/vector"
)

func TestBuildFilterExpr(t *testing.T) {
	tests := []struct {
		name   string
		filter *vector.Filter
		want   string
	}{
		{"nil filter", nil, ""},
		{"empty fields", &vector.Filter{Values: []string{"a"}}, ""},
		{"empty values", &vector.Filter{Fields: []string{"product"}}, ""},
		{
			"single field",
			&vector.Filter{Fields: []string{"product"}, Values: []string{"Credit card"}},
			`product in ["Credit card"]`,
		},
		{
			"two fields or'd over the same values",
			&vector.Filter{
				Fields: []string{"product_category", "product"},
				Values: []string{"Credit card", "Credit-card"},
			},
			`product_category in ["Credit card", "Credit-card"] or product in ["Credit card", "Credit-card"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildFilterExpr(tt.filter); got != tt.want {
				t.Errorf("buildFilterExpr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "product"); got != "product" {
		t.Errorf("got %q, want %q", got, "product")
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
