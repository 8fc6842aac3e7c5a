package analysis

import (
	"strings"
	"testing"
)

func TestEnhanceOriginalFirst(t *testing.T) {
	question := "What are common credit card issues"
	qa := Analyze(question)

	variants := Enhance(question, qa)

	if len(variants) == 0 {
		t.Fatal("Enhance returned no variants")
	}
	if variants[0] != question {
		t.Errorf("variants[0] = %q, want original question", variants[0])
	}
}

func TestEnhanceProductVariants(t *testing.T) {
	question := "Compare fees between credit card and savings"
	qa := Analyze(question)

	variants := Enhance(question, qa)

	found := false
	for _, v := range variants {
		if strings.HasSuffix(v, " Credit card") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a product-suffixed variant, got %v", variants)
	}
}

func TestEnhanceIntentPrefix(t *testing.T) {
	tests := []struct {
		name     string
		question string
		prefix   string
	}{
		{"comparative", "difference between mortgage rates", "compare "},
		{"root cause", "why do transfers fail", "reason for "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qa := Analyze(tt.question)
			variants := Enhance(tt.question, qa)

			found := false
			for _, v := range variants {
				if v == tt.prefix+tt.question {
					found = true
				}
			}
			if !found {
				t.Errorf("expected variant %q, got %v", tt.prefix+tt.question, variants)
			}
		})
	}
}

func TestEnhanceSynonyms(t *testing.T) {
	question := "unexpected fee on my account"
	qa := Analyze(question)

	variants := Enhance(question, qa)

	found := false
	for _, v := range variants {
		if strings.Contains(v, "charge") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a synonym-substituted variant, got %v", variants)
	}
}

func TestEnhanceNoDuplicatesAndCap(t *testing.T) {
	// Hits products, intent prefix and two synonym keys at once.
	question := "compare fee and delay issues on credit card and savings"
	qa := Analyze(question)

	variants := Enhance(question, qa)

	if len(variants) > 5 {
		t.Errorf("got %d variants, want at most 5", len(variants))
	}

	seen := make(map[string]bool)
	for _, v := range variants {
		if seen[v] {
			t.Errorf("duplicate variant %q", v)
		}
		seen[v] = true
	}
}
