package analysis

import "strings"

const maxVariants = 5

type synonymEntry struct {
	key        string
	expansions []string
}

// A single embedding query under-recalls paraphrased complaints; swapping
// in the vocabulary complainants actually use widens recall.
var synonymTable = []synonymEntry{
	{"fee", []string{"charge", "cost", "payment"}},
	{"delay", []string{"slow", "late", "waiting"}},
	{"fraud", []string{"unauthorized", "theft", "scam"}},
	{"interest", []string{"rate", "percentage", "yield"}},
}

// Enhance expands one question into an ordered set of alternate phrasings.
// The original question is always first; duplicates are dropped keeping
// first-seen order and the set is capped at five entries.
func Enhance(question string, analysis Analysis) []string {
	variants := []string{question}

	products := analysis.Products
	if len(products) > 2 {
		products = products[:2]
	}
	for _, product := range products {
		variants = append(variants, question+" "+product)
	}

	switch analysis.Intent {
	case IntentComparative:
		variants = append(variants, "compare "+question)
	case IntentRootCause:
		variants = append(variants, "reason for "+question)
	}

	lower := strings.ToLower(question)
	for _, entry := range synonymTable {
		if !strings.Contains(lower, entry.key) {
			continue
		}
		expansions := entry.expansions
		if len(expansions) > 2 {
			expansions = expansions[:2]
		}
		for _, expansion := range expansions {
			variants = append(variants, strings.ReplaceAll(lower, entry.key, expansion))
		}
	}

	return dedupe(variants, maxVariants)
}

func dedupe(variants []string, limit int) []string {
	seen := make(map[string]bool, len(variants))
	result := make([]string, 0, limit)
	for _, v := range variants {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
		if len(result) == limit {
			break
		}
	}
	return result
}
