package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/creditrust/backend/internal/analysis"
	"github.com/creditrust/backend/internal/confidence"
	"github.com/creditrust/backend/internal/vector"
)

const maxRecommendations = 3

// Insight is the structured business narrative assembled from evidence.
type Insight struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyFindings      []string `json:"key_findings"`
	PatternsDetected []string `json:"patterns_detected"`
	Recommendations  []string `json:"recommendations"`
	EvidenceCount    int      `json:"evidence_count"`
}

type labelCount struct {
	label string
	count int
}

type rootCauseCategory struct {
	name     string
	keywords []string
}

// Bucket order is fixed; an issue joins the first category whose keyword it
// contains. Issues matching no category stay out of the categorized total.
var rootCauseCategories = []rootCauseCategory{
	{"Process", []string{"delay", "slow", "wait", "pending", "processing", "time", "timely"}},
	{"Communication", []string{"notification", "inform", "tell", "communication", "update", "respond", "reply"}},
	{"Technical", []string{"error", "bug", "technical", "system", "website", "app", "online", "digital"}},
	{"Policy", []string{"fee", "charge", "policy", "term", "condition", "agreement", "contract"}},
	{"Security", []string{"fraud", "unauthorized", "theft", "scam", "security", "privacy", "identity"}},
}

var highSeverityTerms = []string{"fraud", "unauthorized", "theft", "scam", "identity"}
var mediumSeverityTerms = []string{"fee", "charge", "billing", "payment", "interest"}

// Generate turns retrieved evidence and query intent into a business
// narrative, branching by intent. It never fails: missing inputs degrade to
// placeholder text.
func Generate(question string, evidence vector.Evidence, conf confidence.Result, qa analysis.Analysis) Insight {
	if evidence.Count() == 0 {
		return Insight{
			ExecutiveSummary: "No relevant complaints found for analysis.",
			KeyFindings:      []string{},
			PatternsDetected: []string{},
			Recommendations:  []string{"Broaden the question or remove the product filter"},
			EvidenceCount:    0,
		}
	}

	products := make(map[string]int)
	issues := make(map[string]int)
	var high, medium, low int

	for _, meta := range evidence.Metadata {
		products[meta.Product]++
		issues[meta.Issue]++

		issueLower := strings.ToLower(meta.Issue)
		switch {
		case containsAny(issueLower, highSeverityTerms):
			high++
		case containsAny(issueLower, mediumSeverityTerms):
			medium++
		default:
			low++
		}
	}

	var result Insight
	switch qa.Intent {
	case analysis.IntentComparative:
		result = comparativeInsights(products)
	case analysis.IntentTrend:
		result = trendInsights(products, issues)
	case analysis.IntentRootCause:
		result = rootCauseInsights(issues)
	default:
		result = generalInsights(products, issues, high, medium, low)
	}

	return finalize(result)
}

func generalInsights(products, issues map[string]int, high, medium, low int) Insight {
	knownProducts := withoutLabel(products, vector.UnknownProduct)
	knownIssues := withoutLabel(issues, vector.GeneralIssue)

	topProducts := sortedCounts(knownProducts)
	topIssues := sortedCounts(knownIssues)

	total := sumCounts(knownProducts)
	if total == 0 {
		total = sumCounts(products)
	}

	findings := make([]string, 0, 3)
	if len(topProducts) > 0 {
		findings = append(findings, fmt.Sprintf("Top product category: %s (%d complaints)", topProducts[0].label, topProducts[0].count))
	} else {
		findings = append(findings, "No product data available")
	}
	if len(topIssues) > 0 {
		findings = append(findings, fmt.Sprintf("Most frequent issue: %s (%d occurrences)", topIssues[0].label, topIssues[0].count))
	} else {
		findings = append(findings, "No issue data available")
	}
	findings = append(findings, fmt.Sprintf("Severity distribution: %d high, %d medium, %d low priority", high, medium, low))

	patterns := make([]string, 0, 2)
	if len(knownProducts) > 0 {
		patterns = append(patterns, fmt.Sprintf("Product concentration: %d different products mentioned", len(knownProducts)))
	} else {
		patterns = append(patterns, "Limited product data")
	}
	if len(knownIssues) > 0 {
		patterns = append(patterns, fmt.Sprintf("Issue diversity: %d distinct issues identified", len(knownIssues)))
	} else {
		patterns = append(patterns, "Limited issue data")
	}

	return Insight{
		ExecutiveSummary: fmt.Sprintf("Analysis of %d relevant complaints reveals key customer pain points.", total),
		KeyFindings:      findings,
		PatternsDetected: patterns,
		Recommendations: []string{
			"Prioritize fixes for high-severity issues first",
			"Consider product-specific training for support teams",
			"Monitor emerging issues for proactive response",
		},
		EvidenceCount: total,
	}
}

func comparativeInsights(products map[string]int) Insight {
	knownProducts := withoutLabel(products, vector.UnknownProduct)

	if len(knownProducts) < 2 {
		return Insight{
			ExecutiveSummary: "Insufficient data for comparative analysis.",
			KeyFindings:      []string{"Need complaints from at least 2 different products for comparison"},
			PatternsDetected: []string{},
			Recommendations:  []string{"Ask more general questions to gather broader data"},
			EvidenceCount:    sumCounts(knownProducts),
		}
	}

	ranked := sortedCounts(knownProducts)
	highest := ranked[0]
	lowest := ranked[len(ranked)-1]

	findings := []string{
		fmt.Sprintf("Highest complaint volume: %s (%d complaints)", highest.label, highest.count),
		fmt.Sprintf("Lowest complaint volume: %s (%d complaints)", lowest.label, lowest.count),
	}
	if lowest.count > 0 {
		findings = append(findings, fmt.Sprintf("Complaint ratio: %s has %.1fx more complaints than %s",
			highest.label, float64(highest.count)/float64(lowest.count), lowest.label))
	}

	distribution := make([]string, 0, 3)
	for _, lc := range ranked[:min(3, len(ranked))] {
		distribution = append(distribution, fmt.Sprintf("%s: %d", lc.label, lc.count))
	}

	return Insight{
		ExecutiveSummary: fmt.Sprintf("Comparative analysis across %d product categories.", len(knownProducts)),
		KeyFindings:      findings,
		PatternsDetected: []string{
			fmt.Sprintf("Product diversity: Complaints span %d categories", len(knownProducts)),
			"Distribution: " + strings.Join(distribution, ", "),
		},
		Recommendations: []string{
			fmt.Sprintf("Investigate why %s has highest complaint volume", highest.label),
			fmt.Sprintf("Learn from %s's lower complaint rate", lowest.label),
			"Consider cross-product issue resolution teams",
		},
		EvidenceCount: sumCounts(knownProducts),
	}
}

func trendInsights(products, issues map[string]int) Insight {
	knownIssues := withoutLabel(issues, vector.GeneralIssue)
	knownProducts := withoutLabel(products, vector.UnknownProduct)

	topIssues := sortedCounts(knownIssues)
	if len(topIssues) > 5 {
		topIssues = topIssues[:5]
	}

	totalIssues := sumCounts(knownIssues)
	if totalIssues == 0 {
		totalIssues = sumCounts(issues)
	}

	findings := make([]string, 0, 3)
	if len(topIssues) > 0 {
		findings = append(findings, fmt.Sprintf("Top trending issue: %s (%d occurrences)", topIssues[0].label, topIssues[0].count))
	} else {
		findings = append(findings, "No trend data available")
	}
	if len(knownIssues) > 0 {
		findings = append(findings, fmt.Sprintf("Issue frequency spread: %d distinct issues identified", len(knownIssues)))
	} else {
		findings = append(findings, "Limited issue data")
	}
	findings = append(findings, fmt.Sprintf("Product coverage: Complaints from %d product categories", len(knownProducts)))

	patterns := make([]string, 0, 1)
	if len(topIssues) >= 3 && totalIssues > 0 {
		dominant := topIssues[0].count + topIssues[1].count + topIssues[2].count
		patterns = append(patterns, fmt.Sprintf("Dominant issues: Top 3 issues account for %.1f%% of complaints",
			float64(dominant)/float64(totalIssues)*100))
	} else {
		patterns = append(patterns, "Insufficient data for pattern detection")
	}

	return Insight{
		ExecutiveSummary: fmt.Sprintf("Trend analysis based on %d relevant complaints.", sumCounts(products)),
		KeyFindings:      findings,
		PatternsDetected: patterns,
		Recommendations: []string{
			"Monitor top issues for escalation patterns",
			"Set up alerts for emerging complaint types",
			"Conduct deep dive on most frequent issues",
		},
		EvidenceCount: sumCounts(products),
	}
}

func rootCauseInsights(issues map[string]int) Insight {
	categorized := make(map[string]int, len(rootCauseCategories))
	for _, category := range rootCauseCategories {
		categorized[category.name] = 0
	}

	for issue, count := range issues {
		issueLower := strings.ToLower(issue)
		for _, category := range rootCauseCategories {
			if containsAny(issueLower, category.keywords) {
				categorized[category.name] += count
				break
			}
		}
	}

	ranked := sortedCounts(categorized)
	totalCategorized := sumCounts(categorized)

	findings := make([]string, 0, 3)
	if ranked[0].count > 0 {
		findings = append(findings, fmt.Sprintf("Primary root cause category: %s (%d issues)", ranked[0].label, ranked[0].count))
	} else {
		findings = append(findings, "No clear root cause pattern")
	}
	if len(ranked) > 1 && ranked[1].count > 0 {
		findings = append(findings, fmt.Sprintf("Secondary category: %s (%d issues)", ranked[1].label, ranked[1].count))
	}

	distribution := make([]string, 0, len(ranked))
	for _, lc := range ranked {
		if lc.count > 0 {
			distribution = append(distribution, fmt.Sprintf("%s: %d", lc.label, lc.count))
		}
	}
	if len(distribution) > 0 {
		findings = append(findings, "Root cause distribution: "+strings.Join(distribution, ", "))
	}

	patterns := make([]string, 0, 2)
	if ranked[0].count > 0 {
		patterns = append(patterns, fmt.Sprintf("Systemic issues: %s appears most frequently", ranked[0].label))
	}
	patterns = append(patterns, fmt.Sprintf("Root cause categories identified: %d", len(distribution)))

	recommendations := make([]string, 0, 3)
	if ranked[0].count > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Address systemic %s issues first", strings.ToLower(ranked[0].label)))
	} else {
		recommendations = append(recommendations, "Collect more specific complaint data")
	}
	recommendations = append(recommendations,
		"Implement targeted fixes for each root cause category",
		"Track resolution effectiveness by root cause type",
	)

	return Insight{
		ExecutiveSummary: fmt.Sprintf("Root cause analysis of %d issue occurrences.", totalCategorized),
		KeyFindings:      findings,
		PatternsDetected: patterns,
		Recommendations:  recommendations,
		EvidenceCount:    totalCategorized,
	}
}

// finalize drops blank findings and patterns and caps recommendations
// before anything reaches the response.
func finalize(ins Insight) Insight {
	ins.KeyFindings = dropBlank(ins.KeyFindings)
	ins.PatternsDetected = dropBlank(ins.PatternsDetected)
	ins.Recommendations = dropBlank(ins.Recommendations)
	if len(ins.Recommendations) > maxRecommendations {
		ins.Recommendations = ins.Recommendations[:maxRecommendations]
	}
	return ins
}

func dropBlank(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			result = append(result, item)
		}
	}
	return result
}

// sortedCounts orders by descending count, ties broken by label so output
// is stable run to run.
func sortedCounts(counts map[string]int) []labelCount {
	result := make([]labelCount, 0, len(counts))
	for label, count := range counts {
		result = append(result, labelCount{label, count})
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].count != result[b].count {
			return result[a].count > result[b].count
		}
		return result[a].label < result[b].label
	})
	return result
}

func withoutLabel(counts map[string]int, label string) map[string]int {
	result := make(map[string]int, len(counts))
	for k, v := range counts {
		if k != label {
			result[k] = v
		}
	}
	return result
}

func sumCounts(counts map[string]int) int {
	var total int
	for _, v := range counts {
		total += v
	}
	return total
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
