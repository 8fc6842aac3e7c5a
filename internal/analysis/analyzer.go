package analysis

import (
	"regexp"
	"strings"
)

// Intent is the classified business purpose of a question.
type Intent string

const (
	IntentGeneral     Intent = "general"
	IntentComparative Intent = "comparative"
	IntentTrend       Intent = "trend"
	IntentRootCause   Intent = "root_cause"
	IntentUrgency     Intent = "urgency"
	IntentVolume      Intent = "volume"
)

type TimePeriod struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type Analysis struct {
	Original   string      `json:"original"`
	Products   []string    `json:"products"`
	Intent     Intent      `json:"intent"`
	Urgent     bool        `json:"urgent"`
	TimePeriod *TimePeriod `json:"time_period,omitempty"`
}

type productEntry struct {
	label    string
	keywords []string
}

// Detection order is fixed so product lists come out deterministic.
var productTable = []productEntry{
	{"Credit card", []string{"credit card", "card", "visa", "mastercard", "amex"}},
	{"Personal loan", []string{"personal loan", "loan", "borrowing", "debt"}},
	{"Savings account", []string{"savings account", "savings", "deposit"}},
	{"Money transfers", []string{"money transfer", "transfer", "wire", "send money", "remittance"}},
	{"Mortgage", []string{"mortgage", "home loan"}},
	{"Checking account", []string{"checking account", "checking"}},
}

type intentEntry struct {
	intent   Intent
	keywords []string
}

// Ordered by resolution priority: when several intents match, the first
// entry here wins.
var intentTable = []intentEntry{
	{IntentComparative, []string{"compare", "vs", "versus", "difference", "similar"}},
	{IntentRootCause, []string{"why", "reason", "cause", "root cause"}},
	{IntentTrend, []string{"trend", "pattern", "over time", "recent", "last"}},
	{IntentUrgency, []string{"urgent", "critical", "immediate", "emergency"}},
	{IntentVolume, []string{"how many", "many", "often", "frequent", "volume"}},
}

var urgencyWords = []string{"urgent", "critical", "immediate", "emergency"}

type timePattern struct {
	re         *regexp.Regexp
	periodType string
}

// First pattern matched wins; later patterns are not attempted.
var timePatterns = []timePattern{
	{regexp.MustCompile(`last (\d+) (days|weeks|months)`), "recent"},
	{regexp.MustCompile(`in (\d{4})`), "year_specific"},
	{regexp.MustCompile(`this (month|week|year)`), "current"},
	{regexp.MustCompile(`q[1-4]`), "quarter"},
}

// Analyze extracts structured intent from a raw question. It is a pure
// function of the text: no matches means the general intent and an empty
// product set, never an error.
func Analyze(question string) Analysis {
	lower := strings.ToLower(question)

	analysis := Analysis{
		Original: question,
		Products: []string{},
		Intent:   IntentGeneral,
	}

	seen := make(map[string]bool)
	for _, entry := range productTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) && !seen[entry.label] {
				seen[entry.label] = true
				analysis.Products = append(analysis.Products, entry.label)
				break
			}
		}
	}

	for _, entry := range intentTable {
		if containsAny(lower, entry.keywords) {
			analysis.Intent = entry.intent
			break
		}
	}

	analysis.Urgent = containsAny(lower, urgencyWords)

	for _, tp := range timePatterns {
		if match := tp.re.FindString(lower); match != "" {
			analysis.TimePeriod = &TimePeriod{Type: tp.periodType, Value: match}
			break
		}
	}

	return analysis
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
