package ingestion

import (
	"strings"
	"testing"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain text untouched", "I was charged twice for one payment", "I was charged twice for one payment"},
		{"tags removed", "<p>I was <b>charged twice</b></p>", "I was charged twice"},
		{"script dropped", "<div>real complaint<script>alert(1)</script></div>", "real complaint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeWhitespace(stripMarkup(tt.content))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	got := normalizeWhitespace("  too   much\n\nwhitespace\there  ")
	if got != "too much whitespace here" {
		t.Errorf("got %q", got)
	}
}

func TestChunkNarrativeShortText(t *testing.T) {
	p := &Processor{chunkSize: 1000}

	chunks := p.chunkNarrative("A short complaint that fits in one chunk.")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
}

func TestChunkNarrativeSentenceBoundaries(t *testing.T) {
	p := &Processor{chunkSize: 120}

	sentence := "The bank charged me a fee I never agreed to and refused to refund it."
	text := strings.TrimSpace(strings.Repeat(sentence+" ", 5))

	chunks := p.chunkNarrative(text)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want multiple", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > p.chunkSize+1 {
			t.Errorf("chunk %d is %d chars, exceeds size %d", i, len(chunk), p.chunkSize)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestFixedChunks(t *testing.T) {
	chunks := fixedChunks(strings.Repeat("x", 250), 100)

	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[2]) != 50 {
		t.Errorf("chunk sizes = %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestFindColumn(t *testing.T) {
	columns := map[string]int{"complaint_id": 0, "consumer_complaint_narrative": 3}

	idx, ok := findColumn(columns, "narrative", "consumer_complaint_narrative")
	if !ok || idx != 3 {
		t.Errorf("findColumn = %d, %v; want 3, true", idx, ok)
	}

	_, ok = findColumn(columns, "missing")
	if ok {
		t.Error("expected miss for absent column")
	}
}
