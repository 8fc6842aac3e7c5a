package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/embedding"
	"github.com/creditrust/backend/internal/graph/neo4j"
	"github.com/creditrust/backend/internal/metrics"
	"github.com/creditrust/backend/internal/storage/models"
	"github.com/creditrust/backend/internal/storage/sqlite"
	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/internal/vector/milvus"
	"github.com/creditrust/backend/pkg/logger"
)

// Processor turns raw complaint records into embedded narrative chunks in
// the vector store, with label rollups in SQLite and the co-occurrence
// graph. This is the only write path against the index.
type Processor struct {
	db        *sqlite.Client
	vectorDB  *milvus.Client
	embedder  *embedding.Client
	graph     *neo4j.Client
	chunkSize int
}

// ComplaintRecord is one raw complaint as submitted for ingestion.
// Narratives exported from web forms may carry markup; it is stripped
// before chunking.
type ComplaintRecord struct {
	ComplaintID  string `json:"complaint_id"`
	Product      string `json:"product"`
	Issue        string `json:"issue"`
	Company      string `json:"company"`
	State        string `json:"state"`
	DateReceived string `json:"date_received"`
	Narrative    string `json:"narrative"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func NewProcessor(db *sqlite.Client, vectorDB *milvus.Client, embedder *embedding.Client, graph *neo4j.Client) *Processor {
	return &Processor{
		db:        db,
		vectorDB:  vectorDB,
		embedder:  embedder,
		graph:     graph,
		chunkSize: 1000,
	}
}

func (p *Processor) ProcessComplaint(ctx context.Context, record ComplaintRecord) error {
	narrative := normalizeWhitespace(stripMarkup(record.Narrative))
	if narrative == "" {
		return fmt.Errorf("complaint narrative is empty")
	}

	complaintID := record.ComplaintID
	if complaintID == "" {
		complaintID = uuid.New().String()
	}

	logger.Info("Processing complaint",
		zap.String("complaint_id", complaintID),
		zap.String("product", record.Product),
	)

	product := vector.NormalizeProduct(record.Product)
	issue := vector.NormalizeIssue(record.Issue)
	company := vector.NormalizeField(record.Company)
	state := vector.NormalizeField(record.State)
	dateReceived := vector.NormalizeField(record.DateReceived)

	chunks := p.chunkNarrative(narrative)
	logger.Debug("Narrative chunked", zap.Int("chunks", len(chunks)))

	embeddings, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(chunks))
	}

	vectorChunks := make([]milvus.ComplaintChunk, 0, len(chunks))
	for i, chunkText := range chunks {
		vectorChunks = append(vectorChunks, milvus.ComplaintChunk{
			ID:           fmt.Sprintf("%s_chunk_%d", complaintID, i),
			Embedding:    embeddings[i],
			Text:         chunkText,
			Product:      product,
			Issue:        issue,
			Company:      company,
			State:        state,
			DateReceived: dateReceived,
		})
	}

	if err := p.vectorDB.Insert(ctx, vectorChunks); err != nil {
		return fmt.Errorf("failed to insert vector chunks: %w", err)
	}

	err = p.db.InsertComplaint(&models.Complaint{
		ID:           complaintID,
		Product:      product,
		Issue:        issue,
		Company:      company,
		State:        state,
		DateReceived: dateReceived,
		Narrative:    narrative,
		ChunkCount:   len(chunks),
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to store complaint: %w", err)
	}

	if p.graph != nil {
		if err := p.graph.UpsertComplaintLabels(ctx, product, issue, company); err != nil {
			logger.Warn("Failed to update co-occurrence graph", zap.Error(err))
		}
	}

	metrics.ComplaintsIngested.Inc()
	metrics.ChunksIndexed.Add(float64(len(chunks)))

	return nil
}

// ProcessCSV ingests a complaint export. Rows without a narrative are
// skipped, matching the corpus cleaning rules. Returns the number of
// complaints ingested.
func (p *Processor) ProcessCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	narrativeIdx, ok := findColumn(columns, "narrative", "consumer_complaint_narrative", "complaint_what_happened")
	if !ok {
		return 0, fmt.Errorf("CSV has no narrative column")
	}

	processed := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return processed, fmt.Errorf("failed to read CSV row: %w", err)
		}

		record := ComplaintRecord{
			ComplaintID:  field(row, columns, "complaint_id"),
			Product:      field(row, columns, "product"),
			Issue:        field(row, columns, "issue"),
			Company:      field(row, columns, "company"),
			State:        field(row, columns, "state"),
			DateReceived: field(row, columns, "date_received"),
			Narrative:    cell(row, narrativeIdx),
		}

		if strings.TrimSpace(record.Narrative) == "" {
			continue
		}

		if err := p.ProcessComplaint(ctx, record); err != nil {
			logger.Warn("Failed to ingest complaint row", zap.Error(err))
			continue
		}
		processed++
	}

	logger.Info("CSV ingestion completed", zap.Int("complaints", processed))

	return processed, nil
}

// chunkNarrative groups whole sentences into chunks up to chunkSize
// characters, so no chunk starts or ends mid-sentence.
func (p *Processor) chunkNarrative(text string) []string {
	if len(text) <= p.chunkSize {
		return []string{text}
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logger.Warn("Sentence segmentation failed, falling back to fixed-size chunks", zap.Error(err))
		return fixedChunks(text, p.chunkSize)
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range doc.Sentences() {
		if current.Len() > 0 && current.Len()+len(sentence.Text)+1 > p.chunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence.Text)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func fixedChunks(text string, size int) []string {
	var chunks []string
	for len(text) > size {
		chunks = append(chunks, text[:size])
		text = text[size:]
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

// stripMarkup removes HTML tags from narratives exported with markup.
// Plain-text narratives pass through untouched.
func stripMarkup(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}

	doc.Find("script, style").Remove()
	return doc.Text()
}

func normalizeWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func findColumn(columns map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if idx, ok := columns[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
