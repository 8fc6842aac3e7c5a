package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/vector"
	"github.com/creditrust/backend/pkg/logger"
)

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
	embedder       vector.Embedder
}

// ComplaintChunk is one embedded narrative slice with its complaint labels.
type ComplaintChunk struct {
	ID           string
	Embedding    []float32
	Text         string
	Product      string
	Issue        string
	Company      string
	State        string
	DateReceived string
}

func NewClient(endpoint, apiKey, collectionName string, vectorDim int, embedder vector.Embedder) (*Client, error) {
	c, err := client.NewClient(context.Background(), client.Config{
		Address: endpoint,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
		embedder:       embedder,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Customer complaint narrative embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", m.vectorDim)},
			},
			{
				Name:       "text",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "4096"},
			},
			{
				Name:       "product_category",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "128"},
			},
			{
				Name:       "product",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "128"},
			},
			{
				Name:       "issue",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "256"},
			},
			{
				Name:       "company",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "256"},
			},
			{
				Name:       "state",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "32"},
			},
			{
				Name:       "date_received",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "32"},
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.COSINE, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index definition: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

func (m *Client) Insert(ctx context.Context, chunks []ComplaintChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	texts := make([]string, len(chunks))
	categories := make([]string, len(chunks))
	products := make([]string, len(chunks))
	issues := make([]string, len(chunks))
	companies := make([]string, len(chunks))
	states := make([]string, len(chunks))
	dates := make([]string, len(chunks))

	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		texts[i] = chunk.Text
		categories[i] = chunk.Product
		products[i] = chunk.Product
		issues[i] = chunk.Issue
		companies[i] = chunk.Company
		states[i] = chunk.State
		dates[i] = chunk.DateReceived
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("product_category", categories),
		entity.NewColumnVarChar("product", products),
		entity.NewColumnVarChar("issue", issues),
		entity.NewColumnVarChar("company", companies),
		entity.NewColumnVarChar("state", states),
		entity.NewColumnVarChar("date_received", dates),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Chunks inserted into vector store", zap.Int("count", len(chunks)))

	return nil
}

// Query embeds each text and searches the collection, returning one combined
// evidence set aligned by position. Results for successive texts are
// concatenated; ordering and deduplication are the orchestrator's job.
func (m *Client) Query(ctx context.Context, texts []string, nResults int, filter *vector.Filter) (vector.Evidence, error) {
	evidence := vector.Evidence{RequestedK: nResults}

	expr := buildFilterExpr(filter)
	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	for _, text := range texts {
		queryVector, err := m.embedder.EmbedText(ctx, text)
		if err != nil {
			return vector.Evidence{RequestedK: nResults}, fmt.Errorf("failed to embed query text: %w", err)
		}

		searchResult, err := m.client.Search(
			ctx,
			m.collectionName,
			[]string{},
			expr,
			[]string{"text", "product_category", "product", "issue", "company", "state", "date_received"},
			[]entity.Vector{entity.FloatVector(queryVector)},
			"embedding",
			entity.COSINE,
			nResults,
			sp,
		)
		if err != nil {
			return vector.Evidence{RequestedK: nResults}, fmt.Errorf("failed to search: %w", err)
		}

		for _, sr := range searchResult {
			for i := 0; i < sr.ResultCount; i++ {
				doc := getString(sr.Fields, "text", i)
				meta := vector.Metadata{
					Product:      vector.NormalizeProduct(firstNonEmpty(getString(sr.Fields, "product_category", i), getString(sr.Fields, "product", i))),
					Issue:        vector.NormalizeIssue(getString(sr.Fields, "issue", i)),
					Company:      vector.NormalizeField(getString(sr.Fields, "company", i)),
					State:        vector.NormalizeField(getString(sr.Fields, "state", i)),
					DateReceived: vector.NormalizeField(getString(sr.Fields, "date_received", i)),
				}

				evidence.Documents = append(evidence.Documents, doc)
				evidence.Metadata = append(evidence.Metadata, meta)
				// COSINE scores are similarities; the pipeline works in
				// distances, matching the stored corpus convention.
				evidence.Distances = append(evidence.Distances, 1-float64(sr.Scores[i]))
			}
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("texts", len(texts)),
		zap.Int("n_results", nResults),
		zap.Int("hits", evidence.Count()),
		zap.String("filter", expr),
	)

	return evidence, nil
}

func (m *Client) Count(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.collectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	var count int64
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}

func buildFilterExpr(filter *vector.Filter) string {
	if filter == nil || len(filter.Fields) == 0 || len(filter.Values) == 0 {
		return ""
	}

	quoted := make([]string, len(filter.Values))
	for i, v := range filter.Values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	valueList := "[" + strings.Join(quoted, ", ") + "]"

	clauses := make([]string, len(filter.Fields))
	for i, field := range filter.Fields {
		clauses[i] = fmt.Sprintf("%s in %s", field, valueList)
	}

	return strings.Join(clauses, " or ")
}

func getString(fields client.ResultSet, name string, idx int) string {
	col := fields.GetColumn(name)
	if col == nil {
		return ""
	}
	value, err := col.Get(idx)
	if err != nil {
		return ""
	}
	s, _ := value.(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
