package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/storage/models"
	"github.com/creditrust/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS complaints (
		id TEXT PRIMARY KEY,
		product TEXT,
		issue TEXT,
		company TEXT,
		state TEXT,
		date_received TEXT,
		narrative TEXT NOT NULL,
		chunk_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_complaints_product ON complaints(product);
	CREATE INDEX IF NOT EXISTS idx_complaints_issue ON complaints(issue);

	CREATE TABLE IF NOT EXISTS query_history (
		id TEXT PRIMARY KEY,
		question_text TEXT NOT NULL,
		product_filter TEXT,
		intent TEXT,
		confidence_score REAL,
		confidence_level TEXT,
		retrieved_count INTEGER,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_query_created ON query_history(created_at);

	CREATE TABLE IF NOT EXISTS query_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		product TEXT,
		issue TEXT,
		company TEXT,
		state TEXT,
		similarity REAL,
		FOREIGN KEY (query_id) REFERENCES query_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_sources_query ON query_sources(query_id);

	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		helpful INTEGER NOT NULL,
		comment TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (query_id) REFERENCES query_history(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_query ON feedback(query_id);

	CREATE TABLE IF NOT EXISTS evaluation_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query_id TEXT NOT NULL,
		question TEXT NOT NULL,
		cosine_similarity REAL,
		classification TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_eval_query ON evaluation_results(query_id);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

func (c *Client) InsertComplaint(complaint *models.Complaint) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO complaints
		(id, product, issue, company, state, date_received, narrative, chunk_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		complaint.ID,
		complaint.Product,
		complaint.Issue,
		complaint.Company,
		complaint.State,
		complaint.DateReceived,
		complaint.Narrative,
		complaint.ChunkCount,
		complaint.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert complaint: %w", err)
	}
	return nil
}

func (c *Client) InsertQueryRecord(record *models.QueryRecord) error {
	_, err := c.db.Exec(
		`INSERT INTO query_history
		(id, question_text, product_filter, intent, confidence_score, confidence_level, retrieved_count, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.QuestionText,
		record.ProductFilter,
		record.Intent,
		record.ConfidenceScore,
		record.ConfidenceLevel,
		record.RetrievedCount,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

func (c *Client) InsertQuerySource(source *models.QuerySource) error {
	_, err := c.db.Exec(
		`INSERT INTO query_sources
		(query_id, position, product, issue, company, state, similarity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		source.QueryID,
		source.Position,
		source.Product,
		source.Issue,
		source.Company,
		source.State,
		source.Similarity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert query source: %w", err)
	}
	return nil
}

func (c *Client) GetQueryHistory(limit int) ([]models.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(
		`SELECT id, question_text, product_filter, intent, confidence_score, confidence_level, retrieved_count, latency_ms, created_at
		FROM query_history ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []models.QueryRecord
	for rows.Next() {
		var record models.QueryRecord
		var createdAt int64
		err := rows.Scan(
			&record.ID,
			&record.QuestionText,
			&record.ProductFilter,
			&record.Intent,
			&record.ConfidenceScore,
			&record.ConfidenceLevel,
			&record.RetrievedCount,
			&record.LatencyMS,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		record.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, record)
	}

	return records, rows.Err()
}

func (c *Client) InsertFeedback(feedback *models.Feedback) error {
	helpful := 0
	if feedback.Helpful {
		helpful = 1
	}

	_, err := c.db.Exec(
		`INSERT INTO feedback (query_id, helpful, comment, created_at) VALUES (?, ?, ?, ?)`,
		feedback.QueryID,
		helpful,
		feedback.Comment,
		feedback.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

func (c *Client) InsertEvaluationResult(result *models.EvaluationResult) error {
	_, err := c.db.Exec(
		`INSERT INTO evaluation_results (query_id, question, cosine_similarity, classification, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		result.QueryID,
		result.Question,
		result.CosineSimilarity,
		result.Classification,
		result.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation result: %w", err)
	}
	return nil
}
