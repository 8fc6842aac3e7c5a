package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/creditrust/backend/pkg/circuitbreaker"
	"github.com/creditrust/backend/pkg/logger"
	"github.com/creditrust/backend/pkg/retry"
)

// Client maintains the product-issue-company co-occurrence graph. Edges
// carry occurrence counts incremented at ingest time; there is no free-text
// extraction involved, only metadata labels.
type Client struct {
	driver      neo4j.DriverWithContext
	database    string
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type IssueCount struct {
	Issue string `json:"issue"`
	Count int64  `json:"count"`
}

func NewClient(uri, username, password, database string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(
		uri,
		neo4j.BasicAuth(username, password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx := context.Background()
	err = driver.VerifyConnectivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify connectivity: %w", err)
	}

	cb := circuitbreaker.NewCircuitBreaker("neo4j", circuitbreaker.Config{
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   200 * time.Millisecond,
		MaxDelay:       3 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	logger.Info("Neo4j client initialized", zap.String("uri", uri))

	return &Client{
		driver:      driver,
		database:    database,
		cb:          cb,
		retryConfig: retryConfig,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) executeWithRetry(ctx context.Context, operation func(neo4j.SessionWithContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
			defer session.Close(ctx)
			return operation(session)
		})
	})
}

// UpsertComplaintLabels merges the label nodes for one complaint and bumps
// the co-occurrence counters on their edges.
func (c *Client) UpsertComplaintLabels(ctx context.Context, product, issue, company string) error {
	query := `
		MERGE (p:Product {name: $product})
		MERGE (i:Issue {name: $issue})
		MERGE (c:Company {name: $company})
		MERGE (p)-[r:HAS_ISSUE]->(i)
		ON CREATE SET r.count = 1
		ON MATCH SET r.count = r.count + 1
		MERGE (c)-[s:REPORTED_FOR]->(p)
		ON CREATE SET s.count = 1
		ON MATCH SET s.count = s.count + 1
	`

	return c.executeWithRetry(ctx, func(session neo4j.SessionWithContext) error {
		_, err := session.Run(ctx, query, map[string]interface{}{
			"product": product,
			"issue":   issue,
			"company": company,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert complaint labels: %w", err)
		}
		return nil
	})
}

// TopIssues returns the most frequent issues recorded for a product.
func (c *Client) TopIssues(ctx context.Context, product string, limit int) ([]IssueCount, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		MATCH (p:Product {name: $product})-[r:HAS_ISSUE]->(i:Issue)
		RETURN i.name AS issue, r.count AS count
		ORDER BY r.count DESC
		LIMIT $limit
	`

	var results []IssueCount

	err := c.executeWithRetry(ctx, func(session neo4j.SessionWithContext) error {
		records, err := session.Run(ctx, query, map[string]interface{}{
			"product": product,
			"limit":   limit,
		})
		if err != nil {
			return fmt.Errorf("failed to query top issues: %w", err)
		}

		results = results[:0]
		for records.Next(ctx) {
			record := records.Record()
			issue, _ := record.Get("issue")
			count, _ := record.Get("count")

			issueName, _ := issue.(string)
			issueCount, _ := count.(int64)
			results = append(results, IssueCount{Issue: issueName, Count: issueCount})
		}

		return records.Err()
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}
