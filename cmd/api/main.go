package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/creditrust/backend/internal/analytics"
	"github.com/creditrust/backend/internal/api/handlers"
	"github.com/creditrust/backend/internal/cache/redis"
	"github.com/creditrust/backend/internal/embedding"
	"github.com/creditrust/backend/internal/evaluation"
	graphneo4j "github.com/creditrust/backend/internal/graph/neo4j"
	"github.com/creditrust/backend/internal/ingestion"
	"github.com/creditrust/backend/internal/metrics"
	"github.com/creditrust/backend/internal/middleware/ratelimit"
	"github.com/creditrust/backend/internal/middleware/security"
	"github.com/creditrust/backend/internal/middleware/validation"
	"github.com/creditrust/backend/internal/pipeline"
	"github.com/creditrust/backend/internal/retrieval"
	"github.com/creditrust/backend/internal/storage/sqlite"
	"github.com/creditrust/backend/internal/vector/milvus"
	"github.com/creditrust/backend/pkg/config"
	appLogger "github.com/creditrust/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Complaint Intelligence API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var embeddingCache embedding.Cache
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			embeddingCache = redisClient
		}
	}

	embedder := embedding.NewClient(
		cfg.Embedding.APIKey,
		cfg.Embedding.Model,
		cfg.Embedding.TimeoutSec,
		embeddingCache,
	)

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.APIKey,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
		embedder,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	err = milvusClient.CreateCollection(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to create collection", zap.Error(err))
	}

	var graphClient *graphneo4j.Client
	if cfg.Neo4j.Enabled {
		graphClient, err = graphneo4j.NewClient(
			cfg.Neo4j.URI,
			cfg.Neo4j.Username,
			cfg.Neo4j.Password,
			cfg.Neo4j.Database,
		)
		if err != nil {
			appLogger.Warn("Neo4j unavailable, co-occurrence graph disabled", zap.Error(err))
			graphClient = nil
		} else {
			defer graphClient.Close(context.Background())
		}
	}

	tracker := analytics.NewTracker()
	orchestrator := retrieval.NewOrchestrator(milvusClient, cfg.Retrieval)
	askPipeline := pipeline.New(orchestrator, tracker, sqliteClient)
	processor := ingestion.NewProcessor(sqliteClient, milvusClient, embedder, graphClient)
	evaluator := evaluation.NewEvaluator(askPipeline, embedder, sqliteClient)

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(rateLimiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	askHandler := handlers.NewAskHandler(askPipeline, sqliteClient)
	ingestHandler := handlers.NewIngestHandler(processor)
	graphHandler := handlers.NewGraphHandler(graphClient)
	evaluationHandler := handlers.NewEvaluationHandler(evaluator)
	feedbackHandler := handlers.NewFeedbackHandler(sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(askPipeline)

	api := app.Group("/api/v1")

	api.Post("/ask", askHandler.HandleAsk)
	api.Get("/ask/history", askHandler.GetHistory)
	api.Get("/report", askHandler.GetReport)

	api.Post("/complaints", ingestHandler.HandleIngest)
	api.Post("/complaints/csv", ingestHandler.HandleIngestCSV)

	api.Get("/graph/issues", graphHandler.GetTopIssues)
	api.Post("/evaluate", evaluationHandler.HandleEvaluate)
	api.Post("/feedback", feedbackHandler.HandleFeedback)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/ws", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		count, err := milvusClient.Count(c.Context())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not_ready",
				"error":  "vector store unreachable",
			})
		}
		return c.JSON(fiber.Map{
			"status":         "ready",
			"indexed_chunks": count,
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
