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
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/math-agent/backend/internal/api/handlers"
	"github.com/math-agent/backend/internal/cache/redis"
	"github.com/math-agent/backend/internal/feedback"
	"github.com/math-agent/backend/internal/guardrails"
	"github.com/math-agent/backend/internal/knowledge"
	"github.com/math-agent/backend/internal/metrics"
	"github.com/math-agent/backend/internal/middleware/ratelimit"
	"github.com/math-agent/backend/internal/middleware/security"
	"github.com/math-agent/backend/internal/middleware/validation"
	"github.com/math-agent/backend/internal/query"
	"github.com/math-agent/backend/internal/reasoning"
	"github.com/math-agent/backend/internal/search/web"
	"github.com/math-agent/backend/internal/solver"
	"github.com/math-agent/backend/internal/storage/sqlite"
	"github.com/math-agent/backend/internal/vector/milvus"
	"github.com/math-agent/backend/pkg/config"
	appLogger "github.com/math-agent/backend/pkg/logger"
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

	appLogger.Info("Starting Math Agent API Server")

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

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	err = milvusClient.CreateCollection(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to create collection", zap.Error(err))
	}

	reasoner := reasoning.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	knowledgeStore := knowledge.NewStore(reasoner, milvusClient)
	if err := knowledgeStore.Seed(context.Background()); err != nil {
		appLogger.Warn("Failed to seed knowledge corpus", zap.Error(err))
	}

	webSearcher := web.NewClient(
		cfg.Search.GoogleAPIKey,
		cfg.Search.GoogleEngineID,
		cfg.Search.MaxResults,
	)

	// Redis is an optimization, not a dependency: run without it if it is
	// unreachable.
	var answerCache query.AnswerCache
	redisClient, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Warn("Redis unavailable, answer caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		answerCache = redisClient
	}

	feedbackManager := feedback.NewManager(sqliteClient)

	classifier := guardrails.NewClassifier(guardrails.Limits{
		MaxQueryLength:  cfg.Guardrails.MaxQueryLength,
		MinQueryLength:  cfg.Guardrails.MinQueryLength,
		MaxAnswerLength: cfg.Guardrails.MaxAnswerLength,
	})

	engine := query.NewEngine(query.Options{
		Classifier: classifier,
		Knowledge:  knowledgeStore,
		Web:        webSearcher,
		Reasoner:   reasoner,
		Solver:     solver.New(),
		Store:      sqliteClient,
		Cache:      answerCache,
		Feedback:   feedbackManager,
		CacheTTL:   time.Duration(cfg.Redis.TTLSec) * time.Second,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	queryHandler := handlers.NewQueryHandler(engine, sqliteClient)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackManager)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeStore)
	wsHandler := handlers.NewWebSocketHandler(engine)

	api := app.Group("/api/v1")

	api.Post("/query", queryHandler.HandleQuery)
	api.Get("/query/history", queryHandler.GetHistory)
	api.Get("/query/:id", queryHandler.GetQuery)
	api.Get("/query/:id/feedback", feedbackHandler.HandleList)

	api.Post("/feedback", feedbackHandler.HandleSubmit)
	api.Get("/feedback/stats", feedbackHandler.HandleStats)

	api.Post("/knowledge", knowledgeHandler.HandleAdd)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/query", websocket.New(wsHandler.HandleConnection))

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
