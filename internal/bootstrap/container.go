package bootstrap

import (
	"context"
	"log"

	"docrag-be/internal/config"
	"docrag-be/internal/controller"
	"docrag-be/internal/pkg/logger"
	"docrag-be/internal/repository/memory"
	"docrag-be/internal/repository/unitofwork"
	"docrag-be/internal/service"
	"docrag-be/pkg/database"
	"docrag-be/pkg/embedding"
	"docrag-be/pkg/llm"
	"docrag-be/pkg/llm/factory"
	"docrag-be/pkg/lock"
	"docrag-be/pkg/rag/citation"
	"docrag-be/pkg/rag/ingest"
	"docrag-be/pkg/rag/orchestrator"
	"docrag-be/pkg/rag/retrieve"
	"docrag-be/pkg/store"

	pktNats "docrag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	InsightController  controller.IInsightController

	// Background Services (Exposed for main.go to run)
	CleanupService service.ICleanupService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var uowFactory unitofwork.RepositoryFactory
	if cfg.Store.Driver == "memory" {
		uowFactory = memory.NewFactory(memory.NewStore())
		log.Printf("[INFO] Using Store: MEMORY")
	} else {
		db, err := database.NewGormDBFromDSN(cfg.Store.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to database: %v", err)
		}
		uowFactory = unitofwork.NewRepositoryFactory(db)
		log.Printf("[INFO] Using Store: POSTGRES")
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		log.Fatalf("[FATAL] Unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	streamingProvider, ok := llmProvider.(llm.StreamingProvider)
	if !ok {
		log.Fatalf("[FATAL] LLM provider %s does not support streaming", cfg.Ai.LLMProvider)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis lock, with a local fallback for single-instance deployments
	var sessionLock lock.SessionLock
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Using in-process lock", err)
		sessionLock = lock.NewLocalLock()
	} else {
		sessionLock = lock.NewRedisLock(rdb)
	}

	sessionCache := store.NewSessionCache()

	// 4. RAG Pipeline
	// Ingestion is chatty per chunk, so it writes to its own log file.
	ingestLogger := logger.NewIsolatedLogger("logs/ingest.log")

	retriever := retrieve.NewVectorRetriever(uowFactory, embeddingProvider, cfg.Chat.SimilarityThreshold)
	ingestor := ingest.NewIngestor(uowFactory, embeddingProvider, ingestLogger, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	citationMapper := citation.NewMapper(cfg.Chat.SnippetLength)

	orch := orchestrator.New(uowFactory, retriever, streamingProvider, citationMapper, sysLogger, orchestrator.Config{
		TopK:          cfg.Chat.TopK,
		HistoryLimit:  cfg.Chat.HistoryLimit,
		ContextBudget: cfg.Chat.ContextBudget,
		BufferSize:    cfg.Chat.StreamBufferSize,
	})

	// 5. Services
	sessionService := service.NewSessionService(
		uowFactory,
		ingestor,
		sessionLock,
		sessionCache,
		pubSub,
		natsPub,
		sysLogger,
		cfg.Ingest,
		cfg.App.UploadDir,
	)
	chatService := service.NewChatService(uowFactory, orch, sysLogger)
	insightService := service.NewInsightService(uowFactory, sysLogger)
	cleanupService := service.NewCleanupService(pubSub, retriever, sysLogger, cfg.App.UploadDir)

	// 6. Controllers
	return &Container{
		DocumentController: controller.NewDocumentController(sessionService),
		ChatController:     controller.NewChatController(chatService, sysLogger),
		InsightController:  controller.NewInsightController(insightService),

		CleanupService: cleanupService,
	}
}
