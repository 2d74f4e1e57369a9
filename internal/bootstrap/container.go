package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"doc-assistant-be/internal/config"
	"doc-assistant-be/internal/controller"
	"doc-assistant-be/internal/pkg/logger"
	"doc-assistant-be/internal/repository/memory"
	"doc-assistant-be/internal/service"
	"doc-assistant-be/pkg/chunker"
	"doc-assistant-be/pkg/embedding"
	"doc-assistant-be/pkg/llm/factory"
	"doc-assistant-be/pkg/rag/response"
	"doc-assistant-be/pkg/rag/retriever"
	"doc-assistant-be/pkg/rag/session"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(pubSub, sysLogger)
	consumerService := service.NewConsumerService(pubSub, sysLogger)

	// 3. RAG pipeline
	// Embedding provider selected by config; both options return unit vectors
	// so the index metric is the same either way.
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewHashingProvider(cfg.Rag.EmbeddingDim)
		log.Printf("[INFO] Using Embedding Provider: HASHING (dim %d)", cfg.Rag.EmbeddingDim)
	}

	registry := factory.NewRegistry(cfg.Ai.DefaultProvider)
	generator := response.NewGenerator(registry, map[string]string{
		"groq":        cfg.Keys.Groq,
		"huggingface": cfg.Keys.HuggingFace,
	}, cfg.Ai.LLMTimeout, sysLogger)

	chk := chunker.New(cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
	rtr := retriever.New(embeddingProvider, cfg.Rag.TopK)

	// 4. Session registry with TTL eviction
	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL, cfg.Session.SweepInterval)
	sessionManager := session.NewManager(sessionRepo, sysLogger)

	assistantService := service.NewAssistantService(
		cfg,
		sessionManager,
		chk,
		embeddingProvider,
		rtr,
		generator,
		registry,
		publisherService,
		sysLogger,
	)

	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),

		ConsumerService: consumerService,
	}
}
