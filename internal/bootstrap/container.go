package bootstrap

import (
	"log"
	"time"

	"ai-researcher-be/internal/config"
	"ai-researcher-be/internal/controller"
	"ai-researcher-be/internal/pkg/logger"
	"ai-researcher-be/internal/repository/implementation"
	"ai-researcher-be/internal/service"
	"ai-researcher-be/internal/websocket"
	"ai-researcher-be/pkg/compressor"
	"ai-researcher-be/pkg/embedding"
	"ai-researcher-be/pkg/embedding/jina"
	"ai-researcher-be/pkg/events"
	"ai-researcher-be/pkg/export"
	"ai-researcher-be/pkg/llm"
	"ai-researcher-be/pkg/llm/factory"
	"ai-researcher-be/pkg/researcher"
	"ai-researcher-be/pkg/scraper"
	"ai-researcher-be/pkg/search"
	searchfactory "ai-researcher-be/pkg/search/factory"
	"ai-researcher-be/pkg/tokenizer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ResearchController controller.IResearchController

	// Background Services (Exposed for main.go to run)
	ArchiveService service.IArchiveService

	// WebSockets
	SessionManager *websocket.Manager
}

// NewContainer wires the research pipeline. db may be nil; the server then
// runs without the run archive and the history endpoints answer 503.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	sessionLogger := logger.NewIsolatedLogger(cfg.App.SessionLogFilePath)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Research Pipeline
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	ranker := compressor.New(embeddingProvider, compressor.DefaultConfig(), sysLogger)

	var counter tokenizer.Counter
	if tiktoken, err := tokenizer.NewTiktokenCounter(); err != nil {
		sysLogger.Warn("bootstrap", "Tiktoken unavailable, using heuristic token counting", map[string]interface{}{
			"error": err.Error(),
		})
		counter = tokenizer.HeuristicCounter{}
	} else {
		counter = tiktoken
	}

	exporter, err := export.New(cfg.App.OutputDir, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] Failed to prepare output directory: %v", err)
	}

	newLLM := func(provider, model string) (llm.LLMProvider, error) {
		apiKey := cfg.Keys.HuggingFace
		if provider == "gemini" {
			apiKey = cfg.Keys.GoogleGemini
		}
		return factory.NewLLMProvider(provider, model, cfg.Ai.OllamaBaseURL, apiKey)
	}
	// Fail fast on a misconfigured default; a run config may still switch
	// providers later.
	if _, err := newLLM(cfg.Ai.LLMProvider, cfg.Ai.SmartLLMModel); err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.SmartLLMModel)

	scrapeTimeout := time.Duration(cfg.Research.ScrapeTimeoutSeconds) * time.Second
	researchDeps := service.ResearchDeps{
		NewRetriever: func(name, userAgent string) (search.Retriever, error) {
			return searchfactory.NewRetriever(name, cfg.Keys.Tavily, userAgent)
		},
		NewLLM: newLLM,
		NewScraper: func(userAgent string) researcher.SiteScraper {
			return scraper.New(userAgent, scrapeTimeout, sessionLogger)
		},
		Ranker:   ranker,
		Counter:  counter,
		Exporter: exporter,
		Logger:   sessionLogger,
	}

	// 3.5 Run Archive (requires a database)
	var archiveService service.IArchiveService
	if db != nil {
		publisherService := service.NewPublisherService(events.ResearchCompletedTopic, pubSub)
		researchDeps.Publisher = publisherService

		runRepo := implementation.NewResearchRunRepository(db)
		archiveService = service.NewArchiveService(pubSub, events.ResearchCompletedTopic, runRepo, sysLogger)
	}

	researchService := service.NewResearchService(cfg, researchDeps)

	sessionManager := websocket.NewManager(sysLogger)

	// 4. Controllers
	return &Container{
		ResearchController: controller.NewResearchController(
			researchService,
			archiveService,
			sessionManager,
			sessionLogger,
		),
		ArchiveService: archiveService,
		SessionManager: sessionManager,
	}
}
