package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"ai-researcher-be/internal/config"
	"ai-researcher-be/internal/dto"
	"ai-researcher-be/internal/pkg/logger"
	"ai-researcher-be/pkg/events"
	"ai-researcher-be/pkg/export"
	"ai-researcher-be/pkg/llm"
	"ai-researcher-be/pkg/researcher"
	"ai-researcher-be/pkg/search"
	"ai-researcher-be/pkg/tokenizer"

	"github.com/google/uuid"
)

type IResearchService interface {
	RunResearch(ctx context.Context, stream researcher.Stream, req *dto.StartResearchRequest) error
}

// IExporter writes a finished report to disk in every served format.
type IExporter interface {
	Export(runID, report string) (*export.Artifacts, error)
}

// ResearchDeps are the collaborator constructors and singletons a research
// session draws from. Retriever, LLM and scraper are built per run because
// a run's config file may override which one to use.
type ResearchDeps struct {
	NewRetriever func(name, userAgent string) (search.Retriever, error)
	NewLLM       func(provider, model string) (llm.LLMProvider, error)
	NewScraper   func(userAgent string) researcher.SiteScraper
	Ranker       researcher.ContextRanker
	Counter      tokenizer.Counter
	Exporter     IExporter
	Publisher    IPublisherService
	Logger       logger.ILogger
	Rand         *rand.Rand
}

type researchService struct {
	cfg  *config.Config
	deps ResearchDeps
}

func NewResearchService(cfg *config.Config, deps ResearchDeps) IResearchService {
	return &researchService{
		cfg:  cfg,
		deps: deps,
	}
}

// RunResearch executes one research task end to end: resolve the run config,
// assemble the pipeline, run it, write the export files, and announce their
// paths on the stream. Progress and usage frames flow through stream while
// the run executes.
func (s *researchService) RunResearch(ctx context.Context, stream researcher.Stream, req *dto.StartResearchRequest) error {
	runID := uuid.New()
	startTime := time.Now()

	s.deps.Logger.Info("research", "Starting research run", map[string]interface{}{
		"run_id":      runID,
		"task":        req.Task,
		"report_type": req.ReportType,
	})

	runCfg, err := s.resolveConfig(req)
	if err != nil {
		return err
	}

	retriever, err := s.deps.NewRetriever(runCfg.Retriever, runCfg.UserAgent)
	if err != nil {
		return fmt.Errorf("resolve retriever: %w", err)
	}
	llmProvider, err := s.deps.NewLLM(runCfg.LLMProvider, runCfg.SmartLLMModel)
	if err != nil {
		return fmt.Errorf("resolve llm provider: %w", err)
	}

	research := researcher.NewResearcher(researcher.Params{
		Query:      req.Task,
		ReportType: req.ReportType,
		SourceURLs: req.SourceURLs,
		Config:     runCfg,
	}, researcher.Deps{
		Retriever: retriever,
		Scraper:   s.deps.NewScraper(runCfg.UserAgent),
		Ranker:    s.deps.Ranker,
		LLM:       llmProvider,
		Counter:   s.deps.Counter,
		Stream:    stream,
		Logger:    s.deps.Logger,
		Rand:      s.deps.Rand,
	})

	result, err := research.Run(ctx)
	if err != nil {
		return err
	}

	duration := time.Since(startTime)
	if stream != nil {
		stream.Stream("logs", fmt.Sprintf("\nTotal run time: %s\n", duration.Round(time.Millisecond)))
	}

	artifacts, err := s.deps.Exporter.Export(runID.String(), result.Report)
	if err != nil {
		return err
	}
	if stream != nil {
		stream.Stream("path", map[string]interface{}{
			"pdf":  artifacts.PDF,
			"docx": artifacts.DOCX,
		})
	}

	s.publishCompleted(ctx, runID, req, result, artifacts, duration)

	s.deps.Logger.Info("research", "Research run finished", map[string]interface{}{
		"run_id":            runID,
		"agent":             result.Agent,
		"duration_ms":       duration.Milliseconds(),
		"prompt_tokens":     result.PromptTokens,
		"completion_tokens": result.CompletionTokens,
		"visited_urls":      len(result.VisitedURLs),
	})
	return nil
}

// resolveConfig layers the run parameters: server defaults, then the start
// command overrides, then the optional JSON config file.
func (s *researchService) resolveConfig(req *dto.StartResearchRequest) (*researcher.Config, error) {
	base := researcher.Config{
		Retriever:                s.cfg.Research.Retriever,
		EmbeddingProvider:        s.cfg.Ai.EmbeddingProvider,
		LLMProvider:              s.cfg.Ai.LLMProvider,
		FastLLMModel:             s.cfg.Ai.FastLLMModel,
		SmartLLMModel:            s.cfg.Ai.SmartLLMModel,
		Temperature:              s.cfg.Research.Temperature,
		MaxSearchResultsPerQuery: s.cfg.Research.MaxSearchResultsPerQuery,
		MaxSubQueries:            s.cfg.Research.MaxSubQueries,
		SmartTokenMax:            s.cfg.Research.SmartTokenMax,
		PromptTokenLimit:         s.cfg.Research.PromptTokenLimit,
		TotalWords:               s.cfg.Research.TotalWords,
		UserAgent:                s.cfg.Research.UserAgent,
	}
	if req.PromptTokenLimit > 0 {
		base.PromptTokenLimit = req.PromptTokenLimit
	}
	if req.TotalWords > 0 {
		base.TotalWords = req.TotalWords
	}
	return researcher.NewConfig(base, req.ConfigPath)
}

func (s *researchService) publishCompleted(
	ctx context.Context,
	runID uuid.UUID,
	req *dto.StartResearchRequest,
	result *researcher.Result,
	artifacts *export.Artifacts,
	duration time.Duration,
) {
	if s.deps.Publisher == nil {
		return
	}

	event := events.ResearchCompleted{
		RunID:            runID.String(),
		Query:            req.Task,
		ReportType:       req.ReportType,
		Agent:            result.Agent,
		Report:           result.Report,
		Model:            result.Model,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		SourceURLs:       result.VisitedURLs,
		SubQueries:       result.SubQueries,
		PDFPath:          artifacts.PDF,
		DocxPath:         artifacts.DOCX,
		DurationMs:       duration.Milliseconds(),
		OccurredAt:       time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.deps.Logger.Warn("research", "Failed to marshal completion event", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
		return
	}

	// Archiving is auxiliary; a publish failure never fails the run.
	if err := s.deps.Publisher.Publish(ctx, payload); err != nil {
		s.deps.Logger.Warn("research", "Failed to publish completion event", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
	}
}
