package researcher

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ai-researcher-be/internal/pkg/logger"
	"ai-researcher-be/pkg/llm"
	"ai-researcher-be/pkg/scraper"
	"ai-researcher-be/pkg/search"
	"ai-researcher-be/pkg/tokenizer"
)

// maxRankResults caps how many ranked excerpts one sub-query contributes.
const maxRankResults = 4

// Stream receives progress messages while a run executes. Implementations
// must tolerate being called from multiple goroutines.
type Stream interface {
	Stream(msgType string, output interface{})
}

// SiteScraper fetches page content for a batch of urls. Unreachable urls are
// dropped, not reported.
type SiteScraper interface {
	Scrape(ctx context.Context, urls []string) []scraper.Page
}

// ContextRanker selects the page excerpts most relevant to a query.
type ContextRanker interface {
	GetContext(ctx context.Context, query string, pages []scraper.Page, maxResults int) (string, error)
}

// Params describe one research task.
type Params struct {
	Query      string
	ReportType string
	SourceURLs []string
	Config     *Config
}

// Deps are the collaborators a run needs. Stream may be nil for headless
// runs; Rand may be nil and defaults to a time-seeded source.
type Deps struct {
	Retriever search.Retriever
	Scraper   SiteScraper
	Ranker    ContextRanker
	LLM       llm.LLMProvider
	Counter   tokenizer.Counter
	Stream    Stream
	Logger    logger.ILogger
	Rand      *rand.Rand
}

// Result is the outcome of a completed run.
type Result struct {
	Report           string
	Agent            string
	Role             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	SubQueries       []string
	VisitedURLs      []string
}

// Researcher executes a single research task: it selects an agent persona,
// gathers and ranks web content, trims it to the token budget, and writes
// the final report. One instance serves exactly one run.
type Researcher struct {
	params  Params
	deps    Deps
	visited *visitedSet

	subQueries []string
}

func NewResearcher(params Params, deps Deps) *Researcher {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Researcher{
		params:  params,
		deps:    deps,
		visited: newVisitedSet(),
	}
}

// Run executes the full research pipeline and returns the report plus run
// metadata. It is not safe to call Run twice on the same Researcher.
func (r *Researcher) Run(ctx context.Context) (*Result, error) {
	cfg := r.params.Config

	r.deps.Logger.Info("researcher", fmt.Sprintf("🔎 Running research for '%s'...", r.params.Query), map[string]interface{}{
		"report_type": r.params.ReportType,
	})

	agent, role := r.chooseAgent(ctx)
	r.stream("logs", agent)

	var blocks []ContentBlock
	var err error
	if len(r.params.SourceURLs) > 0 {
		blocks, err = r.getContextByURLs(ctx, r.params.SourceURLs)
	} else {
		blocks, err = r.getContextBySearch(ctx, r.params.Query)
	}
	if err != nil {
		return nil, err
	}

	if r.params.ReportType == "custom_report" && cfg.AgentRole != "" {
		role = cfg.AgentRole
	}
	r.stream("logs", fmt.Sprintf("✍️ Writing %s for research task: %s...", r.params.ReportType, r.params.Query))

	limit := tokenBudget(cfg)
	fitted := fitContext(blocks, limit, r.deps.Counter, r.deps.Rand)
	if len(fitted) < len(blocks) {
		r.deps.Logger.Info("researcher", "Trimmed context to fit token budget", map[string]interface{}{
			"kept":    len(fitted),
			"dropped": len(blocks) - len(fitted),
			"limit":   limit,
		})
	}
	promptTokens := r.deps.Counter.Count(serializeContext(fitted)) + BufferTokens

	report, err := r.generateReport(ctx, role, serializeContext(fitted))
	if err != nil {
		return nil, err
	}
	completionTokens := r.deps.Counter.Count(report)

	r.stream("usage", map[string]interface{}{
		"prompt_tokens":     promptTokens,
		"completion_tokens": completionTokens,
		"smart_llm_model":   cfg.SmartLLMModel,
	})

	return &Result{
		Report:           report,
		Agent:            agent,
		Role:             role,
		Model:            cfg.SmartLLMModel,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		SubQueries:       r.subQueries,
		VisitedURLs:      r.visited.URLs(),
	}, nil
}

func (r *Researcher) stream(msgType string, output interface{}) {
	if r.deps.Stream != nil {
		r.deps.Stream.Stream(msgType, output)
	}
}
