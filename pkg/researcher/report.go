package researcher

import (
	"context"
	"fmt"

	"ai-researcher-be/pkg/llm"
)

// chooseAgent asks the LLM to pick an agent persona for the query. Selection
// is best effort: any failure falls back to the default persona so a flaky
// model cannot kill the run this early.
func (r *Researcher) chooseAgent(ctx context.Context) (string, string) {
	response, err := r.deps.LLM.Chat(ctx, []llm.Message{
		{Role: "system", Content: autoAgentInstructions()},
		{Role: "user", Content: fmt.Sprintf("task: %q", r.params.Query)},
	}, llm.WithTemperature(0))
	if err != nil {
		r.deps.Logger.Warn("researcher", "Agent selection failed, using default agent", map[string]interface{}{
			"error": err.Error(),
		})
		return defaultAgent, defaultRole
	}

	agent, role, err := parseAgentResponse(response)
	if err != nil {
		r.deps.Logger.Warn("researcher", "Agent response unparseable, using default agent", map[string]interface{}{
			"error": err.Error(),
		})
		return defaultAgent, defaultRole
	}
	return agent, role
}

// getSubQueries asks the LLM to decompose the research task. Unlike agent
// selection there is no sensible fallback here, so failure is fatal.
func (r *Researcher) getSubQueries(ctx context.Context, query string) ([]string, error) {
	maxQueries := r.params.Config.MaxSubQueries

	response, err := r.deps.LLM.Generate(ctx,
		generateSearchQueriesPrompt(query, maxQueries),
		llm.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("generate sub queries: %w", err)
	}

	subQueries, err := parseSubQueries(response)
	if err != nil {
		return nil, fmt.Errorf("generate sub queries: %w", err)
	}
	if len(subQueries) > maxQueries {
		subQueries = subQueries[:maxQueries]
	}
	return subQueries, nil
}

func (r *Researcher) generateReport(ctx context.Context, role, contextStr string) (string, error) {
	cfg := r.params.Config
	prompt := reportPromptByType(r.params.ReportType, r.params.Query, contextStr, cfg.TotalWords)

	report, err := r.deps.LLM.Chat(ctx, []llm.Message{
		{Role: "system", Content: role},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(cfg.Temperature))
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", r.params.ReportType, err)
	}
	return report, nil
}
