package researcher

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the resolved parameters of one research run. It starts from
// server defaults, may be patched by the start command, and finally by an
// optional JSON config file; after that it is read-only for the run.
type Config struct {
	Retriever                string  `json:"retriever"`
	EmbeddingProvider        string  `json:"embedding_provider"`
	LLMProvider              string  `json:"llm_provider"`
	FastLLMModel             string  `json:"fast_llm_model"`
	SmartLLMModel            string  `json:"smart_llm_model"`
	Temperature              float64 `json:"temperature"`
	MaxSearchResultsPerQuery int     `json:"max_search_results_per_query"`
	MaxSubQueries            int     `json:"max_sub_queries"`
	SmartTokenMax            int     `json:"smart_token_max"`
	PromptTokenLimit         int     `json:"prompt_token_limit"`
	TotalWords               int     `json:"total_words"`
	AgentRole                string  `json:"agent_role"`
	UserAgent                string  `json:"user_agent"`
}

// NewConfig finalizes a run config. A named but missing or malformed config
// file is a configuration error and aborts the run before gathering starts.
func NewConfig(base Config, configPath string) (*Config, error) {
	cfg := base

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	if cfg.MaxSearchResultsPerQuery <= 0 {
		cfg.MaxSearchResultsPerQuery = 5
	}
	if cfg.MaxSubQueries <= 0 {
		cfg.MaxSubQueries = 3
	}
	if cfg.SmartTokenMax <= 0 {
		cfg.SmartTokenMax = 16385
	}
	if cfg.PromptTokenLimit <= 0 {
		cfg.PromptTokenLimit = 10000
	}
	if cfg.TotalWords <= 0 {
		cfg.TotalWords = 1000
	}

	return &cfg, nil
}
