package researcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(Config{}, "")

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxSearchResultsPerQuery)
	assert.Equal(t, 3, cfg.MaxSubQueries)
	assert.Equal(t, 16385, cfg.SmartTokenMax)
	assert.Equal(t, 10000, cfg.PromptTokenLimit)
	assert.Equal(t, 1000, cfg.TotalWords)
}

func TestNewConfigKeepsBaseValues(t *testing.T) {
	base := Config{
		Retriever:                "tavily",
		SmartLLMModel:            "llama3",
		MaxSearchResultsPerQuery: 7,
		PromptTokenLimit:         4000,
		TotalWords:               1500,
	}

	cfg, err := NewConfig(base, "")

	require.NoError(t, err)
	assert.Equal(t, "tavily", cfg.Retriever)
	assert.Equal(t, "llama3", cfg.SmartLLMModel)
	assert.Equal(t, 7, cfg.MaxSearchResultsPerQuery)
	assert.Equal(t, 4000, cfg.PromptTokenLimit)
	assert.Equal(t, 1500, cfg.TotalWords)
}

func TestNewConfigFileOverridesBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"retriever": "duckduckgo",
		"prompt_token_limit": 6000,
		"agent_role": "You are a test analyst."
	}`), 0o644))

	base := Config{Retriever: "tavily", SmartLLMModel: "llama3", PromptTokenLimit: 4000}
	cfg, err := NewConfig(base, path)

	require.NoError(t, err)
	assert.Equal(t, "duckduckgo", cfg.Retriever)
	assert.Equal(t, 6000, cfg.PromptTokenLimit)
	assert.Equal(t, "You are a test analyst.", cfg.AgentRole)
	// Fields the file does not name keep their base values.
	assert.Equal(t, "llama3", cfg.SmartLLMModel)
	// Defaults still backfill what neither base nor file set.
	assert.Equal(t, 1000, cfg.TotalWords)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(Config{}, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestNewConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("not a json document"), 0o644))

	_, err := NewConfig(Config{}, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}
