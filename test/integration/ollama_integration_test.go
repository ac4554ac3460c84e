// FILE: test/integration/ollama_integration_test.go
// PURPOSE: Local Ollama integration tests for the LLM and embedding providers
// NOTE: Requires a running Ollama server. Tests are skipped when the server
//       is unreachable, so the suite stays green on machines without it.

package integration

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"ai-researcher-be/pkg/embedding"
	"ai-researcher-be/pkg/llm"
	"ai-researcher-be/pkg/llm/ollama"
)

// ============================================================
// OLLAMA CONFIGURATION
// ============================================================

const (
	defaultOllamaBaseURL        = "http://localhost:11434"
	defaultOllamaChatModel      = "llama3"
	defaultOllamaEmbeddingModel = "nomic-embed-text"
)

func ollamaBaseURL() string {
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return url
	}
	return defaultOllamaBaseURL
}

func ollamaChatModel() string {
	if model := os.Getenv("SMART_LLM_MODEL"); model != "" {
		return model
	}
	return defaultOllamaChatModel
}

func ollamaEmbeddingModel() string {
	if model := os.Getenv("OLLAMA_EMBEDDING_MODEL"); model != "" {
		return model
	}
	return defaultOllamaEmbeddingModel
}

// requireOllama skips the calling test when no Ollama server answers.
func requireOllama(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ollamaBaseURL(), nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Skipf("Skipping integration test: Ollama not running at %s: %v", ollamaBaseURL(), err)
	}
	res.Body.Close()
}

// ============================================================
// LLM PROVIDER TESTS
// ============================================================

// TestOllamaConnection verifies Ollama is running and accessible
func TestOllamaConnection(t *testing.T) {
	requireOllama(t)
	t.Logf("✅ Ollama is running at %s", ollamaBaseURL())
}

// TestOllamaGenerate tests the single-prompt convenience path
func TestOllamaGenerate(t *testing.T) {
	requireOllama(t)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	provider := ollama.NewOllamaProvider(ollamaBaseURL(), ollamaChatModel())
	response, err := provider.Generate(ctx, "Say 'Ollama works!' in one short sentence.")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Logf("✅ Response: %s", response)
	if response == "" {
		t.Error("Response should not be empty")
	}
}

// TestOllamaMultiTurnConversation tests context retention across a chat
func TestOllamaMultiTurnConversation(t *testing.T) {
	requireOllama(t)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	provider := ollama.NewOllamaProvider(ollamaBaseURL(), ollamaChatModel())
	response, err := provider.Chat(ctx, []llm.Message{
		{Role: "user", Content: "My name is John"},
		{Role: "assistant", Content: "Nice to meet you, John!"},
		{Role: "user", Content: "What is my name?"},
	})
	if err != nil {
		t.Fatalf("Multi-turn conversation failed: %v", err)
	}

	t.Logf("✅ Response: %s", response)
	if !strings.Contains(response, "John") {
		t.Logf("⚠️ Response may not correctly remember the name. Response: %s", response)
	}
}

// TestOllamaSubQueryJSON tests the JSON discipline the sub-query
// decomposition step depends on
func TestOllamaSubQueryJSON(t *testing.T) {
	requireOllama(t)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	provider := ollama.NewOllamaProvider(ollamaBaseURL(), ollamaChatModel())
	response, err := provider.Generate(ctx,
		`Write 3 google search queries to search online that form an objective opinion from the following: "impact of interest rates on housing"
You must respond with a list of strings in the following format: ["query 1", "query 2", "query 3"].`,
		llm.WithTemperature(0))
	if err != nil {
		t.Fatalf("Sub-query generation failed: %v", err)
	}

	t.Logf("Raw response: %s", response)

	// Tolerate prose and code fences around the list, the way the agent does.
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var queries []string
	if err := json.Unmarshal([]byte(cleaned), &queries); err != nil {
		t.Logf("⚠️ Sub-query list unparseable: %v", err)
		t.Skip("Skipping due to parsing error - model may need different prompting")
		return
	}

	t.Logf("✅ Parsed %d sub-queries: %v", len(queries), queries)
	if len(queries) == 0 {
		t.Error("Expected at least one sub-query")
	}
}

// ============================================================
// EMBEDDING PROVIDER TESTS
// ============================================================

// TestOllamaEmbeddingGenerate verifies embeddings come back normalized
func TestOllamaEmbeddingGenerate(t *testing.T) {
	requireOllama(t)

	provider := embedding.NewOllamaProvider(ollamaBaseURL(), ollamaEmbeddingModel())
	res, err := provider.Generate("Interest rates shape housing affordability.", embedding.TaskTypeDocument)
	if err != nil {
		t.Fatalf("Embedding generation failed: %v", err)
	}

	values := res.Embedding.Values
	if len(values) == 0 {
		t.Fatal("Embedding should not be empty")
	}

	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)

	t.Logf("✅ Embedding dimension: %d, norm: %.4f", len(values), norm)
	if math.Abs(norm-1.0) > 0.01 {
		t.Errorf("Embedding should be unit-normalized, got norm %.4f", norm)
	}
}

// TestOllamaEmbeddingSimilarity checks that related text scores higher than
// unrelated text, which the ranking threshold depends on
func TestOllamaEmbeddingSimilarity(t *testing.T) {
	requireOllama(t)

	provider := embedding.NewOllamaProvider(ollamaBaseURL(), ollamaEmbeddingModel())

	embed := func(text, taskType string) []float32 {
		t.Helper()
		res, err := provider.Generate(text, taskType)
		if err != nil {
			t.Fatalf("Embedding generation failed: %v", err)
		}
		return res.Embedding.Values
	}

	query := embed("impact of interest rates on housing", embedding.TaskTypeQuery)
	related := embed("Mortgage rates climbed again this quarter, cooling home sales.", embedding.TaskTypeDocument)
	unrelated := embed("The recipe calls for two cups of flour and a pinch of salt.", embedding.TaskTypeDocument)

	cosine := func(a, b []float32) float64 {
		var dot float64
		for i := range a {
			dot += float64(a[i]) * float64(b[i])
		}
		return dot // vectors are unit-normalized
	}

	relatedScore := cosine(query, related)
	unrelatedScore := cosine(query, unrelated)
	t.Logf("Related score: %.4f, unrelated score: %.4f", relatedScore, unrelatedScore)

	if relatedScore <= unrelatedScore {
		t.Errorf("Related text should outscore unrelated text: %.4f <= %.4f", relatedScore, unrelatedScore)
	}
}
