package compressor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"ai-researcher-be/internal/pkg/logger"
	"ai-researcher-be/pkg/embedding"
	"ai-researcher-be/pkg/scraper"
	"ai-researcher-be/pkg/utils"
)

// Config encapsulates ranking parameters
type Config struct {
	ChunkSize      int
	ChunkOverlap   int
	ScoreThreshold float64
}

// DefaultConfig returns default ranking configuration
func DefaultConfig() Config {
	return Config{
		ChunkSize:      1000,
		ChunkOverlap:   100,
		ScoreThreshold: 0.38,
	}
}

// Compressor reduces scraped pages to the excerpts most relevant to a query.
// Pages are chunked, each chunk is embedded and scored against the query
// embedding, and only the top scoring chunks survive.
type Compressor struct {
	provider embedding.EmbeddingProvider
	config   Config
	log      logger.ILogger
}

func New(provider embedding.EmbeddingProvider, config Config, log logger.ILogger) *Compressor {
	if config.ChunkSize <= 0 {
		config = DefaultConfig()
	}
	return &Compressor{
		provider: provider,
		config:   config,
		log:      log,
	}
}

type scoredChunk struct {
	url   string
	title string
	text  string
	score float64
}

// GetContext returns up to maxResults excerpts relevant to query, formatted
// one source per block. An empty page set yields an empty context without
// error; duplicate discovery upstream makes that a normal outcome.
func (c *Compressor) GetContext(ctx context.Context, query string, pages []scraper.Page, maxResults int) (string, error) {
	if len(pages) == 0 {
		return "", nil
	}

	queryRes, err := c.provider.Generate(query, embedding.TaskTypeQuery)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}
	queryVec := queryRes.Embedding.Values

	var kept []scoredChunk
	scored := 0
	for _, page := range pages {
		chunks := utils.SplitText(page.Content, c.config.ChunkSize, c.config.ChunkOverlap)
		for _, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if strings.TrimSpace(chunk) == "" {
				continue
			}

			chunkRes, err := c.provider.Generate(chunk, embedding.TaskTypeDocument)
			if err != nil {
				return "", fmt.Errorf("embed chunk from %s: %w", page.URL, err)
			}

			scored++
			score := cosineSimilarity(queryVec, chunkRes.Embedding.Values)
			if score >= c.config.ScoreThreshold {
				kept = append(kept, scoredChunk{
					url:   page.URL,
					title: page.Title,
					text:  chunk,
					score: score,
				})
			}
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})
	if maxResults > 0 && len(kept) > maxResults {
		kept = kept[:maxResults]
	}

	c.log.Debug("compressor", "Ranked content chunks", map[string]interface{}{
		"query":  query,
		"scored": scored,
		"kept":   len(kept),
	})

	blocks := make([]string, 0, len(kept))
	for _, k := range kept {
		blocks = append(blocks, fmt.Sprintf("Source: %s\nTitle: %s\nContent: %s", k.url, k.title, k.text))
	}
	return strings.Join(blocks, "\n"), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
