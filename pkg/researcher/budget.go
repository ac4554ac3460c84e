package researcher

import (
	"math/rand"
	"strings"

	"ai-researcher-be/pkg/tokenizer"
)

// BufferTokens is the fixed safety margin reserved out of the prompt budget
// to absorb tokenization estimate error.
const BufferTokens = 512

// ContentBlock is the compressed result of gathering for one sub-query.
// Immutable once produced.
type ContentBlock struct {
	SubQuery string
	Content  string
	URLs     []string
}

func serializeContext(blocks []ContentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.Content)
	}
	return strings.Join(parts, "\n\n")
}

// tokenBudget computes the usable context budget for a run:
// min(smart model ceiling - reserved answer space, configured limit),
// minus the safety margin.
func tokenBudget(cfg *Config) int {
	limit := cfg.SmartTokenMax - cfg.TotalWords*2
	if cfg.PromptTokenLimit < limit {
		limit = cfg.PromptTokenLimit
	}
	return limit - BufferTokens
}

// fitContext evicts blocks chosen uniformly at random until the serialized
// context fits limit, or nothing is left. Random rather than FIFO/LRU:
// sub-query contributions have no inherent priority ordering, so unbiased
// removal avoids starving any one sub-query's contribution.
func fitContext(blocks []ContentBlock, limit int, counter tokenizer.Counter, rng *rand.Rand) []ContentBlock {
	fitted := make([]ContentBlock, len(blocks))
	copy(fitted, blocks)

	for len(fitted) > 0 && counter.Count(serializeContext(fitted)) > limit {
		i := rng.Intn(len(fitted))
		fitted = append(fitted[:i], fitted[i+1:]...)
	}
	return fitted
}
