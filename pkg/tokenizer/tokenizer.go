package tokenizer

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter reports how many prompt tokens a piece of text costs. The budgeter
// and the usage accounting both depend on it, so implementations must be
// stable for identical input.
type Counter interface {
	Count(text string) int
}

// TiktokenCounter counts with the cl100k_base BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return &TiktokenCounter{encoding: enc}, nil
}

func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// HeuristicCounter estimates roughly four characters per token. The encoding
// loader fetches BPE ranks over the network, so an offline bootstrap falls
// back to this estimate instead of refusing to start.
type HeuristicCounter struct{}

func (HeuristicCounter) Count(text string) int {
	return utf8.RuneCountInString(text) / 4
}
