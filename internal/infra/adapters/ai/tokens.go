package ai

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"travel-itinerary-api/internal/domain/ports/adapter"
)

var _ adapter.TokenCounter = (*TiktokenCounter)(nil)

// TiktokenCounter estimates prompt size with the cl100k_base BPE. AI21 does
// not publish its tokenizer, so this is an approximation used for logs and
// metrics, never for gating a request.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

func (c *TiktokenCounter) CountTokens(text string) (int, error) {
	return len(c.enc.Encode(text, nil, nil)), nil
}
