// Package tiktoken counts model tokens with OpenAI's BPE encodings.
package tiktoken

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure counters implement the interface.
var (
	_ driven.TokenCounter = (*Counter)(nil)
	_ driven.TokenCounter = Approximate{}
)

// Counter counts tokens with a tiktoken encoding.
type Counter struct {
	mu       sync.Mutex
	encoding string
	enc      *tiktoken.Tiktoken
}

// New loads the named encoding (e.g. "cl100k_base").
// The BPE ranks are fetched on first use and cached by tiktoken-go.
func New(encoding string) (*Counter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Counter{encoding: encoding, enc: enc}, nil
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.enc.Encode(text, nil, nil))
}

// Encoding returns the encoding name.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Approximate estimates tokens as one per four runes, rounded up.
// Used when the BPE ranks cannot be loaded.
type Approximate struct{}

// Count returns the estimated number of tokens in text.
func (Approximate) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}
