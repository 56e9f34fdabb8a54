// Package context builds token-budget-aware prompts from processed activity.
package context

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Encoding is the single encoding used for every token count in redlens.
// Counts taken with any other encoding are not comparable.
const Encoding = "cl100k_base"

// Tokenizer wraps tiktoken for token counting and slicing.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer creates a Tokenizer using the cl100k_base encoding.
func NewTokenizer() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding: %w", err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in s.
func (t *Tokenizer) Count(s string) int {
	if s == "" {
		return 0
	}
	return len(t.enc.Encode(s, nil, nil))
}

// Encode returns the token ids for s.
func (t *Tokenizer) Encode(s string) []int {
	if s == "" {
		return nil
	}
	return t.enc.Encode(s, nil, nil)
}

// Decode turns token ids back into text.
func (t *Tokenizer) Decode(tokens []int) string {
	if len(tokens) == 0 {
		return ""
	}
	return t.enc.Decode(tokens)
}

// Truncate cuts s to a prefix of at most maxTokens tokens.
func (t *Tokenizer) Truncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.Encode(s)
	if len(tokens) <= maxTokens {
		return s
	}
	return t.prefix(tokens, maxTokens)
}

// prefix decodes the first n tokens. Cutting inside a multi-byte rune can
// re-encode to more tokens than were kept, so n shrinks until the decoded
// text fits.
func (t *Tokenizer) prefix(tokens []int, maxTokens int) string {
	for n := maxTokens; n > 0; n-- {
		out := t.Decode(tokens[:n])
		if t.Count(out) <= maxTokens {
			return out
		}
	}
	return ""
}
