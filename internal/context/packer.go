package context

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/activity"
)

// Packed is the result of a Pack call.
type Packed struct {
	Text string
	// Tokens is the exact token count of Text.
	Tokens int
	// Truncated reports that at least one item did not fit.
	Truncated     bool
	ItemsIncluded int
}

// Packer assembles processed items into a context under a token budget.
type Packer struct {
	formatter *Formatter
	tokenizer *Tokenizer
	log       zerolog.Logger
}

// NewPacker creates a Packer.
func NewPacker(formatter *Formatter, tokenizer *Tokenizer, log zerolog.Logger) *Packer {
	return &Packer{formatter: formatter, tokenizer: tokenizer, log: log}
}

// Pack appends items newest first after the preamble and stops at the first
// line that would push the context over budget. Nothing after that line is
// considered, so dropped items are always the oldest.
func (p *Packer) Pack(items []activity.ProcessedItem, budget int) Packed {
	ordered := make([]activity.ProcessedItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	text := p.formatter.Preamble()
	tokens := p.tokenizer.Count(text)
	if tokens > budget {
		p.log.Warn().
			Str("stage", "pack").
			Int("budget", budget).
			Int("preamble_tokens", tokens).
			Msg("budget too small for the preamble; no activity packed")
		return Packed{Truncated: len(ordered) > 0}
	}

	out := Packed{}
	for _, it := range ordered {
		candidate := text + p.formatter.FormatItem(it)
		// Count the whole candidate: BPE merges across line boundaries make
		// per-line sums inexact.
		n := p.tokenizer.Count(candidate)
		if n > budget {
			out.Truncated = true
			p.log.Warn().
				Str("stage", "pack").
				Int("remaining_tokens", budget-tokens).
				Int("dropped", len(ordered)-out.ItemsIncluded).
				Msg("truncating user activity provided to the model due to token limits")
			break
		}
		text, tokens = candidate, n
		out.ItemsIncluded++
	}

	out.Text = text
	out.Tokens = tokens
	p.log.Info().
		Str("stage", "pack").
		Int("items", out.ItemsIncluded).
		Int("tokens", out.Tokens).
		Msg("prepared items for model input")
	return out
}
