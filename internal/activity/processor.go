package activity

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/citation"
)

// Default budgets for a single item.
const (
	DefaultItemTokens             = 300
	DefaultSummarizationThreshold = 300
)

// Budgeter counts and shortens text in tokens.
type Budgeter interface {
	Count(s string) int
	SmartTruncate(s string, maxTokens int) string
}

// ProcessorOptions sets the per-item token limits.
type ProcessorOptions struct {
	// ItemTokens is the ceiling an oversized item is truncated to.
	ItemTokens int
	// SummarizationThreshold is the size above which an item is truncated.
	SummarizationThreshold int
}

// Processor assigns citation IDs and budgets item text.
type Processor struct {
	tok  Budgeter
	opts ProcessorOptions
	log  zerolog.Logger
}

func (o ProcessorOptions) withDefaults() ProcessorOptions {
	if o.ItemTokens <= 0 {
		o.ItemTokens = DefaultItemTokens
	}
	if o.SummarizationThreshold <= 0 {
		o.SummarizationThreshold = DefaultSummarizationThreshold
	}
	return o
}

// NewProcessor creates a Processor. Zero options take the defaults.
func NewProcessor(tok Budgeter, opts ProcessorOptions, log zerolog.Logger) *Processor {
	return &Processor{tok: tok, opts: opts.withDefaults(), log: log}
}

// ProcessCollection processes every item of c in fetch order.
func (p *Processor) ProcessCollection(c Collection) Processed {
	return p.Process(c.All())
}

// Process orders items newest first, numbers them SRC001, SRC002, ... and
// records each ID's URL. Ties keep the input order so identical input
// always gets identical numbering.
func (p *Processor) Process(items []Item) Processed {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > citation.MaxID {
		p.log.Warn().
			Str("stage", "process").
			Int("items", len(sorted)).
			Int("dropped", len(sorted)-citation.MaxID).
			Msg("too many items for three-digit citation ids; dropping the oldest")
		sorted = sorted[:citation.MaxID]
	}

	out := Processed{
		Items:    make([]ProcessedItem, 0, len(sorted)),
		Registry: citation.NewRegistry(),
	}
	truncated := 0
	for idx, it := range sorted {
		id, err := citation.FormatID(idx + 1)
		if err != nil {
			break
		}
		pi := p.processItem(it)
		pi.CitationID = id
		if pi.Truncated {
			truncated++
		}
		// IDs are generated in sequence, so Add cannot see a duplicate.
		_ = out.Registry.Add(id, it.URL)
		out.Items = append(out.Items, pi)
	}

	p.log.Info().
		Str("stage", "process").
		Int("items", len(out.Items)).
		Int("truncated", truncated).
		Msg("processed activity")
	return out
}

func (p *Processor) processItem(it Item) ProcessedItem {
	pi := ProcessedItem{Kind: it.Kind, Title: it.Title, CreatedAt: it.CreatedAt}

	switch it.Kind {
	case KindPost:
		pi.DisplayText = fmt.Sprintf("Title: %s. Body: %s", it.Title, it.Body)
		pi.Content = it.Body
		if p.tok.Count(pi.DisplayText) > p.opts.SummarizationThreshold {
			pi.DisplayText = p.tok.SmartTruncate(pi.DisplayText, p.opts.ItemTokens)
			pi.Content = p.tok.SmartTruncate(it.Body, p.postBodyBudget(it.Title))
			pi.Truncated = true
		}
	default:
		pi.DisplayText = it.Body
		if p.tok.Count(it.Body) > p.opts.SummarizationThreshold {
			pi.DisplayText = p.tok.SmartTruncate(it.Body, p.opts.ItemTokens)
			pi.Truncated = true
		}
		pi.Content = pi.DisplayText
	}
	return pi
}

// postBodyBudget is what remains of the item ceiling after the title
// framing, but never less than half of it.
func (p *Processor) postBodyBudget(title string) int {
	budget := p.opts.ItemTokens - p.tok.Count(fmt.Sprintf("Title: %s. Body: ", title))
	if floor := p.opts.ItemTokens / 2; budget < floor {
		budget = floor
	}
	return budget
}
