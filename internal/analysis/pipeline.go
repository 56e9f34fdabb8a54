// Package analysis runs the end-to-end persona pipeline: fetch, process,
// pack, generate and normalize citations.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/activity"
	"github.com/redlens/redlens/internal/adapter"
	"github.com/redlens/redlens/internal/cache"
	"github.com/redlens/redlens/internal/citation"
	"github.com/redlens/redlens/internal/config"
	ctxpkg "github.com/redlens/redlens/internal/context"
	"github.com/redlens/redlens/internal/reddit"
)

// ErrNoReport is returned when neither report section could be generated.
var ErrNoReport = errors.New("analysis: no report could be generated")

// Options configures a single run.
type Options struct {
	Username string
	// NoCache skips cache reads. Results are still written back.
	NoCache    bool
	Budget     config.BudgetConfig
	Generation config.GenerationConfig
	// Model overrides the adapter's default model.
	Model string
	// Progress, when set, receives the run's completion percentage.
	Progress func(percent int, stage string)
}

// AssembledContext is the packed, citation-tagged context of one run.
type AssembledContext struct {
	Text          string
	Tokens        int
	Truncated     bool
	ItemsIncluded int
	Registry      *citation.Registry
}

// Result is everything a run produced.
type Result struct {
	RunID           string
	Username        string
	RawCached       bool
	ProcessedCached bool
	// Items is the number of processed items before packing.
	Items            int
	Context          AssembledContext
	ExecutiveSummary string
	Persona          string
	Warnings         []string
	GeneratedAt      time.Time
}

// Pipeline wires the stages to their collaborators. It holds no per-run
// state, so one Pipeline can serve any number of sequential runs.
type Pipeline struct {
	fetcher    reddit.Fetcher
	store      cache.Store
	llm        adapter.LLMAdapter
	tok        *ctxpkg.Tokenizer
	normalizer *citation.Normalizer
	log        zerolog.Logger
}

// New creates a Pipeline. llm may be nil when only Assemble is used.
func New(fetcher reddit.Fetcher, store cache.Store, llm adapter.LLMAdapter, tok *ctxpkg.Tokenizer, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		store:      store,
		llm:        llm,
		tok:        tok,
		normalizer: citation.NewNormalizer(),
		log:        log,
	}
}

// run carries the state of one invocation.
type run struct {
	opts   Options
	log    zerolog.Logger
	result *Result
}

func (r *run) progress(percent int, stage string) {
	if r.opts.Progress != nil {
		r.opts.Progress(percent, stage)
	}
}

func (r *run) warn(stage, msg string) {
	r.result.Warnings = append(r.result.Warnings, msg)
	r.log.Warn().Str("stage", stage).Msg(msg)
}

// Run executes the whole pipeline and returns the normalized report
// sections. A single failed section is recorded as a warning; ErrNoReport
// is returned only when both fail.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if p.llm == nil {
		return nil, fmt.Errorf("analysis: run: no generation adapter configured")
	}

	r, processed, err := p.assemble(ctx, opts)
	if err != nil {
		return nil, err
	}
	res := r.result

	if res.Context.ItemsIncluded == 0 {
		r.warn("generate", "no activity fit in the context; skipping generation")
		res.ExecutiveSummary = NoActivitySummary
		res.Persona = NoActivityPersona
		r.progress(100, "done")
		return res, nil
	}

	r.progress(60, "generating executive summary")
	summary, summaryErr := p.generate(ctx, r, "summary", SummaryPrompt(res.Context.Text),
		opts.Generation.SummaryMaxTokens, opts.Generation.SummaryTemperature)
	if summaryErr != nil {
		r.warn("generate", fmt.Sprintf("executive summary could not be generated: %v", summaryErr))
		res.ExecutiveSummary = SummaryErrorNotice
	} else {
		res.ExecutiveSummary = p.normalizer.Normalize(summary, processed.Registry)
	}

	r.progress(80, "generating persona")
	persona, personaErr := p.generate(ctx, r, "persona", PersonaPrompt(res.Context.Text),
		opts.Generation.PersonaMaxTokens, opts.Generation.PersonaTemperature)
	if personaErr != nil {
		r.warn("generate", fmt.Sprintf("persona could not be generated: %v", personaErr))
		res.Persona = PersonaErrorNotice
	} else {
		res.Persona = p.normalizer.Normalize(persona, processed.Registry)
	}

	if summaryErr != nil && personaErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoReport, errors.Join(summaryErr, personaErr))
	}

	r.progress(100, "done")
	r.log.Info().Str("stage", "done").Int("warnings", len(res.Warnings)).Msg("analysis complete")
	return res, nil
}

// Assemble fetches, processes and packs without calling the generation
// service.
func (p *Pipeline) Assemble(ctx context.Context, opts Options) (*Result, error) {
	r, _, err := p.assemble(ctx, opts)
	if err != nil {
		return nil, err
	}
	return r.result, nil
}

// Processed returns the cached processed artifact for username, fetching
// and processing it when absent.
func (p *Pipeline) Processed(ctx context.Context, opts Options) (activity.Processed, error) {
	_, processed, err := p.assemble(ctx, opts)
	return processed, err
}

func (p *Pipeline) assemble(ctx context.Context, opts Options) (*run, activity.Processed, error) {
	if opts.Budget.PackBudget() <= 0 {
		return nil, activity.Processed{}, fmt.Errorf("analysis: context budget %d-%d leaves no room", opts.Budget.ContextTokens, opts.Budget.ReservedTokens)
	}

	id := uuid.NewString()
	r := &run{
		opts: opts,
		log:  p.log.With().Str("run_id", id).Str("user", opts.Username).Logger(),
		result: &Result{
			RunID:       id,
			Username:    opts.Username,
			GeneratedAt: time.Now().UTC(),
		},
	}

	r.progress(10, "fetching activity")
	coll, err := p.fetch(ctx, r)
	if err != nil {
		return nil, activity.Processed{}, err
	}

	r.progress(30, "processing activity")
	processed := p.process(r, coll)
	r.result.Items = len(processed.Items)

	r.progress(50, "packing context")
	packer := ctxpkg.NewPacker(ctxpkg.NewFormatter(), p.tok, r.log)
	packed := packer.Pack(processed.Items, opts.Budget.PackBudget())
	if packed.Truncated {
		r.warn("pack", fmt.Sprintf("context truncated to %d of %d items to fit %d tokens",
			packed.ItemsIncluded, len(processed.Items), opts.Budget.PackBudget()))
	}
	r.result.Context = AssembledContext{
		Text:          packed.Text,
		Tokens:        packed.Tokens,
		Truncated:     packed.Truncated,
		ItemsIncluded: packed.ItemsIncluded,
		Registry:      processed.Registry,
	}
	return r, processed, nil
}

// fetch reads the raw collection from the cache or from Reddit. Only
// complete fetches are cached.
func (p *Pipeline) fetch(ctx context.Context, r *run) (activity.Collection, error) {
	key := strings.ToLower(r.opts.Username)

	var coll activity.Collection
	if !r.opts.NoCache && cache.GetJSON(p.store, key, cache.KindRaw, &coll) {
		r.result.RawCached = true
		r.log.Info().Str("stage", "fetch").Bool("cache_hit", true).Int("items", coll.Len()).Msg("loaded raw activity from cache")
		return coll, nil
	}
	r.log.Debug().Str("stage", "fetch").Bool("cache_hit", false).Msg("fetching raw activity")

	coll, err := p.fetcher.Fetch(ctx, r.opts.Username)
	var partial *reddit.PartialError
	switch {
	case errors.As(err, &partial):
		r.warn("fetch", partial.Error())
	case err != nil:
		return coll, fmt.Errorf("analysis: fetch: %w", err)
	default:
		if err := cache.PutJSON(p.store, key, cache.KindRaw, coll); err != nil {
			r.log.Warn().Str("stage", "fetch").Err(err).Msg("could not cache raw activity")
		}
	}

	if coll.Len() == 0 {
		r.warn("fetch", fmt.Sprintf("no recent comments or posts found for u/%s", r.opts.Username))
	}
	return coll, nil
}

// process reads the processed artifact for the collection's digest and item
// budgets, or builds and caches it.
func (p *Pipeline) process(r *run, coll activity.Collection) activity.Processed {
	popts := activity.ProcessorOptions{
		ItemTokens:             r.opts.Budget.ItemTokens,
		SummarizationThreshold: r.opts.Budget.SummarizationThreshold,
	}
	key := activity.CacheKey(coll, popts)

	var processed activity.Processed
	if !r.opts.NoCache && cache.GetJSON(p.store, key, cache.KindProcessed, &processed) && processed.Registry != nil {
		r.result.ProcessedCached = true
		r.log.Info().Str("stage", "process").Bool("cache_hit", true).Str("key", key[:12]).Msg("loaded processed activity from cache")
		return processed
	}

	processed = activity.NewProcessor(p.tok, popts, r.log).ProcessCollection(coll)

	if err := cache.PutJSON(p.store, key, cache.KindProcessed, processed); err != nil {
		r.log.Warn().Str("stage", "process").Err(err).Msg("could not cache processed activity")
	}
	return processed
}

func (p *Pipeline) generate(ctx context.Context, r *run, section, prompt string, maxTokens int, temperature float64) (string, error) {
	start := time.Now()
	text, err := p.llm.Complete(ctx, adapter.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  prompt,
		Model:        r.opts.Model,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", section, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: empty response", section)
	}
	r.log.Info().
		Str("stage", "generate").
		Str("section", section).
		Dur("took", time.Since(start)).
		Msg("generated section")
	return text, nil
}
