package cli

import (
	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/adapter"
	"github.com/redlens/redlens/internal/analysis"
	"github.com/redlens/redlens/internal/cache"
	"github.com/redlens/redlens/internal/config"
	ctxpkg "github.com/redlens/redlens/internal/context"
	"github.com/redlens/redlens/internal/reddit"
)

// newPipeline wires a pipeline from cfg. The caller closes the returned
// store. llm may be nil for commands that never generate.
func newPipeline(cfg config.Config, llm adapter.LLMAdapter, log zerolog.Logger) (*analysis.Pipeline, cache.Store, error) {
	tok, err := ctxpkg.NewTokenizer()
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}
	fetcher := reddit.NewClient(reddit.Options{
		BaseURL:      cfg.Reddit.BaseURL,
		UserAgent:    cfg.Reddit.UserAgent,
		MaxItems:     cfg.Reddit.MaxItems,
		RequestDelay: cfg.Reddit.RequestDelay(),
	}, log)
	return analysis.New(fetcher, store, llm, tok, log), store, nil
}

func pipelineOptions(cfg config.Config, username string, noCache bool) analysis.Options {
	return analysis.Options{
		Username:   username,
		NoCache:    noCache,
		Budget:     cfg.Budget,
		Generation: cfg.Generation,
		Model:      cfg.Model,
	}
}
