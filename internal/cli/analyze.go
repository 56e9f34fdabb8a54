package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/redlens/redlens/internal/adapter"
	"github.com/redlens/redlens/internal/analysis"
	"github.com/redlens/redlens/internal/reddit"
	"github.com/redlens/redlens/internal/report"
)

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	var (
		out      string
		format   string
		noCache  bool
		provider string
		model    string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <profile-url | u/name | name>",
		Short: "Generate a citation-linked persona report for a Reddit user",
		Long: `Fetch a user's recent comments and posts, build the cited context, and ask
the configured LLM for an executive summary and a persona. Citation markers
in the output are rewritten into [source](url) links.

The report is written to {username}_reddit_persona_report.{ext} unless --out
is given. Use --out - to print it instead.

Examples:
  redlens analyze https://www.reddit.com/user/spez/
  redlens analyze spez --format json --out -
  redlens analyze spez --provider claude --model claude-sonnet-4-5 --no-cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose && g.logLevel == "" {
				g.logLevel = "debug"
			}
			cfg, log, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			format = strings.ToLower(format)
			exporter, ok := report.Get(format)
			if !ok {
				return fmt.Errorf("unknown format %q; valid formats: %s",
					format, strings.Join(report.ValidFormats(), ", "))
			}

			username, err := reddit.ParseProfileURL(args[0])
			if err != nil {
				return err
			}

			if provider != "" && !strings.EqualFold(provider, cfg.Provider) {
				// The configured model belongs to the configured provider.
				cfg.Provider = provider
				cfg.Model = ""
			}
			if model != "" {
				cfg.Model = model
			}
			llm, err := adapter.New(cfg.Provider, cfg.Model, cfg.APIKey(cfg.Provider), cfg.Ollama.Host)
			if err != nil {
				return err
			}

			pipe, store, err := newPipeline(cfg, llm, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			opts := pipelineOptions(cfg, username, noCache)
			bar := newProgressBar(cmd.ErrOrStderr())
			if bar != nil {
				opts.Progress = func(percent int, stage string) {
					bar.Describe("  " + stage)
					_ = bar.Set(percent)
				}
			}

			res, err := pipe.Run(ctx, opts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return describeRunError(username, err)
			}

			data := report.FromResult(res)
			text, err := exporter.Export(data)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			path := out
			if path == "" {
				if path, err = report.DefaultFilename(username, format); err != nil {
					return err
				}
			}
			if err := writeOutput(cmd, path, text); err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			for _, w := range res.Warnings {
				fmt.Fprintf(stderr, "Warning: %s\n", w)
			}
			if verbose {
				printRunStats(stderr, res)
			}
			if path != "-" {
				fmt.Fprintf(stderr, "Report for u/%s written to %s\n", username, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path, or - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: "+strings.Join(report.ValidFormats(), ", "))
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached activity and rebuild it")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: claude, openai, groq, gemini, ollama")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name for the provider")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and run statistics")

	return cmd
}

// newProgressBar returns nil when w is not an interactive terminal.
func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription("  starting"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
}

func describeRunError(username string, err error) error {
	switch {
	case errors.Is(err, reddit.ErrUserNotFound):
		return fmt.Errorf("u/%s does not exist or is suspended", username)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("interrupted")
	case errors.Is(err, analysis.ErrNoReport):
		return fmt.Errorf("no report for u/%s: %w", username, err)
	}
	return err
}

func printRunStats(w io.Writer, res *analysis.Result) {
	fmt.Fprintf(w, "Run:        %s\n", res.RunID)
	fmt.Fprintf(w, "Items:      %d processed, %d in context\n", res.Items, res.Context.ItemsIncluded)
	fmt.Fprintf(w, "Tokens:     %d (truncated: %t)\n", res.Context.Tokens, res.Context.Truncated)
	fmt.Fprintf(w, "Cache:      raw=%t processed=%t\n", res.RawCached, res.ProcessedCached)
}
