package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/redlens/redlens/internal/reddit"
)

func newContextCmd(g *globalFlags) *cobra.Command {
	var (
		noCache     bool
		budget      int
		registryOut string
	)

	cmd := &cobra.Command{
		Use:   "context <profile-url | u/name | name>",
		Short: "Print the cited context that would be sent to the LLM",
		Long: `Fetch and process a user's activity and print the packed context without
calling any LLM. Useful for inspecting what the model will see and which
citation IDs map to which permalinks.

Examples:
  redlens context spez
  redlens context spez --budget 2000
  redlens context spez --registry-out spez_registry.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			username, err := reddit.ParseProfileURL(args[0])
			if err != nil {
				return err
			}
			if budget > 0 {
				cfg.Budget.ContextTokens = budget + cfg.Budget.ReservedTokens
			}

			pipe, store, err := newPipeline(cfg, nil, log)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := pipe.Assemble(ctx, pipelineOptions(cfg, username, noCache))
			if err != nil {
				return describeRunError(username, err)
			}

			fmt.Fprint(cmd.OutOrStdout(), res.Context.Text)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d items, %d tokens (truncated: %t)\n",
				res.Context.ItemsIncluded, res.Items, res.Context.Tokens, res.Context.Truncated)

			if registryOut != "" {
				b, err := json.MarshalIndent(res.Context.Registry, "", "  ")
				if err != nil {
					return fmt.Errorf("encode registry: %w", err)
				}
				if err := writeOutput(cmd, registryOut, string(b)+"\n"); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached activity and rebuild it")
	cmd.Flags().IntVar(&budget, "budget", 0, "Context token budget (default: context_tokens - reserved_tokens)")
	cmd.Flags().StringVar(&registryOut, "registry-out", "", "Also write the citation registry as JSON to this path")

	return cmd
}
