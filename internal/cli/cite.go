package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/redlens/redlens/internal/citation"
	"github.com/redlens/redlens/internal/reddit"
)

func newCiteCmd(g *globalFlags) *cobra.Command {
	var (
		user         string
		registryPath string
	)

	cmd := &cobra.Command{
		Use:   "cite [file]",
		Short: "Rewrite citation markers in text into [source](url) links",
		Long: `Normalize citation markers such as [SRC001], (source), [[source]] or [3]
into markdown links. Text is read from the file argument or stdin.

The registry comes either from a JSON file written by 'redlens context
--registry-out', or from the cached activity of a user.

Examples:
  redlens cite draft.md --registry spez_registry.json
  pbpaste | redlens cite --user spez`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (user == "") == (registryPath == "") {
				return fmt.Errorf("exactly one of --user or --registry is required")
			}

			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var reg *citation.Registry
			if registryPath != "" {
				if reg, err = loadRegistry(registryPath); err != nil {
					return err
				}
			} else {
				cfg, log, err := g.load(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				username, err := reddit.ParseProfileURL(user)
				if err != nil {
					return err
				}
				pipe, store, err := newPipeline(cfg, nil, log)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()

				processed, err := pipe.Processed(ctx, pipelineOptions(cfg, username, false))
				if err != nil {
					return describeRunError(username, err)
				}
				reg = processed.Registry
			}

			if reg.Len() == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: empty citation registry; text left unchanged")
			}
			fmt.Fprint(cmd.OutOrStdout(), citation.NewNormalizer().Normalize(text, reg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "Use the citation registry of this user's activity")
	cmd.Flags().StringVarP(&registryPath, "registry", "r", "", "Citation registry JSON file")

	return cmd
}

func loadRegistry(path string) (*citation.Registry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	reg := citation.NewRegistry()
	if err := json.Unmarshal(b, reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return reg, nil
}
