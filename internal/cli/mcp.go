package cli

import (
	"github.com/spf13/cobra"

	ctxpkg "github.com/redlens/redlens/internal/context"
	"github.com/redlens/redlens/internal/mcp"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the context tools over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing
count_tokens, truncate_text, normalize_citations and pack_context.
Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			tok, err := ctxpkg.NewTokenizer()
			if err != nil {
				return err
			}
			log.Info().Str("version", version).Msg("mcp server starting on stdio")
			return mcp.NewServer(tok, cfg.Budget, log).ServeStdio(version)
		},
	}
}
