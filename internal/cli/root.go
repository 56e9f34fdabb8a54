// Package cli defines the Cobra command tree for the redlens CLI.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/redlens/redlens/internal/config"
	"github.com/redlens/redlens/internal/logging"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "redlens",
		Short: "Citation-linked persona reports from Reddit activity",
		Long: `Redlens fetches a Reddit user's public comments and posts, packs them into a
token-bounded context with numbered citations, and asks an LLM for an
executive summary and a persona. Every claim in the report links back to the
comment or post it came from.

Examples:
  redlens analyze https://www.reddit.com/user/spez/
  redlens analyze u/spez --format markdown --out spez.md
  redlens context spez > context.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/redlens/config.toml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: console or json")

	root.AddCommand(
		newAnalyzeCmd(g),
		newContextCmd(g),
		newCiteCmd(g),
		newTokensCmd(),
		newMCPCmd(g),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load reads the config and builds the logger. Flags win over the file.
func (g *globalFlags) load(stderr io.Writer) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	if err := logging.Validate(cfg.Log.Level, cfg.Log.Format); err != nil {
		return cfg, zerolog.Nop(), err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format, stderr), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redlens %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
