package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	ctxpkg "github.com/redlens/redlens/internal/context"
)

func newTokensCmd() *cobra.Command {
	var truncate int

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Count tokens, or smart-truncate text to a token ceiling",
		Long: `Count cl100k_base tokens in a file or stdin. With --truncate N, print the
text shortened to at most N tokens, keeping its opening and closing around
a [...] marker.

Examples:
  redlens tokens notes.txt
  cat long.txt | redlens tokens --truncate 300`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("truncate") && truncate < 0 {
				return fmt.Errorf("--truncate must not be negative")
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			tok, err := ctxpkg.NewTokenizer()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("truncate") {
				fmt.Fprint(cmd.OutOrStdout(), tok.SmartTruncate(text, truncate))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Count(text))
			return nil
		},
	}

	cmd.Flags().IntVarP(&truncate, "truncate", "t", 0, "Truncate to at most this many tokens")
	return cmd
}
