package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newLevelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "levels FILE",
		Short: "Print the levels components start in",
		Long: `Print the levels the components of a topology start in. Components of the
same level start concurrently; levels start one after the other.`,
		Example: `  # Show the levels of a topology
  syscheck levels ./shop.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, level := range sys.StartOrder() {
				names := append([]string(nil), level...)
				sort.Strings(names)
				fmt.Fprintf(out, "level %d: %s\n", i+1, strings.Join(names, ", "))
			}
			fmt.Fprintln(out, sys)

			return nil
		},
	}

	return cmd
}
