package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOrderCommand() *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "order FILE",
		Short: "Print a valid startup order, one component per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := load(args[0])
			if err != nil {
				return err
			}

			names := sys.StartOrder().Names()
			if reverse {
				for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
					names[i], names[j] = names[j], names[i]
				}
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&reverse, "reverse", false, "print the shutdown order instead")

	return cmd
}
