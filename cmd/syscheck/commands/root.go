// Package commands implements the syscheck command line: inspect and exercise the start order of a system described
// by a YAML topology file.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mkock/system"
	"github.com/mkock/system/internal/topology"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit string) error {
	return newRootCommand(version, commit).ExecuteContext(ctx)
}

func newRootCommand(version, commit string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "syscheck",
		Short: "Inspect and exercise component start orders",
		Long: `syscheck loads a system topology from a YAML file, computes the levels its
components start in, and can run the start/stop sequence with simulated
components.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newLevelsCommand())
	rootCmd.AddCommand(newOrderCommand())
	rootCmd.AddCommand(newRunCommand())

	return rootCmd
}

// load builds a System of simulated components from the topology file at path.
func load(path string, opts ...system.Option) (*system.System, error) {
	f, err := topology.Load(path)
	if err != nil {
		return nil, err
	}

	name := f.Name
	if name == "" {
		name = path
	}
	opts = append([]system.Option{system.WithName(name), system.WithLogger(log.Logger)}, opts...)

	return system.New(f.Registry(log.Logger), opts...)
}
