package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mkock/system"
	"github.com/mkock/system/run"
)

func newRunCommand() *cobra.Command {
	var (
		duration        time.Duration
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Start a topology of simulated components, then stop it",
		Long: `Start every component of a topology level by level, wait for an interrupt
signal (or for --for to elapse), then stop them in reverse order. Each
component is simulated: it takes its configured delay and fails if told to.`,
		Example: `  # Run until interrupted
  syscheck run ./shop.yaml

  # Run for five seconds
  syscheck run --for 5s ./shop.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := load(args[0], system.WithProgress(logProgress))
			if err != nil {
				return err
			}

			log.Info().
				Str("system", sys.Name()).
				Str("levels", sys.String()).
				Msg("Running system")

			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			return run.Until(ctx, sys, run.WithShutdownTimeout(shutdownTimeout), run.WithLogger(log.Logger))
		},
	}

	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long instead of waiting for a signal")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", run.DefaultShutdownTimeout, "time allowed for stopping")

	return cmd
}

// logProgress logs one Progress report.
func logProgress(_ context.Context, p system.Progress) {
	event := log.Info()
	if p.Err != nil {
		event = log.Warn().Err(p.Err)
	}
	event.
		Str("component", p.Component).
		Str("phase", p.Phase.String()).
		Int("level", p.Level).
		Dur("duration", p.Duration).
		Msg("Component phase complete")
}
