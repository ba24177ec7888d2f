// Package run drives a component for the lifetime of a host process: start it at boot, wait for a shutdown signal,
// stop it.
package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkock/system"
)

// DefaultShutdownTimeout bounds the Stop call made by Until.
const DefaultShutdownTimeout = 30 * time.Second

// Option configures Until.
type Option func(*config)

type config struct {
	timeout time.Duration
	signals []os.Signal
	logger  zerolog.Logger
}

// WithShutdownTimeout bounds the time given to the component to stop.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithSignals replaces the signals that trigger shutdown. The default is SIGINT and SIGTERM.
func WithSignals(sig ...os.Signal) Option {
	return func(c *config) {
		c.signals = sig
	}
}

// WithLogger sets the logger Until reports startup and shutdown to.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Until starts c, blocks until ctx is done or a shutdown signal arrives, and then stops c. Stop runs with a context
// that is detached from ctx and bounded by the shutdown timeout.
//
// Signals are caught from the moment Until is called. A signal that arrives while c is starting cancels the context
// passed to Start.
//
// If c fails to start, Until returns the error without stopping c: what to do with a partially started component is
// the caller's decision.
func Until(ctx context.Context, c system.Component, opts ...Option) error {
	cfg := config{
		timeout: DefaultShutdownTimeout,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	sigCtx, stop := signal.NotifyContext(ctx, cfg.signals...)
	defer stop()

	if err := c.Start(sigCtx); err != nil {
		return err
	}
	cfg.logger.Info().Msg("Started, waiting for shutdown signal")

	<-sigCtx.Done()
	cfg.logger.Info().Msg("Shutting down")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.timeout)
	defer cancel()

	if err := c.Stop(stopCtx); err != nil {
		return err
	}
	cfg.logger.Info().Msg("Stopped")
	return nil
}
