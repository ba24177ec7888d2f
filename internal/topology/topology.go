// Package topology loads system topologies from YAML and turns them into registries of simulated components, so that
// start orders and failure behaviour can be inspected without the real components.
//
//	name: shop
//	components:
//	  db: {}
//	  cache:
//	    start_delay: 200ms
//	  api:
//	    depends_on: [db, cache]
//	    fail_on: stop
package topology

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mkock/system"
)

// ErrSimulated is returned by a Sim configured to fail.
var ErrSimulated = errors.New("simulated failure")

// File is a topology file.
type File struct {
	Name       string          `yaml:"name"`
	Components map[string]Spec `yaml:"components"`
}

// Spec describes one simulated component.
type Spec struct {
	DependsOn  []string      `yaml:"depends_on"`
	StartDelay time.Duration `yaml:"start_delay"`
	StopDelay  time.Duration `yaml:"stop_delay"`
	FailOn     string        `yaml:"fail_on"`
}

// Load reads and parses the topology file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	return Parse(data)
}

// Parse decodes a topology. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode topology: %w", err)
	}

	for name, spec := range f.Components {
		switch spec.FailOn {
		case "", "start", "stop":
		default:
			return nil, fmt.Errorf("component %q: fail_on must be \"start\" or \"stop\", got %q", name, spec.FailOn)
		}
		if spec.StartDelay < 0 || spec.StopDelay < 0 {
			return nil, fmt.Errorf("component %q: delays must not be negative", name)
		}
	}

	return &f, nil
}

// Registry returns a registry with one Sim per component. Sims log their transitions to logger.
func (f *File) Registry(logger zerolog.Logger) system.Registry {
	reg := make(system.Registry, len(f.Components))
	for name, spec := range f.Components {
		reg[name] = &Sim{
			Needs:  system.DependsOn(spec.DependsOn...),
			name:   name,
			spec:   spec,
			logger: logger.With().Str("component", name).Logger(),
		}
	}
	return reg
}

// Sim is a simulated component. It takes the configured time to start and stop, and fails when told to.
type Sim struct {
	system.Needs

	name   string
	spec   Spec
	logger zerolog.Logger
}

// Name returns the name the Sim was registered under.
func (s *Sim) Name() string {
	return s.name
}

// Start waits for the start delay and succeeds unless the Sim is configured to fail on start.
func (s *Sim) Start(ctx context.Context) error {
	return s.transition(ctx, "start", s.spec.StartDelay)
}

// Stop waits for the stop delay and succeeds unless the Sim is configured to fail on stop.
func (s *Sim) Stop(ctx context.Context) error {
	return s.transition(ctx, "stop", s.spec.StopDelay)
}

func (s *Sim) transition(ctx context.Context, phase string, delay time.Duration) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.spec.FailOn == phase {
		return fmt.Errorf("%s %s: %w", phase, s.name, ErrSimulated)
	}

	s.logger.Info().Str("phase", phase).Strs("depends_on", s.Dependencies()).Msg("Component transitioned")
	return nil
}
