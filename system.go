package system

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mkock/system/internal/depgraph"
)

// Registry maps component names to component instances.
type Registry map[string]Component

// entry is a registered component together with the state the System last observed for it.
type entry struct {
	name      string
	component Component
	state     atomic.Uint32
}

func (e *entry) load() State {
	return State(e.state.Load())
}

// System drives the lifecycle of a Registry of components in dependency order. Components are grouped into levels
// (see Levels); Start runs the levels in ascending order and Stop in descending order. All members of one level run
// concurrently, and a level must complete before the next one begins.
//
// A System is itself a Component, so it can be registered in the Registry of a larger System.
type System struct {
	sync.Mutex // Protects field state.

	name    string
	opts    options
	entries map[string]*entry
	levels  Levels
	graph   *depgraph.Graph
	state   State
	needs   Needs
}

// New validates the registry, injects every declared dependency into its dependent and computes the start order.
// The registry is not retained; adding to it afterwards has no effect on the System.
//
// New returns a NotAComponentError for a nil registry entry (including a typed nil pointer), an UnmetDependencyError for a dependency name that is
// not in the registry, an InjectionError if a dependent rejects an injected instance, and an error matching
// ErrCycleDetected if the dependencies form a cycle.
func New(reg Registry, opts ...Option) (*System, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)

	graph := depgraph.New()
	entries := make(map[string]*entry, len(reg))
	for _, name := range names {
		if isNil(reg[name]) {
			return nil, NotAComponentError(name)
		}
		graph.AddNode(name)
		entries[name] = &entry{name: name, component: reg[name]}
	}

	for _, name := range names {
		for _, dep := range dependencies(reg[name]) {
			if _, ok := reg[dep]; !ok {
				return nil, &UnmetDependencyError{Dependency: dep, Dependent: name}
			}
			graph.AddEdge(name, dep)
		}
	}

	order, err := graph.LinearOrder()
	if err != nil {
		return nil, err
	}

	// Dependents are only touched once the whole registry is known to be valid.
	for _, name := range names {
		dependent, ok := reg[name].(Dependent)
		if !ok {
			continue
		}
		for _, dep := range graph.Dependencies(name) {
			if err := dependent.Inject(dep, reg[dep]); err != nil {
				return nil, &InjectionError{Dependency: dep, Dependent: name, Err: err}
			}
		}
	}

	sys := &System{
		name:    o.name,
		opts:    o,
		entries: entries,
		levels:  levelize(order, graph.DependsOn),
		graph:   graph,
		needs:   DependsOn(o.deps...),
	}
	for _, name := range names {
		o.metrics.setState(o.name, name, Stopped)
	}

	return sys, nil
}

// dependencies returns the names c declares, or nil if c is not a Dependent.
func dependencies(c Component) []string {
	if dependent, ok := c.(Dependent); ok {
		return dependent.Dependencies()
	}
	return nil
}

// isNil reports whether c is nil or holds a nil pointer, map, slice, func or channel.
func isNil(c Component) bool {
	if c == nil {
		return true
	}
	switch v := reflect.ValueOf(c); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// Name returns the name given with WithName.
func (s *System) Name() string {
	return s.name
}

// Components returns a copy of the registry the System was constructed from.
func (s *System) Components() Registry {
	reg := make(Registry, len(s.entries))
	for name, e := range s.entries {
		reg[name] = e.component
	}
	return reg
}

// Component returns the component registered under name, or nil.
func (s *System) Component(name string) Component {
	if e, ok := s.entries[name]; ok {
		return e.component
	}
	return nil
}

// StartOrder returns a copy of the levels the System starts its components in.
func (s *System) StartOrder() Levels {
	return s.levels.clone()
}

// DependsOn reports whether the component a depends on b, directly or transitively.
func (s *System) DependsOn(a, b string) bool {
	return s.graph.DependsOn(a, b)
}

// String returns a representation of the start order, as produced by Levels.String.
func (s *System) String() string {
	return s.levels.String()
}

// State returns the state of the System as a whole.
func (s *System) State() State {
	s.Lock()
	defer s.Unlock()

	return s.state
}

// ComponentState returns the state of the component registered under name. The boolean is false if there is no such
// component.
func (s *System) ComponentState(name string) (State, bool) {
	e, ok := s.entries[name]
	if !ok {
		return Stopped, false
	}
	return e.load(), true
}

// Dependencies returns the names given with WithDependencies.
func (s *System) Dependencies() []string {
	return s.needs.Dependencies()
}

// Inject stores a dependency of the System itself.
func (s *System) Inject(name string, dep Component) error {
	return s.needs.Inject(name, dep)
}

// Dependency returns the instance injected into the System under name, or nil.
func (s *System) Dependency(name string) Component {
	return s.needs.Dependency(name)
}

// Start starts every component, level by level in ascending order. It waits for all members of a level to finish
// starting before moving on. If a component fails to start, the remaining levels are skipped and the component's
// error is returned as is; components that did start are left running.
func (s *System) Start(ctx context.Context) error {
	return s.run(ctx, PhaseStart)
}

// Stop stops every component, level by level in descending order, with the same concurrency and failure semantics as
// Start.
func (s *System) Stop(ctx context.Context) error {
	return s.run(ctx, PhaseStop)
}

// Restart stops and then starts the System.
func (s *System) Restart(ctx context.Context) error {
	return restart(ctx, s)
}

// begin moves the System into the transitional state of the phase. It returns an InvalidStateError if another
// phase is in flight.
func (s *System) begin(ph Phase) error {
	s.Lock()
	defer s.Unlock()

	if s.state == Starting || s.state == Stopping {
		return InvalidStateError(inProgressErrorMessage)
	}
	s.state, _ = ph.transition()
	return nil
}

// end settles the System after the phase completed.
func (s *System) end(ph Phase, err error) {
	s.Lock()
	defer s.Unlock()

	if err != nil {
		s.state = Failed
		return
	}
	_, s.state = ph.transition()
}

// run traverses the levels in the direction of the phase.
// The standard behaviour is to traverse the levels in ascending order and start each component. If ph == PhaseStop,
// the traversal is instead done in reverse order, and each component is stopped.
func (s *System) run(ctx context.Context, ph Phase) (err error) {
	if err = s.begin(ph); err != nil {
		return err
	}
	defer func() { s.end(ph, err) }()

	opID := uuid.NewString()
	logger := s.opts.logger.With().
		Str("system", s.name).
		Str("phase", ph.String()).
		Str("op_id", opID).
		Logger()

	ctx, span := s.opts.tracer.Start(ctx, "system."+ph.String(), trace.WithAttributes(
		attribute.String("system.name", s.name),
		attribute.String("system.op_id", opID),
		attribute.Int("system.levels", len(s.levels)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var (
		current = -1
		step    = 1
	)
	if ph == PhaseStop {
		current = len(s.levels)
		step = -1
	}

	begin := time.Now()
	logger.Debug().Int("levels", len(s.levels)).Int("components", s.levels.Len()).Msg("Running lifecycle phase")

	// There is no guarantee regarding order of execution within a level.
	for i := 0; i < len(s.levels); i++ {
		current += step
		if err = s.runLevel(ctx, ph, current, opID, logger); err != nil {
			return err
		}
	}

	logger.Debug().Dur("duration", time.Since(begin)).Msg("Lifecycle phase complete")
	return nil
}

// runLevel creates an errgroup for a single level and runs the phase of each of its members.
// runLevel returns the first error returned by a member, after all members have returned.
func (s *System) runLevel(ctx context.Context, ph Phase, index int, opID string, logger zerolog.Logger) error {
	level := s.levels[index]
	if len(level) == 0 {
		return nil
	}

	ctx, span := s.opts.tracer.Start(ctx, "system.level", trace.WithAttributes(
		attribute.Int("system.level", index+1),
		attribute.StringSlice("system.components", level),
	))
	defer span.End()

	logger.Debug().Int("level", index+1).Strs("components", level).Msg("Running level")

	// Members share ctx: a failing member must not cancel the others.
	var grp errgroup.Group
	for _, name := range level {
		e := s.entries[name]
		grp.Go(func() error {
			return s.exec(ctx, ph, index, e, opID, logger)
		})
	}

	err := grp.Wait()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// exec runs one phase of one component and reports on it.
func (s *System) exec(ctx context.Context, ph Phase, index int, e *entry, opID string, logger zerolog.Logger) error {
	during, after := ph.transition()
	e.state.Store(uint32(during))
	s.opts.metrics.setState(s.name, e.name, during)

	ctx, span := s.opts.tracer.Start(ctx, "component."+ph.String(), trace.WithAttributes(
		attribute.String("component.name", e.name),
		attribute.Int("system.level", index+1),
	))

	begin := time.Now()
	err := ph.byPhase(e.component)(ctx) // Execute the lifecycle method.
	elapsed := time.Since(begin)

	if err != nil {
		after = Failed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	e.state.Store(uint32(after))
	s.opts.metrics.setState(s.name, e.name, after)
	s.opts.metrics.observe(s.name, e.name, ph, elapsed, err)

	logger.Debug().
		Str("component", e.name).
		Int("level", index+1).
		Dur("duration", elapsed).
		Str("state", after.String()).
		Msg("Component phase complete")

	s.report(ctx, Progress{
		System:    s.name,
		Component: e.name,
		Phase:     ph,
		Level:     index + 1,
		OpID:      opID,
		Duration:  elapsed,
		Err:       err,
	})

	return err
}

// report sends the provided Progress to every registered ProgressFunc.
func (s *System) report(ctx context.Context, p Progress) {
	for _, fn := range s.opts.progress {
		fn(ctx, p)
	}
}

// Check that System satisfies the lifecycle interfaces.
var _ Component = (*System)(nil)
var _ Restarter = (*System)(nil)
var _ Dependent = (*System)(nil)
