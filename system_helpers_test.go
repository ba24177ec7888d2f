package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errComponent = errors.New("component has failed")

// recorder collects lifecycle events from concurrently running components.
type recorder struct {
	sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.Lock()
	defer r.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) list() []string {
	r.Lock()
	defer r.Unlock()

	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) reset() {
	r.Lock()
	defer r.Unlock()

	r.events = nil
}

// testComponent records "Started <name>" and "Stopped <name>" events.
type testComponent struct {
	name              string
	rec               *recorder
	startErr, stopErr error
}

func newTestComponent(name string, rec *recorder) *testComponent {
	return &testComponent{name: name, rec: rec}
}

func (c *testComponent) Start(context.Context) error {
	c.rec.add("Started " + c.name)
	return c.startErr
}

func (c *testComponent) Stop(context.Context) error {
	c.rec.add("Stopped " + c.name)
	return c.stopErr
}

// dependentComponent is a testComponent with declared dependencies.
type dependentComponent struct {
	*testComponent
	Needs
}

func newDependentComponent(name string, rec *recorder, deps ...string) *dependentComponent {
	return &dependentComponent{newTestComponent(name, rec), DependsOn(deps...)}
}

// componentA and componentB model a typed dependency: B keeps a *componentA in a named slot.
type componentA struct {
	*testComponent
}

type componentB struct {
	*testComponent
	a *componentA
}

func (b *componentB) Dependencies() []string {
	return []string{"a"}
}

func (b *componentB) Inject(name string, dep Component) error {
	a, ok := dep.(*componentA)
	if !ok {
		return fmt.Errorf("expected *componentA for %q, got %T", name, dep)
	}
	b.a = a
	return nil
}

// blockingComponent blocks in Start until release is closed.
type blockingComponent struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingComponent() *blockingComponent {
	return &blockingComponent{make(chan struct{}), make(chan struct{})}
}

func (b *blockingComponent) Start(context.Context) error {
	close(b.entered)
	<-b.release
	return nil
}

func (b *blockingComponent) Stop(context.Context) error {
	return nil
}

// slowStopper takes delay to stop, or gives up when its context is done.
type slowStopper struct {
	delay   time.Duration
	stopped atomic.Bool
}

func (s *slowStopper) Start(context.Context) error {
	return nil
}

func (s *slowStopper) Stop(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		s.stopped.Store(true)
		return nil
	}
}

// rendezvous makes n components wait in Start until all of them have entered it, which only succeeds if they run
// concurrently.
type rendezvous struct {
	arrived sync.WaitGroup
	all     chan struct{}
}

func newRendezvous(n int) *rendezvous {
	r := &rendezvous{all: make(chan struct{})}
	r.arrived.Add(n)
	go func() {
		r.arrived.Wait()
		close(r.all)
	}()
	return r
}

func (r *rendezvous) Start(context.Context) error {
	r.arrived.Done()
	select {
	case <-r.all:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("rendezvous timed out: members did not start concurrently")
	}
}

func (r *rendezvous) Stop(context.Context) error {
	return nil
}

func verifyNilErr(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

// verifyLevelSet checks that level contains exactly the expected names, in any order.
func verifyLevelSet(t *testing.T, expected, level []string) {
	t.Helper()

	if len(level) != len(expected) {
		t.Fatalf("expected level %v, got %v", expected, level)
	}

	for _, e := range expected {
		found := false
		for _, l := range level {
			if l == e {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected level %v to contain %q", level, e)
		}
	}
}

// verifyLeveling checks the validity of levels against the edges of deps (dependent -> dependencies):
// every dependency sits in a lower level than its dependent, no two members of a level depend on each other, and
// every node appears exactly once.
func verifyLeveling(t *testing.T, levels Levels, deps map[string][]string, dependsOn func(a, b string) bool) {
	t.Helper()

	seen := make(map[string]bool)
	for _, name := range levels.Names() {
		if seen[name] {
			t.Fatalf("%q appears more than once in %v", name, levels)
		}
		seen[name] = true
	}
	if len(seen) != len(deps) {
		t.Fatalf("expected %d names in levels, got %d", len(deps), len(seen))
	}

	for dependent, dependencies := range deps {
		for _, dependency := range dependencies {
			if levels.Index(dependency) >= levels.Index(dependent) {
				t.Fatalf("expected %q (level %d) below %q (level %d)",
					dependency, levels.Index(dependency), dependent, levels.Index(dependent))
			}
		}
	}

	for _, level := range levels {
		for _, a := range level {
			for _, b := range level {
				if dependsOn(a, b) {
					t.Fatalf("%q depends on %q within level %v", a, b, level)
				}
			}
		}
	}
}
