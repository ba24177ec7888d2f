package system

import (
	"context"
	"reflect"
)

// Component is a unit with a start/stop lifecycle. Start must not return before the component is ready for its
// dependents to use; Stop must not return before it has released everything it holds.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Restarter is implemented by components that restart in some other way than stopping and starting again.
type Restarter interface {
	Restart(ctx context.Context) error
}

// Restart restarts c. It calls c.Restart if c is a Restarter, and otherwise stops c and then starts it again.
// Restart returns the first error encountered; if Stop fails, Start is not called.
func Restart(ctx context.Context, c Component) error {
	if r, ok := c.(Restarter); ok {
		return r.Restart(ctx)
	}
	return restart(ctx, c)
}

func restart(ctx context.Context, c Component) error {
	if err := c.Stop(ctx); err != nil {
		return err
	}
	return c.Start(ctx)
}

// Unimplemented can be embedded in a component type T to provide Start and Stop methods that fail with an
// UnimplementedError naming T. A type that overrides only one of them fails loudly when the other is called.
//
//	type Cache struct {
//		system.Unimplemented[Cache]
//	}
//
//	func (c *Cache) Start(ctx context.Context) error { ... }
type Unimplemented[T any] struct{}

// Start returns an UnimplementedError.
func (Unimplemented[T]) Start(context.Context) error {
	return &UnimplementedError{Type: reflect.TypeFor[T]().String(), Method: "Start"}
}

// Stop returns an UnimplementedError.
func (Unimplemented[T]) Stop(context.Context) error {
	return &UnimplementedError{Type: reflect.TypeFor[T]().String(), Method: "Stop"}
}

// Func is the type used for any function that can be executed as one half of a component lifecycle.
type Func func(ctx context.Context) error

// funcs adapts a pair of Funcs to the Component interface.
type funcs struct {
	start, stop Func
}

// Funcs returns a Component that runs start and stop. A nil Func makes the matching method fail with an
// UnimplementedError.
func Funcs(start, stop Func) Component {
	return &funcs{start, stop}
}

func (f *funcs) Start(ctx context.Context) error {
	if f.start == nil {
		return &UnimplementedError{Type: "system.Funcs", Method: "Start"}
	}
	return f.start(ctx)
}

func (f *funcs) Stop(ctx context.Context) error {
	if f.stop == nil {
		return &UnimplementedError{Type: "system.Funcs", Method: "Stop"}
	}
	return f.stop(ctx)
}

// NoOp (no operation) is a convenience function you can use in place of a Func for when you want a function that
// does nothing.
func NoOp(context.Context) error {
	return nil
}

// State is the lifecycle state of a component as observed by a System.
type State uint32

const (
	Stopped State = iota
	Starting
	Started
	Stopping
	Failed
)

// String makes State satisfy the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Started:
		return "started"
	case Stopping:
		return "stopping"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
