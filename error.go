package system

import (
	"errors"
	"fmt"

	"github.com/mkock/system/internal/depgraph"
)

const (
	// panicUnknownPhase triggers when calling Phase.byPhase() with an unknown phase.
	panicUnknownPhase = "unknown phase: must match PhaseStart or PhaseStop"

	// inProgressErrorMessage triggers when Start/Stop is called on a System that is already starting or stopping.
	inProgressErrorMessage = "already in progress"
)

var (
	// ErrCycleDetected is matched through errors.Is by the error New returns when the declared dependencies form a
	// cycle.
	ErrCycleDetected = depgraph.ErrCycle

	// ErrUnimplemented is matched through errors.Is by every UnimplementedError.
	ErrUnimplemented = errors.New("lifecycle method not implemented")
)

// NotAComponentError indicates a registry entry that cannot be driven as a Component.
type NotAComponentError string

// Error returns the error message for a NotAComponentError.
func (n NotAComponentError) Error() string {
	return fmt.Sprintf("not a component: %q", string(n))
}

// UnmetDependencyError indicates that Dependent declares a dependency on a component that is not in the registry.
type UnmetDependencyError struct {
	Dependency string
	Dependent  string
}

// Error returns the error message for an UnmetDependencyError.
func (u *UnmetDependencyError) Error() string {
	return fmt.Sprintf("unmet dependency: %q -> %q", u.Dependency, u.Dependent)
}

// UndeclaredDependencyError is returned by Needs.Inject for a name that was not declared.
type UndeclaredDependencyError string

// Error returns the error message for an UndeclaredDependencyError.
func (u UndeclaredDependencyError) Error() string {
	return fmt.Sprintf("undeclared dependency: %q", string(u))
}

// InjectionError indicates that Dependent rejected the instance registered as Dependency.
type InjectionError struct {
	Dependency string
	Dependent  string
	Err        error
}

// Error returns the error message for an InjectionError.
func (i *InjectionError) Error() string {
	return fmt.Sprintf("cannot inject %q into %q: %v", i.Dependency, i.Dependent, i.Err)
}

// Unwrap returns the error reported by the dependent.
func (i *InjectionError) Unwrap() error {
	return i.Err
}

// UnimplementedError is returned by a lifecycle method that the concrete type did not provide.
type UnimplementedError struct {
	Type   string
	Method string
}

// Error returns the error message for an UnimplementedError.
func (u *UnimplementedError) Error() string {
	return fmt.Sprintf("expected %s to implement %s()", u.Type, u.Method)
}

// Is reports whether target is ErrUnimplemented.
func (u *UnimplementedError) Is(target error) bool {
	return target == ErrUnimplemented
}

// InvalidStateError indicates that the System was unable to run a lifecycle operation because another one is in
// flight.
type InvalidStateError string

// Error returns the error message for an InvalidStateError.
func (i InvalidStateError) Error() string {
	return fmt.Sprintf("cannot run sequence: %s", string(i))
}

// Check that errors satisfy the error interface.
var _ error = NotAComponentError("")
var _ error = (*UnmetDependencyError)(nil)
var _ error = UndeclaredDependencyError("")
var _ error = (*InjectionError)(nil)
var _ error = (*UnimplementedError)(nil)
var _ error = InvalidStateError("")
