package system

// Dependent is implemented by components that depend on other components of the same registry. Dependencies returns
// the names of the components it depends on; the list must not change once the component has been registered. When
// the System is constructed, Inject is called once per declared name with the registered instance, before any
// lifecycle method runs. Components that do not implement Dependent have no dependencies.
type Dependent interface {
	Dependencies() []string
	Inject(name string, dep Component) error
}

// Needs implements Dependent for components that only need to keep hold of their dependencies by name. Embed it
// and initialise it with DependsOn:
//
//	type API struct {
//		system.Needs
//	}
//
//	api := &API{Needs: system.DependsOn("db", "cache")}
//
// Injected instances are read back with Dependency or Lookup.
type Needs struct {
	names []string
	deps  map[string]Component
}

// DependsOn returns a Needs declaring the given dependency names, in order.
func DependsOn(names ...string) Needs {
	n := Needs{names: make([]string, len(names))}
	copy(n.names, names)
	return n
}

// Dependencies returns the declared dependency names.
func (n *Needs) Dependencies() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Inject stores dep under name. It returns an UndeclaredDependencyError if name was not declared.
func (n *Needs) Inject(name string, dep Component) error {
	declared := false
	for _, d := range n.names {
		if d == name {
			declared = true
			break
		}
	}
	if !declared {
		return UndeclaredDependencyError(name)
	}

	if n.deps == nil {
		n.deps = make(map[string]Component, len(n.names))
	}
	n.deps[name] = dep
	return nil
}

// Dependency returns the instance injected under name, or nil.
func (n *Needs) Dependency(name string) Component {
	return n.deps[name]
}

// dependencyHolder is satisfied by Needs and System.
type dependencyHolder interface {
	Dependency(name string) Component
}

// Lookup returns the dependency injected into h under name as a T. The boolean is false if nothing was injected
// under name, or if the injected instance is not a T.
func Lookup[T any](h dependencyHolder, name string) (T, bool) {
	t, ok := h.Dependency(name).(T)
	return t, ok
}

// MustLookup is like Lookup but panics if the dependency is missing or of the wrong type.
func MustLookup[T any](h dependencyHolder, name string) T {
	t, ok := Lookup[T](h, name)
	if !ok {
		panic("missing dependency: " + name)
	}
	return t
}

// Check that Needs satisfies the Dependent interface.
var _ Dependent = (*Needs)(nil)
