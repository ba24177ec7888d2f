// Package system provides a component lifecycle orchestrator: given a set of named components with declared
// dependencies on each other, it computes a start order, starts dependent components only after their dependencies
// are running, and stops them in reverse order. The aggregate is itself a component, so systems nest.
//
// Quick Start
//
//	db := NewDB()
//	cache := NewCache()
//	api := &API{Needs: system.DependsOn("db", "cache")}
//
//	sys, err := system.New(system.Registry{"db": db, "cache": cache, "api": api})
//	if err != nil {
//		return err
//	}
//
//	// "db" and "cache" start concurrently, followed by "api".
//	fmt.Println(sys) // (cache : db) > (api)
//
//	if err := sys.Start(ctx); err != nil {
//		return err
//	}
//	defer sys.Stop(context.Background())
//
// Levels
//
// Components are grouped into levels. No component depends on another component of its own level, and every
// dependency of a component sits in a lower level. Start runs the levels in ascending order and Stop in descending
// order; the members of a level run concurrently and the whole level is awaited before the next one begins. The first
// failure of a component aborts the remaining levels and is returned unchanged. There is no rollback.
//
// Only the validity of the levels is guaranteed, not one canonical leveling: the levels are derived from one linear
// order of the dependency graph, and another linear order may group components differently.
//
// Dependencies
//
// A component declares its dependencies by implementing Dependent, usually by embedding Needs. New injects each
// registered dependency into its dependent before any lifecycle method runs.
package system
