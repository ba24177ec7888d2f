package system

import (
	"sort"
	"strings"
)

// Levels is the start order of a System: a sequence of groups of component names. Members of one level are started
// (and stopped) concurrently; levels are traversed one after the other, in ascending order on startup and in
// descending order on shutdown. Every dependency of a component sits in a lower level than the component itself.
type Levels [][]string

// Len returns the total number of component names in all levels.
func (l Levels) Len() int {
	length := 0

	for _, level := range l {
		length += len(level)
	}

	return length
}

// Names returns the concatenation of all levels, which is a valid startup order.
func (l Levels) Names() []string {
	names := make([]string, 0, l.Len())
	for _, level := range l {
		names = append(names, level...)
	}
	return names
}

// Index returns the position of the level containing name, or -1.
func (l Levels) Index(name string) int {
	for i, level := range l {
		for _, n := range level {
			if n == name {
				return i
			}
		}
	}
	return -1
}

// String returns a representation of the levels. Each level is wrapped in parentheses, with names separated by a
// colon when they run concurrently, and levels separated by a right-arrow when one runs before the other.
// Names within a level are sorted alphabetically for reasons of reproducibility.
// Ex: "(l1a : l1b) > (l2a : l2b : l2c) > (l3a)"
func (l Levels) String() string {
	var sequence strings.Builder

	for _, level := range l {
		if len(level) == 0 {
			continue
		}
		names := make([]string, len(level))
		copy(names, level)
		if len(names) > 1 {
			sort.Strings(names)
		}
		if sequence.Len() > 0 {
			sequence.WriteString(" > ")
		}
		sequence.WriteString("(" + strings.Join(names, " : ") + ")")
	}

	return sequence.String()
}

// clone returns a deep copy of l.
func (l Levels) clone() Levels {
	out := make(Levels, len(l))
	for i, level := range l {
		out[i] = make([]string, len(level))
		copy(out[i], level)
	}
	return out
}

// levelize partitions order, which must be a valid linear order of a dependency graph, into levels.
// The algorithm is:
// 1. Walk order from left to right, adding each name to the current level.
// 2. If a name depends (directly or transitively, as answered by dependsOn) on any name already in the current
//    level, the current level is closed first and the name opens a new one.
// 3. The last level is closed when order is exhausted.
// Levels are therefore never split unless a dependency forces it. The result depends on order: another valid
// linear order of the same graph may yield another, equally valid, leveling.
// An empty order yields a single empty level.
func levelize(order []string, dependsOn func(a, b string) bool) Levels {
	var (
		levels  Levels
		current = []string{}
	)

	for _, name := range order {
		for _, member := range current {
			if dependsOn(name, member) {
				levels = append(levels, current)
				current = []string{}
				break
			}
		}
		current = append(current, name)
	}

	return append(levels, current)
}
