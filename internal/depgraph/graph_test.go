package depgraph

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Equal(t, 0, g.Len())

	order, err := g.LinearOrder()
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestAddNode(t *testing.T) {
	g := New()
	g.AddNode("one")
	g.AddNode("two")
	g.AddNode("one")

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"one", "two"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("adds missing nodes", func(t *testing.T) {
		g := New()
		g.AddEdge("web", "db")
		assert.Equal(t, []string{"web", "db"}, g.Nodes())
	})

	t.Run("ignores duplicate edges", func(t *testing.T) {
		g := New()
		g.AddEdge("web", "db")
		g.AddEdge("web", "db")
		assert.Equal(t, []string{"db"}, g.Dependencies("web"))
	})

	t.Run("keeps dependency order", func(t *testing.T) {
		g := New()
		g.AddEdge("web", "db")
		g.AddEdge("web", "cache")
		g.AddEdge("web", "queue")
		assert.Equal(t, []string{"db", "cache", "queue"}, g.Dependencies("web"))
	})

	t.Run("returns a copy of dependencies", func(t *testing.T) {
		g := New()
		g.AddEdge("web", "db")
		deps := g.Dependencies("web")
		deps[0] = "mutated"
		assert.Equal(t, []string{"db"}, g.Dependencies("web"))
	})
}

func TestDependsOn(t *testing.T) {
	g := New()
	g.AddEdge("b", "a")
	g.AddEdge("c", "b")
	g.AddNode("d")

	cases := []struct {
		a, b     string
		expected bool
	}{
		{"b", "a", true},
		{"c", "b", true},
		{"c", "a", true},
		{"a", "b", false},
		{"a", "c", false},
		{"a", "a", false},
		{"d", "a", false},
		{"a", "d", false},
		{"unknown", "a", false},
	}

	for _, tt := range cases {
		t.Run(tt.a+" on "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.DependsOn(tt.a, tt.b))
		})
	}
}

func TestDependsOnInvalidatesMemo(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	require.False(t, g.DependsOn("b", "a"))

	g.AddEdge("b", "a")
	assert.True(t, g.DependsOn("b", "a"))
}

func TestDependsOnConcurrentReads(t *testing.T) {
	const n = 8

	g := New()
	for i := 1; i < n; i++ {
		g.AddEdge(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", i-1))
	}

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < n; i++ {
				assert.Equal(t, i > w, g.DependsOn(fmt.Sprintf("n%d", i), fmt.Sprintf("n%d", w)))
			}
		}()
	}
	wg.Wait()
}

func TestLinearOrder(t *testing.T) {
	t.Run("respects every edge", func(t *testing.T) {
		g := New()
		g.AddEdge("l3a", "l2a")
		g.AddEdge("l3a", "l2b")
		g.AddEdge("l3a", "l2c")
		g.AddEdge("l2a", "l1a")
		g.AddEdge("l2b", "l1b")
		g.AddEdge("l2c", "l1a")
		g.AddEdge("l2c", "l1b")

		order, err := g.LinearOrder()
		require.NoError(t, err)
		require.Len(t, order, 6)

		pos := make(map[string]int)
		for i, n := range order {
			pos[n] = i
		}
		for _, n := range g.Nodes() {
			for _, dep := range g.Dependencies(n) {
				assert.Less(t, pos[dep], pos[n], "%s must precede %s", dep, n)
			}
		}
	})

	t.Run("emits layers in insertion order", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddEdge("b", "a")
		g.AddNode("c")

		order, err := g.LinearOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c", "b"}, order)
	})

	t.Run("detects a self reference", func(t *testing.T) {
		g := New()
		g.AddEdge("selfie", "selfie")

		_, err := g.LinearOrder()
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		assert.Equal(t, []string{"selfie", "selfie"}, cycle.Path)
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("detects a longer cycle", func(t *testing.T) {
		g := New()
		g.AddNode("root")
		g.AddEdge("first", "third")
		g.AddEdge("second", "first")
		g.AddEdge("third", "second")
		g.AddEdge("leaf", "first")

		_, err := g.LinearOrder()
		var cycle *CycleError
		require.True(t, errors.As(err, &cycle))
		require.Len(t, cycle.Path, 4)
		assert.Equal(t, cycle.Path[0], cycle.Path[3])
		assert.ElementsMatch(t, []string{"first", "second", "third"}, cycle.Path[:3])
		assert.Contains(t, err.Error(), "cyclic reference: ")
	})
}
