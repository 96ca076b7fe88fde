package graph

import (
	"fmt"
	"testing"
)

// starGraph returns a hub with n spokes pointing at it.
func starGraph(t *testing.T, n int) *Graph {
	t.Helper()
	g := New()
	for i := 0; i < n; i++ {
		edge(t, g, fmt.Sprintf("spoke%d", i), "hub", 1)
	}
	return g
}

func TestCentralityStar(t *testing.T) {
	g := starGraph(t, 5)
	c := g.Snapshot().ComputeCentrality()

	if c.Degree["hub"] != 1.0 {
		t.Fatalf("hub degree centrality = %v, want 1.0", c.Degree["hub"])
	}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("spoke%d", i)
		if c.Degree[id] >= c.Degree["hub"] {
			t.Fatalf("spoke %s degree %v should be below hub %v", id, c.Degree[id], c.Degree["hub"])
		}
		if c.Betweenness[id] != 0 {
			t.Fatalf("spoke %s betweenness = %v, want 0", id, c.Betweenness[id])
		}
	}
	if c.Betweenness["hub"] != 1.0 {
		t.Fatalf("star hub betweenness = %v, want 1.0", c.Betweenness["hub"])
	}
	if c.Closeness["hub"] <= c.Closeness["spoke0"] {
		t.Fatalf("hub closeness %v should exceed spoke %v", c.Closeness["hub"], c.Closeness["spoke0"])
	}
}

func TestClusteringTriangle(t *testing.T) {
	g := New()
	edge(t, g, "a", "b", 1)
	edge(t, g, "b", "c", 1)
	edge(t, g, "c", "a", 1)

	c := g.Snapshot().ComputeCentrality()
	for _, id := range []string{"a", "b", "c"} {
		if c.Clustering[id] != 1.0 {
			t.Fatalf("triangle clustering[%s] = %v, want 1.0", id, c.Clustering[id])
		}
	}
}

func TestEigenvectorFavorsCore(t *testing.T) {
	g := New()
	// Dense core a-b-c plus a pendant d.
	edge(t, g, "a", "b", 1)
	edge(t, g, "b", "c", 1)
	edge(t, g, "c", "a", 1)
	edge(t, g, "a", "d", 1)

	c := g.Snapshot().ComputeCentrality()
	if c.Eigenvector["d"] >= c.Eigenvector["a"] {
		t.Fatalf("pendant d (%v) should score below core member a (%v)", c.Eigenvector["d"], c.Eigenvector["a"])
	}
}

func TestCentralityEmpty(t *testing.T) {
	c := New().Snapshot().ComputeCentrality()
	if len(c.Degree) != 0 {
		t.Fatalf("empty graph centrality should be empty, got %d entries", len(c.Degree))
	}
}

func TestDegreeStats(t *testing.T) {
	g := starGraph(t, 4)
	mean, std := g.Snapshot().DegreeStats()
	// hub degree 4, four spokes degree 1 → mean 8/5.
	if mean != 1.6 {
		t.Fatalf("mean degree = %v, want 1.6", mean)
	}
	if std <= 0 {
		t.Fatalf("std = %v, want > 0", std)
	}
}
