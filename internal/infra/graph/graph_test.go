package graph

import (
	"testing"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
)

func edge(t *testing.T, g *Graph, src, dst string, w float64) {
	t.Helper()
	if err := g.AddInteraction(domain.Interaction{Source: src, Target: dst, Weight: w}); err != nil {
		t.Fatalf("AddInteraction(%s→%s): %v", src, dst, err)
	}
}

func TestAddInteractionMergesBySum(t *testing.T) {
	g := New()
	edge(t, g, "a", "b", 1.0)
	edge(t, g, "a", "b", 2.5)

	if got := g.EdgeWeight("a", "b"); got != 3.5 {
		t.Fatalf("merged weight = %v, want 3.5", got)
	}
	if got := g.EdgeCount(); got != 1 {
		t.Fatalf("edge count = %d, want 1 (merged)", got)
	}
}

func TestAddInteractionValidation(t *testing.T) {
	g := New()
	if err := g.AddInteraction(domain.Interaction{Source: "a", Target: "a", Weight: 1}); err != domain.ErrSelfEndorse {
		t.Fatalf("self edge: got %v, want ErrSelfEndorse", err)
	}
	if err := g.AddInteraction(domain.Interaction{Source: "a", Target: "b", Weight: 0}); err != domain.ErrInvalidWeight {
		t.Fatalf("zero weight: got %v, want ErrInvalidWeight", err)
	}
	if err := g.AddInteraction(domain.Interaction{Source: "", Target: "b", Weight: 1}); err != domain.ErrEmptyActorID {
		t.Fatalf("empty source: got %v, want ErrEmptyActorID", err)
	}
	if g.NodeCount() != 0 {
		t.Fatalf("rejected interactions must not create nodes, got %d", g.NodeCount())
	}
}

func TestMergeKeepsNewestTimestamp(t *testing.T) {
	g := New()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := old.Add(48 * time.Hour)
	_ = g.AddInteraction(domain.Interaction{Source: "a", Target: "b", Weight: 1, Timestamp: newer})
	_ = g.AddInteraction(domain.Interaction{Source: "a", Target: "b", Weight: 1, Timestamp: old})

	snap := g.Snapshot()
	if ts := snap.Out["a"]["b"].Timestamp; !ts.Equal(newer) {
		t.Fatalf("timestamp = %v, want newest %v", ts, newer)
	}
}

func TestMutualCount(t *testing.T) {
	g := New()
	edge(t, g, "a", "b", 1)
	edge(t, g, "b", "a", 1)
	edge(t, g, "a", "c", 1)

	mutual, total := g.MutualCount("a")
	if mutual != 1 || total != 2 {
		t.Fatalf("MutualCount = (%d, %d), want (1, 2)", mutual, total)
	}
}

func TestMutationHooksFire(t *testing.T) {
	g := New()
	var touched []string
	g.OnMutate(func(ids []string) { touched = append(touched, ids...) })

	edge(t, g, "a", "b", 1)
	if len(touched) != 2 {
		t.Fatalf("hook saw %v, want [a b]", touched)
	}
	before := g.Epoch()
	g.SetStake("a", 500)
	if g.Epoch() == before {
		t.Fatal("SetStake must bump the mutation epoch")
	}
}

func TestLoadSkipsMalformedEdges(t *testing.T) {
	g := New()
	err := g.Load(domain.GraphData{
		Nodes: []domain.Actor{{ID: "a", Stake: 100}, {ID: "b"}},
		Edges: []domain.Interaction{
			{Source: "a", Target: "b", Weight: 2},
			{Source: "a", Target: "a", Weight: 1}, // self edge, skipped
			{Source: "a", Target: "b", Weight: 0}, // zero weight, skipped
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("edge count = %d, want 1", g.EdgeCount())
	}
	if g.Stake("a") != 100 {
		t.Fatalf("stake(a) = %v, want 100", g.Stake("a"))
	}
}

func TestDensity(t *testing.T) {
	g := New()
	edge(t, g, "a", "b", 1)
	edge(t, g, "b", "a", 1)
	edge(t, g, "a", "c", 1)

	// 3 edges over 3·2 ordered pairs.
	if got := g.Density(); got != 0.5 {
		t.Fatalf("density = %v, want 0.5", got)
	}
}
