package audit

import (
	"math"
	"testing"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
)

var auditNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func edge(t *testing.T, g *graph.Graph, src, dst string, w float64) {
	t.Helper()
	if err := g.AddInteraction(domain.Interaction{Source: src, Target: dst, Weight: w, Timestamp: auditNow}); err != nil {
		t.Fatal(err)
	}
}

// hubGraph: a popular hub fed by one heavy endorsement and several light ones.
func hubGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	edge(t, g, "whale", "hub", 10)
	edge(t, g, "u1", "hub", 0.1)
	edge(t, g, "u2", "hub", 0.1)
	edge(t, g, "u1", "side", 1)
	edge(t, g, "u2", "side", 1)
	edge(t, g, "hub", "side", 0.5)
	return g
}

func newAuditor(t *testing.T, g *graph.Graph) *Auditor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.SampleSize = 0 // exhaustive on these small graphs
	snap := g.Snapshot()
	return New(cfg, snap, snap.PageRank(cfg.PageRank, nil, auditNow))
}

func TestInfluencesFindHeavyEdge(t *testing.T) {
	a := newAuditor(t, hubGraph(t))
	infs := a.Influences(auditNow)
	if len(infs) == 0 {
		t.Fatal("expected influence rows")
	}
	// The whale's endorsement dominates hub's score; its removal must be
	// among the most influential edges targeting hub.
	var whale, light float64
	for _, inf := range infs {
		if inf.Source == "whale" && inf.Target == "hub" {
			whale = inf.Influence
		}
		if inf.Source == "u1" && inf.Target == "hub" {
			light = inf.Influence
		}
	}
	if whale <= light {
		t.Fatalf("whale edge influence %v should exceed light edge %v", whale, light)
	}
	// Sorted descending.
	for i := 1; i < len(infs); i++ {
		if infs[i].Influence > infs[i-1].Influence {
			t.Fatal("influences must be sorted descending")
		}
	}
}

func TestExplainSplitsDirections(t *testing.T) {
	a := newAuditor(t, hubGraph(t))
	ex := a.Explain("hub", 5, auditNow)

	if ex.Actor != "hub" {
		t.Fatalf("actor = %s", ex.Actor)
	}
	if len(ex.TopEdges) == 0 {
		t.Fatal("hub explanation needs edges")
	}
	if got := ex.IncomingInfluence + ex.OutgoingInfluence; math.Abs(got-ex.Sensitivity) > 1e-12 {
		t.Fatalf("sensitivity %v must equal incoming+outgoing %v", ex.Sensitivity, got)
	}
}

func TestSensitiveNodesRanked(t *testing.T) {
	a := newAuditor(t, hubGraph(t))
	cfgThreshold := a.cfg.Threshold
	nodes := a.SensitiveNodes(auditNow)
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Sensitivity > nodes[i-1].Sensitivity {
			t.Fatal("sensitivities must be sorted descending")
		}
	}
	for _, n := range nodes {
		if n.Sensitivity < cfgThreshold {
			t.Fatalf("node %s below threshold %v made the list", n.Actor, cfgThreshold)
		}
	}
}

func TestAdjustForFairness(t *testing.T) {
	g := hubGraph(t)
	snap := g.Snapshot()
	scores := map[string]float64{
		"hub":   1.0,
		"side":  0.7,
		"whale": 0.1,
		"u1":    0.0,
		"u2":    0.02,
	}

	adjusted := AdjustForFairness(scores, snap)

	sum := 0.0
	for _, v := range adjusted {
		sum += v
		if v <= 0 {
			t.Fatalf("fairness floor violated: %v", v)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("adjusted scores sum to %v, want 1", sum)
	}
	// Damping must not flip the hub/whale ordering.
	if adjusted["hub"] <= adjusted["whale"] {
		t.Fatalf("fairness must preserve ordering: hub %v vs whale %v", adjusted["hub"], adjusted["whale"])
	}
	// Zero scores rise to the floor share.
	if adjusted["u1"] <= 0 {
		t.Fatal("zero score must be floored")
	}
}

func TestAdjustForFairnessEmpty(t *testing.T) {
	if got := AdjustForFairness(nil, nil); len(got) != 0 {
		t.Fatalf("empty input should stay empty, got %v", got)
	}
}
