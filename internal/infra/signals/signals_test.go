package signals

import (
	"math"
	"testing"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
)

// buildGlobals assembles the shared metric set the way the engine does.
func buildGlobals(t *testing.T, g *graph.Graph) *Globals {
	t.Helper()
	snap := g.Snapshot()
	mean, std := snap.DegreeStats()
	return &Globals{
		Snapshot:    snap,
		PageRank:    snap.PageRank(graph.DefaultPageRankConfig(), nil, time.Now()),
		Centrality:  snap.ComputeCentrality(),
		Communities: snap.DetectCommunities(1),
		DegreeMean:  mean,
		DegreeStd:   std,
	}
}

func interact(t *testing.T, g *graph.Graph, src, dst string) {
	t.Helper()
	if err := g.AddInteraction(domain.Interaction{Source: src, Target: dst, Weight: 1}); err != nil {
		t.Fatal(err)
	}
}

func TestStructuralAbsentActorIsZero(t *testing.T) {
	g := graph.New()
	interact(t, g, "a", "b")
	gl := buildGlobals(t, g)

	if got := Structural(gl, "ghost"); got != (domain.StructuralScores{}) {
		t.Fatalf("absent actor structural = %+v, want zero bundle", got)
	}
	if got := Behavioral(gl, "ghost"); got != (domain.BehavioralScores{}) {
		t.Fatalf("absent actor behavioral = %+v, want zero bundle", got)
	}
	if got := Economic(gl, "ghost", 100, 0.5, 100); got != (domain.EconomicScores{}) {
		t.Fatalf("absent actor economic = %+v, want zero bundle", got)
	}
	if got := Temporal(gl, "ghost", 100); got != (domain.TemporalScores{}) {
		t.Fatalf("absent actor temporal = %+v, want zero bundle", got)
	}
}

func TestStructuralHubOutranksSpoke(t *testing.T) {
	g := graph.New()
	for _, s := range []string{"s1", "s2", "s3", "s4"} {
		interact(t, g, s, "hub")
		interact(t, g, "hub", s)
	}
	gl := buildGlobals(t, g)

	hub := Structural(gl, "hub")
	spoke := Structural(gl, "s1")
	if hub.Combined <= spoke.Combined {
		t.Fatalf("hub combined %v should exceed spoke %v", hub.Combined, spoke.Combined)
	}
	if hub.Combined < 0 || hub.Combined > 1 {
		t.Fatalf("combined %v outside [0,1]", hub.Combined)
	}
}

func TestBehavioralReciprocity(t *testing.T) {
	g := graph.New()
	interact(t, g, "a", "b")
	interact(t, g, "b", "a")
	interact(t, g, "a", "c")
	gl := buildGlobals(t, g)

	b := Behavioral(gl, "a")
	if b.Reciprocity != 0.5 {
		t.Fatalf("reciprocity = %v, want 0.5 (1 mutual of 2 partners)", b.Reciprocity)
	}
	// 1 - |1 in - 2 out| / 3 total
	if math.Abs(b.EngagementBalance-2.0/3.0) > 1e-12 {
		t.Fatalf("engagement balance = %v, want 2/3", b.EngagementBalance)
	}
}

func TestBehavioralOneWayBlasterScoresLow(t *testing.T) {
	g := graph.New()
	for _, dst := range []string{"t1", "t2", "t3", "t4", "t5"} {
		interact(t, g, "blaster", dst)
	}
	interact(t, g, "organic", "t1")
	interact(t, g, "t1", "organic")
	gl := buildGlobals(t, g)

	blaster := Behavioral(gl, "blaster")
	if blaster.Reciprocity != 0 || blaster.EngagementBalance != 0 {
		t.Fatalf("one-way blaster: reciprocity=%v balance=%v, want both 0", blaster.Reciprocity, blaster.EngagementBalance)
	}
	organic := Behavioral(gl, "organic")
	if organic.Reciprocity != 1.0 {
		t.Fatalf("fully reciprocal actor reciprocity = %v, want 1.0", organic.Reciprocity)
	}
}

func TestEconomicStakeCurve(t *testing.T) {
	g := graph.New()
	interact(t, g, "a", "b")
	gl := buildGlobals(t, g)

	zero := Economic(gl, "a", 0, 0, 0)
	if zero.StakeScore != 0 {
		t.Fatalf("zero stake score = %v, want 0", zero.StakeScore)
	}
	sat := Economic(gl, "a", 10000, 0, 0)
	if sat.StakeScore != 1.0 {
		t.Fatalf("10k stake score = %v, want saturation at 1.0", sat.StakeScore)
	}
	mid := Economic(gl, "a", 1000, 0, 0)
	// ln(2)/ln(11) ≈ 0.289: the first thousand buys ~29% of the curve.
	if mid.StakeScore <= 0.25 || mid.StakeScore >= 0.35 {
		t.Fatalf("1k stake score = %v, want ≈ 0.289", mid.StakeScore)
	}
	if more := Economic(gl, "a", 5000, 0, 0); more.StakeScore <= mid.StakeScore {
		t.Fatal("stake score must be monotonic in stake")
	}
}

func TestEconomicAccountAgeSaturates(t *testing.T) {
	g := graph.New()
	interact(t, g, "a", "b")
	gl := buildGlobals(t, g)

	if got := Economic(gl, "a", 0, 0, 365).AccountAgeScore; got != 1.0 {
		t.Fatalf("1-year economic age score = %v, want 1.0", got)
	}
	if got := Temporal(gl, "a", 365).AccountAgeScore; got != 0.5 {
		t.Fatalf("1-year temporal age score = %v, want 0.5 (2-year horizon)", got)
	}
	if got := Temporal(gl, "a", 2000).AccountAgeScore; got != 1.0 {
		t.Fatalf("old account temporal age score = %v, want capped 1.0", got)
	}
}
