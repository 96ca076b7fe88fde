// Package signals computes the per-dimension score primitives that feed
// reputation fusion. Each dimension exposes one pure function over the graph
// (plus precomputed global metrics) returning a bundle of named sub-scores
// and their weighted combination, all clamped to [0,1].
//
// Actors missing from the graph always yield the zero bundle — never an
// error, so batch paths degrade per-actor.
package signals

import (
	"math"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
)

// Globals carries the graph-wide metrics shared across every actor in a
// scoring round. Computing them once per graph epoch is what makes batch
// scoring tractable; the engine caches this struct keyed by epoch.
type Globals struct {
	Snapshot    *graph.Snapshot
	PageRank    map[string]float64
	Centrality  *graph.Centrality
	Communities *graph.Communities
	DegreeMean  float64
	DegreeStd   float64
}

// Structural dimension weights.
const (
	wPageRank     = 0.25
	wBetweenness  = 0.20
	wCloseness    = 0.15
	wDegreeCent   = 0.15
	wEigenvector  = 0.15
	wEmbeddedness = 0.10
)

// Structural scores an actor's graph position from the shared globals.
func Structural(gl *Globals, actor string) domain.StructuralScores {
	if _, ok := gl.Snapshot.Nodes[actor]; !ok {
		return domain.StructuralScores{}
	}
	s := domain.StructuralScores{
		PageRank:     gl.PageRank[actor],
		Betweenness:  gl.Centrality.Betweenness[actor],
		Closeness:    gl.Centrality.Closeness[actor],
		Degree:       gl.Centrality.Degree[actor],
		Eigenvector:  gl.Centrality.Eigenvector[actor],
		Embeddedness: gl.Snapshot.Embeddedness(actor, gl.Communities),
	}
	s.Combined = clamp01(
		s.PageRank*wPageRank +
			s.Betweenness*wBetweenness +
			s.Closeness*wCloseness +
			s.Degree*wDegreeCent +
			s.Eigenvector*wEigenvector +
			s.Embeddedness*wEmbeddedness)
	return s
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
