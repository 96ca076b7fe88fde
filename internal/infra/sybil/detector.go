// Package sybil assesses multi-factor Sybil risk per actor. The detector
// reads the same shared graph globals as the scorers and combines five
// component risks into an overall score with a discrete level.
//
// Heuristics are additive and capped: each trigger contributes a fixed
// increment so a single noisy metric cannot saturate the component on its
// own.
package sybil

import (
	"math"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
	"github.com/dotrep-network/dotrep/internal/infra/signals"
)

// Component weights of the overall risk.
const (
	wGraph      = 0.35
	wBehavioral = 0.25
	wEconomic   = 0.20
	wContent    = 0.10
	wTemporal   = 0.10
)

// Evidence is the per-actor context the detector needs beyond the graph:
// resolved raw stake, content-quality combined score, and account age. The
// engine assembles it from the same inputs it scores with.
type Evidence struct {
	StakeAmount     float64 // raw stake units, not the log-curve sub-score
	ContentCombined float64 // content-quality combined, [0,1]
	AccountAgeDays  int
}

// Detector holds no mutable state; community detection is memoized in the
// Globals it receives.
type Detector struct{}

// New returns a Detector.
func New() *Detector { return &Detector{} }

// Assess computes the full risk bundle for one actor. Unknown actors get
// maximal graph/economic/temporal risk: an actor nobody has interacted with
// is indistinguishable from a throwaway.
func (d *Detector) Assess(gl *signals.Globals, actor string, ev Evidence) domain.RiskBundle {
	var b domain.RiskBundle
	if _, ok := gl.Snapshot.Nodes[actor]; !ok {
		b = domain.RiskBundle{Graph: 1, Behavioral: 0.5, Economic: 1, Content: 0.5, Temporal: 1}
	} else {
		b = domain.RiskBundle{
			Graph:      d.graphRisk(gl, actor),
			Behavioral: d.behavioralRisk(gl, actor),
			Economic:   d.economicRisk(gl, actor, ev),
			Content:    clamp01(1 - ev.ContentCombined),
			Temporal:   clamp01(1 - math.Min(1, float64(ev.AccountAgeDays)/365)),
		}
	}
	b.OverallRisk = clamp01(
		b.Graph*wGraph +
			b.Behavioral*wBehavioral +
			b.Economic*wEconomic +
			b.Content*wContent +
			b.Temporal*wTemporal)
	b.Level = domain.ClassifyRisk(b.OverallRisk)
	return b
}

// graphRisk fires additive triggers on community shape and local topology.
func (d *Detector) graphRisk(gl *signals.Globals, actor string) float64 {
	risk := 0.0

	if info := gl.Communities.Info[gl.Communities.Label[actor]]; info != nil {
		if info.Isolation > 0.9 {
			risk += 0.3 // community barely talks to the outside
		}
		if info.Density > 0.8 && info.Size < 20 {
			risk += 0.2 // small, suspiciously tight cluster
		}
	}

	if connectionDiversity(gl.Snapshot, actor) < 0.2 {
		risk += 0.2 // endorsement targets all look alike
	}

	clustering := gl.Centrality.Clustering[actor]
	if clustering > 0.9 {
		risk += 0.15
	}

	// Degree anomaly: low-degree nodes inside tight clusters, scaled by the
	// z-score against the graph-wide degree distribution.
	deg := float64(len(gl.Snapshot.Out[actor]) + len(gl.Snapshot.In[actor]))
	if gl.DegreeStd > 0 && deg < 0.5*gl.DegreeMean && clustering > 0.8 {
		z := math.Abs(deg-gl.DegreeMean) / gl.DegreeStd
		risk += math.Min(1, z/3) * 0.15
	}

	return clamp01(risk)
}

// Behavioral sub-risk weights.
const (
	wBurstiness    = 0.30
	wNonReciprocal = 0.25
	wUniformity    = 0.25
	wTimingRisk    = 0.10
	wResponseRisk  = 0.10
)

// Defaults for sub-risks awaiting an activity timeline.
const (
	defaultTimingRisk   = 0.2
	defaultResponseRisk = 0.2
)

func (d *Detector) behavioralRisk(gl *signals.Globals, actor string) float64 {
	snap := gl.Snapshot
	outDeg := len(snap.Out[actor])
	inDeg := len(snap.In[actor])

	// Burst blasting: many endorsements out, nothing back.
	burstiness := 0.2
	switch {
	case inDeg == 0 && outDeg > 10:
		burstiness = 0.8
	case inDeg > 0 && outDeg > 5*inDeg:
		burstiness = 0.6
	}

	mutual, union := 0, 0
	seen := make(map[string]struct{}, outDeg+inDeg)
	for t := range snap.Out[actor] {
		seen[t] = struct{}{}
		if _, ok := snap.In[actor][t]; ok {
			mutual++
		}
	}
	for s := range snap.In[actor] {
		seen[s] = struct{}{}
	}
	union = len(seen)
	reciprocity := 0.0
	if union > 0 {
		reciprocity = float64(mutual) / float64(union)
	}

	// Farm accounts endorse peers with near-identical footprints; organic
	// actors reach targets of wildly different prominence.
	uniformity := 0.0
	if degs := successorDegrees(snap, actor); len(degs) >= 2 {
		_, variance := meanVar(degs)
		uniformity = 1 - math.Min(1, variance/10)
	}

	return clamp01(
		burstiness*wBurstiness +
			(1-reciprocity)*wNonReciprocal +
			uniformity*wUniformity +
			defaultTimingRisk*wTimingRisk +
			defaultResponseRisk*wResponseRisk)
}

func (d *Detector) economicRisk(gl *signals.Globals, actor string, ev Evidence) float64 {
	stakeRisk := 0.0
	if ev.StakeAmount <= 0.1 {
		stakeRisk = 0.5 // nothing at stake, nothing to lose
	}
	activityRisk := 0.0
	if len(gl.Snapshot.Out[actor])+len(gl.Snapshot.In[actor]) <= 5 {
		activityRisk = 0.3
	}
	return clamp01(stakeRisk*0.6 + activityRisk*0.4)
}

// connectionDiversity measures the spread in the degrees of the actor's
// endorsement targets. Fewer than two targets counts as no diversity.
func connectionDiversity(snap *graph.Snapshot, actor string) float64 {
	degs := successorDegrees(snap, actor)
	if len(degs) < 2 {
		return 0
	}
	_, variance := meanVar(degs)
	return math.Min(1, variance/100)
}

func successorDegrees(snap *graph.Snapshot, actor string) []float64 {
	degs := make([]float64, 0, len(snap.Out[actor]))
	for t := range snap.Out[actor] {
		degs = append(degs, float64(len(snap.Out[t])+len(snap.In[t])))
	}
	return degs
}

func meanVar(xs []float64) (mean, variance float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return mean, variance
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
