package signals

import (
	"math"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// Behavioral dimension weights.
const (
	wEngagement  = 0.20
	wReciprocity = 0.20
	wDiversity   = 0.15
	wQuality     = 0.15
	wResponse    = 0.15
	wLongevity   = 0.10
	wRegularity  = 0.05
)

// defaultResponsePattern stands in until per-interaction response latency is
// ingested; the sub-score stays a named field so callers see the extension
// point.
const defaultResponsePattern = 0.5

// Behavioral scores interaction habits from the snapshot alone.
func Behavioral(gl *Globals, actor string) domain.BehavioralScores {
	snap := gl.Snapshot
	if _, ok := snap.Nodes[actor]; !ok {
		return domain.BehavioralScores{}
	}

	outDeg := len(snap.Out[actor])
	inDeg := len(snap.In[actor])
	total := outDeg + inDeg

	b := domain.BehavioralScores{
		ResponsePattern:   defaultResponsePattern,
		ActivityLongevity: math.Min(1, float64(total)/100),
		PostingRegularity: math.Min(1, float64(outDeg)/50),
	}

	if total > 0 {
		b.EngagementBalance = 1 - math.Abs(float64(inDeg)-float64(outDeg))/float64(total)
	}

	mutual, union := 0, 0
	seen := make(map[string]struct{}, total)
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
	if union > 0 {
		b.Reciprocity = float64(mutual) / float64(union)
	}

	// Neighbor degree distribution: variance drives diversity, mean drives
	// quality. Hub-and-spoke farms have near-zero variance.
	degs := neighborDegrees(gl, actor)
	if len(degs) > 0 {
		mean, variance := meanVar(degs)
		b.ConnectionDiversity = math.Min(1, variance/100)
		b.ConnectionQuality = math.Min(1, mean/50)
	}

	b.Combined = clamp01(
		b.EngagementBalance*wEngagement +
			b.Reciprocity*wReciprocity +
			b.ConnectionDiversity*wDiversity +
			b.ConnectionQuality*wQuality +
			b.ResponsePattern*wResponse +
			b.ActivityLongevity*wLongevity +
			b.PostingRegularity*wRegularity)
	return b
}

func neighborDegrees(gl *Globals, actor string) []float64 {
	snap := gl.Snapshot
	seen := make(map[string]struct{})
	for t := range snap.Out[actor] {
		seen[t] = struct{}{}
	}
	for s := range snap.In[actor] {
		seen[s] = struct{}{}
	}
	degs := make([]float64, 0, len(seen))
	for n := range seen {
		degs = append(degs, float64(len(snap.Out[n])+len(snap.In[n])))
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
