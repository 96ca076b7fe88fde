package audit

import (
	"math"

	"github.com/dotrep-network/dotrep/internal/infra/graph"
)

// Fairness pass constants.
const (
	richDamping      = 0.9  // applied to scores above half the max
	minorityBoost    = 1.1  // applied to low-connectivity actors
	scoreFloor       = 0.01 // no actor renormalizes to zero
	minorityDegreeLT = 5    // total degree below this marks low connectivity
)

// AdjustForFairness tempers rich-get-richer rankings: scores above half the
// maximum are dampened, low-connectivity actors get a boost, every score is
// floored, and the result is renormalized to sum to 1 so callers can treat
// it as a distribution.
//
// The input map is not mutated.
func AdjustForFairness(scores map[string]float64, snap *graph.Snapshot) map[string]float64 {
	adjusted := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return adjusted
	}

	maxScore := math.Inf(-1)
	for _, v := range scores {
		if v > maxScore {
			maxScore = v
		}
	}

	total := 0.0
	for actor, v := range scores {
		if v > maxScore*0.5 {
			v *= richDamping
		}
		if snap != nil {
			if deg := len(snap.Out[actor]) + len(snap.In[actor]); deg < minorityDegreeLT {
				v = math.Min(1, v*minorityBoost)
			}
		}
		if v < scoreFloor {
			v = scoreFloor
		}
		adjusted[actor] = v
		total += v
	}

	for actor := range adjusted {
		adjusted[actor] /= total
	}
	return adjusted
}
