package signals

import (
	"math"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// Temporal dimension weights.
const (
	wTempAge         = 0.40
	wTempConsistency = 0.30
	wTempEngagement  = 0.30
)

// Defaults for the sub-scores that need an activity timeline; they hold
// until interaction history ingestion lands.
const (
	defaultActivityConsistency = 0.5
	defaultLongTermEngagement  = 0.5
)

// Temporal scores longevity: account age saturates at two years.
func Temporal(gl *Globals, actor string, ageDays int) domain.TemporalScores {
	if _, ok := gl.Snapshot.Nodes[actor]; !ok {
		return domain.TemporalScores{}
	}

	t := domain.TemporalScores{
		AccountAgeScore:     math.Min(1, float64(ageDays)/730),
		ActivityConsistency: defaultActivityConsistency,
		LongTermEngagement:  defaultLongTermEngagement,
	}
	t.Combined = clamp01(
		t.AccountAgeScore*wTempAge +
			t.ActivityConsistency*wTempConsistency +
			t.LongTermEngagement*wTempEngagement)
	return t
}
