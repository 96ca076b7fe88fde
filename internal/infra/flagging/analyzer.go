package flagging

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
)

// Coordination signal weights.
const (
	wBurst      = 0.3
	wClique     = 0.4
	wSimilarity = 0.2
	wContent    = 0.1
)

// burstGap is the consecutive-flag gap that counts toward a burst.
const burstGap = 300 * time.Second

// maxPenalty caps the reputation reduction from flags at 50% so even a
// fully credible pile-on cannot zero an actor out.
const maxPenalty = 0.5

// DefaultWindow is the default look-back over the flag log when analyzing a
// target. Stale flags age out of the penalty instead of accruing forever.
const DefaultWindow = 24 * time.Hour

// Within returns the flags filed at or after cutoff, preserving order.
func Within(flags []domain.FlagRecord, cutoff time.Time) []domain.FlagRecord {
	out := make([]domain.FlagRecord, 0, len(flags))
	for _, f := range flags {
		if !f.Timestamp.Before(cutoff) {
			out = append(out, f)
		}
	}
	return out
}

// CoordinationSignals are the per-target brigade indicators.
type CoordinationSignals struct {
	BurstScore      float64  `json:"burst_score"`       // fraction of gaps ≤ 5 min
	RegularityScore float64  `json:"regularity_score"`  // 1 - CV of gaps, floored at 0
	TimeSpanHours   float64  `json:"time_span_hours"`
	ReporterDensity float64  `json:"reporter_network_density"`
	MaxCliqueSize   int      `json:"max_clique_size"`
	CliqueScore     float64  `json:"clique_coordination_score"` // max clique / unique reporters
	UniqueReporters int      `json:"unique_reporters"`
	SimilarityScore float64  `json:"similarity_score"` // reporter pairs sharing a flag type
	PatternScore    float64  `json:"pattern_score"`    // repeated description tokens / 5
	CommonPatterns  []string `json:"common_patterns,omitempty"`
	Overall         float64  `json:"overall_coordination_score"`
}

// RiskAssessment is the residual credible risk after coordination discount.
type RiskAssessment struct {
	LegitimateFlagRisk     float64 `json:"legitimate_flag_risk"`
	CredibleReporterImpact float64 `json:"credible_reporter_impact"`
	CoordinationMitigation float64 `json:"coordination_mitigation"`
	OverallRisk            float64 `json:"overall_risk"`
}

// Analysis is the full flagging picture for one target.
type Analysis struct {
	Target                    string              `json:"target"`
	TotalFlags                int                 `json:"total_flags"`
	UniqueReporters           int                 `json:"unique_reporters"`
	AverageConfidence         float64             `json:"average_confidence"`
	CredibleReporters         int                 `json:"credible_reporters"`          // reporter reputation ≥ 0.7
	LowReputationReporters    int                 `json:"low_reputation_reporters"`    // < 0.3
	AverageReporterReputation float64             `json:"average_reporter_reputation"`
	ReporterDiversity         float64             `json:"reporter_diversity"` // unique reporters / flags
	Coordination              CoordinationSignals `json:"coordination_signals"`
	Risk                      RiskAssessment      `json:"risk_assessment"`
}

// Analyzer detects coordinated flagging against the social graph.
type Analyzer struct {
	graph *graph.Graph
}

// NewAnalyzer binds the analyzer to the trust graph used for reporter
// relationship checks.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{graph: g}
}

// Analyze runs the full coordination and credibility analysis for one
// target's flags.
func (a *Analyzer) Analyze(target string, flags []domain.FlagRecord) Analysis {
	an := Analysis{Target: target, TotalFlags: len(flags)}
	if len(flags) == 0 {
		an.Coordination.Overall = 0
		return an
	}

	reporters := make(map[string][]domain.FlagRecord)
	confSum, repSum := 0.0, 0.0
	for _, f := range flags {
		reporters[f.Reporter] = append(reporters[f.Reporter], f)
		confSum += f.Confidence
		repSum += f.ReporterReputation
		if f.ReporterReputation >= 0.7 {
			an.CredibleReporters++
		}
		if f.ReporterReputation < 0.3 {
			an.LowReputationReporters++
		}
	}
	an.UniqueReporters = len(reporters)
	an.AverageConfidence = confSum / float64(len(flags))
	an.AverageReporterReputation = repSum / float64(len(flags))
	an.ReporterDiversity = float64(an.UniqueReporters) / float64(len(flags))

	an.Coordination = a.coordination(flags, reporters)
	an.Risk = assessRisk(an)
	return an
}

func (a *Analyzer) coordination(flags []domain.FlagRecord, reporters map[string][]domain.FlagRecord) CoordinationSignals {
	c := CoordinationSignals{UniqueReporters: len(reporters)}
	c.BurstScore, c.RegularityScore, c.TimeSpanHours = temporalSignals(flags)
	c.ReporterDensity, c.MaxCliqueSize, c.CliqueScore = a.reporterClique(reporters)
	c.SimilarityScore = behaviorSimilarity(reporters)
	c.PatternScore, c.CommonPatterns = contentPatterns(flags)

	c.Overall = math.Min(1,
		c.BurstScore*wBurst+
			c.CliqueScore*wClique+
			c.SimilarityScore*wSimilarity+
			c.PatternScore*wContent)
	return c
}

// temporalSignals measures burstiness and mechanical regularity of flag
// arrival times.
func temporalSignals(flags []domain.FlagRecord) (burst, regularity, spanHours float64) {
	if len(flags) < 2 {
		return 0, 0, 0
	}
	ts := make([]time.Time, len(flags))
	for i, f := range flags {
		ts[i] = f.Timestamp
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })

	gaps := make([]float64, 0, len(ts)-1)
	inBurst := 0
	for i := 1; i < len(ts); i++ {
		gap := ts[i].Sub(ts[i-1])
		gaps = append(gaps, gap.Seconds())
		if gap <= burstGap {
			inBurst++
		}
	}
	burst = float64(inBurst) / float64(len(gaps))
	spanHours = ts[len(ts)-1].Sub(ts[0]).Hours()

	if len(gaps) >= 2 {
		mean, variance := meanVar(gaps)
		if mean == 0 {
			regularity = 1 // all at once
		} else {
			cv := math.Sqrt(variance) / mean
			regularity = math.Max(0, 1-cv)
		}
	}
	return burst, regularity, spanHours
}

// reporterClique measures how tightly the reporters know each other: the
// density of the reporter subgraph and the largest clique's share of the
// reporter set.
func (a *Analyzer) reporterClique(reporters map[string][]domain.FlagRecord) (density float64, maxClique int, score float64) {
	ids := make([]string, 0, len(reporters))
	for r := range reporters {
		if a.graph.Has(r) {
			ids = append(ids, r)
		}
	}
	maxClique = 1
	if len(ids) < 2 {
		return 0, maxClique, 0
	}
	sort.Strings(ids)

	// Undirected reporter subgraph.
	adj := make(map[string]map[string]struct{}, len(ids))
	for _, r := range ids {
		adj[r] = make(map[string]struct{})
	}
	links := 0
	for i, u := range ids {
		for _, v := range ids[i+1:] {
			if a.graph.HasEdge(u, v) || a.graph.HasEdge(v, u) {
				adj[u][v] = struct{}{}
				adj[v][u] = struct{}{}
				links++
			}
		}
	}
	density = 2 * float64(links) / float64(len(ids)*(len(ids)-1))
	maxClique = maxCliqueSize(ids, adj)
	score = float64(maxClique) / float64(len(reporters))
	return density, maxClique, score
}

// maxCliqueSize runs Bron–Kerbosch with pivoting. Reporter sets are small
// (one per flag at most), so the exponential worst case is not a concern.
func maxCliqueSize(ids []string, adj map[string]map[string]struct{}) int {
	best := 1
	var bk func(r, p, x map[string]struct{})
	bk = func(r, p, x map[string]struct{}) {
		if len(p) == 0 && len(x) == 0 {
			if len(r) > best {
				best = len(r)
			}
			return
		}
		// Pivot on the candidate with the most neighbors in p.
		var pivot string
		most := -1
		for _, set := range []map[string]struct{}{p, x} {
			for u := range set {
				count := 0
				for v := range adj[u] {
					if _, ok := p[v]; ok {
						count++
					}
				}
				if count > most {
					most, pivot = count, u
				}
			}
		}
		candidates := make([]string, 0, len(p))
		for u := range p {
			if _, ok := adj[pivot][u]; !ok {
				candidates = append(candidates, u)
			}
		}
		for _, u := range candidates {
			nr := cloneSet(r)
			nr[u] = struct{}{}
			bk(nr, intersect(p, adj[u]), intersect(x, adj[u]))
			delete(p, u)
			x[u] = struct{}{}
		}
	}

	p := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		p[id] = struct{}{}
	}
	bk(map[string]struct{}{}, p, map[string]struct{}{})
	return best
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func intersect(s map[string]struct{}, t map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range s {
		if _, ok := t[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// behaviorSimilarity is the fraction of reporter pairs that flagged the
// same type.
func behaviorSimilarity(reporters map[string][]domain.FlagRecord) float64 {
	if len(reporters) < 2 {
		return 0
	}
	types := make([]map[string]struct{}, 0, len(reporters))
	for _, flags := range reporters {
		set := make(map[string]struct{})
		for _, f := range flags {
			set[f.FlagType] = struct{}{}
		}
		types = append(types, set)
	}
	matches, comparisons := 0, 0
	for i := 0; i < len(types); i++ {
		for j := i + 1; j < len(types); j++ {
			comparisons++
			for t := range types[i] {
				if _, ok := types[j][t]; ok {
					matches++
					break
				}
			}
		}
	}
	return float64(matches) / float64(comparisons)
}

// contentPatterns counts description tokens longer than 3 characters that
// repeat across flags; five or more repeated tokens saturates the score.
func contentPatterns(flags []domain.FlagRecord) (float64, []string) {
	counts := make(map[string]int)
	for _, f := range flags {
		if f.Description == "" {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(f.Description)) {
			if len(w) > 3 {
				counts[w]++
			}
		}
	}
	common := make([]string, 0, 5)
	for w, n := range counts {
		if n >= 2 {
			common = append(common, w)
		}
	}
	sort.Strings(common)
	if len(common) > 5 {
		common = common[:5]
	}
	if len(common) == 0 {
		return 0, nil
	}
	return math.Min(1, float64(len(common))/5), common
}

// assessRisk converts the analysis into residual credible risk: confidence
// from credible reporters survives, coordination discounts everything.
func assessRisk(an Analysis) RiskAssessment {
	r := RiskAssessment{
		CoordinationMitigation: 1 - an.Coordination.Overall,
	}
	credibleRatio := 0.0
	if an.UniqueReporters > 0 {
		credibleRatio = float64(an.CredibleReporters) / float64(an.UniqueReporters)
	}
	r.LegitimateFlagRisk = an.AverageConfidence * credibleRatio * 0.6

	impactWeight := 0.4
	if an.AverageReporterReputation >= 0.7 {
		impactWeight = 0.8
	}
	r.CredibleReporterImpact = an.AverageConfidence * impactWeight * 0.4

	r.OverallRisk = math.Min(1, (r.LegitimateFlagRisk+r.CredibleReporterImpact)*r.CoordinationMitigation)
	return r
}

// ApplyAdjustment reduces a base reputation by the flagging impact, capped
// at maxPenalty. Returns the adjusted score and the applied penalty fraction.
func ApplyAdjustment(base, impact float64) (adjusted, penalty float64) {
	penalty = math.Min(impact, maxPenalty)
	adjusted = math.Max(0, base*(1-penalty))
	return adjusted, penalty
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
