package flagging

import (
	"sort"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/dsa"
)

// coordinationAlertThreshold triggers an alert; minAlertFlags is the
// smallest flag pile worth analyzing for coordination.
const (
	coordinationAlertThreshold = 0.7
	minAlertFlags              = 3
)

// SummaryMetrics aggregate a flag window.
type SummaryMetrics struct {
	TotalFlags        int     `json:"total_flags"`
	UniqueTargets     int     `json:"unique_targets"`
	UniqueReporters   int     `json:"unique_reporters"`
	AverageConfidence float64 `json:"average_confidence"`
	ResolutionRate    float64 `json:"resolution_rate"`
}

// Alert marks a target whose flags look coordinated.
type Alert struct {
	Target            string  `json:"target"`
	FlagCount         int     `json:"flag_count"`
	CoordinationScore float64 `json:"coordination_score"`
	Pattern           string  `json:"pattern_type"`
	RiskLevel         string  `json:"risk_level"`
}

// TargetSummary is one row of the top-flagged list.
type TargetSummary struct {
	Target            string  `json:"target"`
	FlagCount         int     `json:"flag_count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// ReporterProfile summarizes one reporter's filing behavior.
type ReporterProfile struct {
	Reporter          string  `json:"reporter"`
	FlagCount         int     `json:"flag_count"`
	AverageConfidence float64 `json:"average_confidence"`
	Reputation        float64 `json:"reputation"`
	Suspicious        bool    `json:"suspicious,omitempty"` // low reputation or unusually prolific
}

// Insights is the network-wide flagging report.
type Insights struct {
	WindowHours         int               `json:"time_window_hours"`
	Summary             SummaryMetrics    `json:"summary_metrics"`
	Alerts              []Alert           `json:"coordination_alerts"`
	TopFlagged          []TargetSummary   `json:"top_flagged"`
	TopReporters        []ReporterProfile `json:"top_reporters"`
	SuspiciousReporters []ReporterProfile `json:"suspicious_reporters"`
}

// Insights builds the network-wide report over the given flags.
func (a *Analyzer) Insights(flags []domain.FlagRecord, windowHours int) Insights {
	in := Insights{WindowHours: windowHours}

	byTarget := make(map[string][]domain.FlagRecord)
	byReporter := make(map[string][]domain.FlagRecord)
	confSum := 0.0
	resolved := 0
	for _, f := range flags {
		byTarget[f.Target] = append(byTarget[f.Target], f)
		byReporter[f.Reporter] = append(byReporter[f.Reporter], f)
		confSum += f.Confidence
		if f.Status == domain.FlagResolved {
			resolved++
		}
	}
	in.Summary = SummaryMetrics{
		TotalFlags:      len(flags),
		UniqueTargets:   len(byTarget),
		UniqueReporters: len(byReporter),
	}
	if len(flags) > 0 {
		in.Summary.AverageConfidence = confSum / float64(len(flags))
		in.Summary.ResolutionRate = float64(resolved) / float64(len(flags))
	}

	topFlagged := dsa.NewTopK(20)
	for target, tf := range byTarget {
		avg := 0.0
		for _, f := range tf {
			avg += f.Confidence
		}
		avg /= float64(len(tf))
		topFlagged.Offer(dsa.ScoredItem{
			Key:   target,
			Score: float64(len(tf)),
			Value: TargetSummary{
				Target:            target,
				FlagCount:         len(tf),
				AverageConfidence: avg,
			},
		})

		if len(tf) >= minAlertFlags {
			an := a.Analyze(target, tf)
			if an.Coordination.Overall > coordinationAlertThreshold {
				level := "medium"
				if an.Coordination.Overall > 0.8 {
					level = "high"
				}
				in.Alerts = append(in.Alerts, Alert{
					Target:            target,
					FlagCount:         len(tf),
					CoordinationScore: an.Coordination.Overall,
					Pattern:           identifyPattern(an.Coordination),
					RiskLevel:         level,
				})
			}
		}
	}
	for _, it := range topFlagged.Items() {
		in.TopFlagged = append(in.TopFlagged, it.Value.(TargetSummary))
	}
	sort.Slice(in.Alerts, func(i, j int) bool { return in.Alerts[i].CoordinationScore > in.Alerts[j].CoordinationScore })

	topReporters := dsa.NewTopK(10)
	suspicious := dsa.NewTopK(10)
	for reporter, rf := range byReporter {
		avg, rep := 0.0, 0.0
		for _, f := range rf {
			avg += f.Confidence
			rep = f.ReporterReputation
		}
		avg /= float64(len(rf))
		p := ReporterProfile{
			Reporter:          reporter,
			FlagCount:         len(rf),
			AverageConfidence: avg,
			Reputation:        rep,
			Suspicious:        rep < 0.3 || len(rf) > 10,
		}
		topReporters.Offer(dsa.ScoredItem{Key: reporter, Score: float64(len(rf)), Value: p})
		if p.Suspicious {
			suspicious.Offer(dsa.ScoredItem{Key: reporter, Score: float64(len(rf)), Value: p})
		}
	}
	for _, it := range topReporters.Items() {
		in.TopReporters = append(in.TopReporters, it.Value.(ReporterProfile))
	}
	for _, it := range suspicious.Items() {
		in.SuspiciousReporters = append(in.SuspiciousReporters, it.Value.(ReporterProfile))
	}
	return in
}

func identifyPattern(c CoordinationSignals) string {
	switch {
	case c.BurstScore > 0.7:
		return "temporal_burst"
	case c.CliqueScore > 0.7:
		return "reporter_clique"
	case c.SimilarityScore > 0.7:
		return "behavioral_similarity"
	default:
		return "mixed_pattern"
	}
}
