// Package domain defines the core types of the dotrep reputation engine.
// It is dependency-free: graph algorithms, scoring, and transport live in
// internal/infra and internal/api.
package domain

import "time"

// ─── Actors & Interactions ──────────────────────────────────────────────────

// Actor is a node in the interaction graph. Actors are created on first
// reference from an interaction (or explicit registration) and never deleted —
// stale actors simply decay out of the rankings.
type Actor struct {
	ID             string            `json:"id"`
	Stake          float64           `json:"stake,omitempty"`            // ≥ 0, economic bond
	AccountAgeDays int               `json:"account_age_days,omitempty"` // calendar days since creation
	Fingerprints   []string          `json:"content_fingerprints,omitempty"`
	Attrs          map[string]string `json:"attrs,omitempty"`
}

// InteractionMeta carries optional per-interaction evidence.
type InteractionMeta struct {
	StakeBacked bool    `json:"stake_backed,omitempty"`
	Payment     float64 `json:"payment,omitempty"`
	Verified    bool    `json:"verified,omitempty"`
}

// Interaction is one endorsement from Source to Target. Repeated interactions
// for the same ordered pair are merged into a single aggregated edge by
// summing weights (sum preserves interaction-count semantics for PageRank).
type Interaction struct {
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Weight    float64          `json:"weight"` // > 0
	Timestamp time.Time        `json:"timestamp,omitempty"`
	Meta      *InteractionMeta `json:"metadata,omitempty"`
}

// GraphData mirrors the Graph Data Provider payload: a full snapshot of
// actors and aggregated interactions, used by bulk loading and the offline
// compute command.
type GraphData struct {
	Nodes []Actor       `json:"nodes"`
	Edges []Interaction `json:"edges"`
}

// ─── Score Bundles ──────────────────────────────────────────────────────────

// StructuralScores describe an actor's position in the graph.
type StructuralScores struct {
	PageRank     float64 `json:"pagerank"`
	Betweenness  float64 `json:"betweenness"`
	Closeness    float64 `json:"closeness"`
	Degree       float64 `json:"degree"`
	Eigenvector  float64 `json:"eigenvector"`
	Embeddedness float64 `json:"community_embeddedness"`
	Combined     float64 `json:"combined"`
}

// BehavioralScores describe interaction habits.
type BehavioralScores struct {
	EngagementBalance   float64 `json:"engagement_balance"`
	Reciprocity         float64 `json:"reciprocity"`
	ConnectionDiversity float64 `json:"connection_diversity"`
	ConnectionQuality   float64 `json:"connection_quality"`
	ResponsePattern     float64 `json:"response_pattern"`
	ActivityLongevity   float64 `json:"activity_longevity"`
	PostingRegularity   float64 `json:"posting_regularity"`
	Combined            float64 `json:"combined"`
}

// ContentScores summarize verified-content quality.
type ContentScores struct {
	Combined      float64 `json:"combined"`
	VerifiedRatio float64 `json:"verified_content_ratio"`
}

// EconomicScores describe stake and transaction footprint.
type EconomicScores struct {
	StakeScore           float64 `json:"stake_score"`
	TransactionActivity  float64 `json:"transaction_activity"`
	AccountAgeScore      float64 `json:"account_age_score"`
	TransactionDiversity float64 `json:"transaction_diversity"`
	Combined             float64 `json:"combined"`
}

// TemporalScores describe longevity and consistency over time.
type TemporalScores struct {
	AccountAgeScore     float64 `json:"account_age_score"`
	ActivityConsistency float64 `json:"activity_consistency"`
	LongTermEngagement  float64 `json:"long_term_engagement"`
	Combined            float64 `json:"combined"`
}

// ScoreBundle groups the five scoring dimensions. Every sub-score and every
// Combined value is in [0, 1].
type ScoreBundle struct {
	Structural StructuralScores `json:"structural"`
	Behavioral BehavioralScores `json:"behavioral"`
	Content    ContentScores    `json:"content_quality"`
	Economic   EconomicScores   `json:"economic"`
	Temporal   TemporalScores   `json:"temporal"`
}

// ─── Risk ───────────────────────────────────────────────────────────────────

// RiskLevel is the discrete classification of overall Sybil risk.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "minimal"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ClassifyRisk maps an overall risk score in [0,1] to a RiskLevel.
func ClassifyRisk(risk float64) RiskLevel {
	switch {
	case risk >= 0.8:
		return RiskCritical
	case risk >= 0.6:
		return RiskHigh
	case risk >= 0.4:
		return RiskMedium
	case risk >= 0.2:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// RiskBundle is the multi-factor Sybil risk assessment for one actor.
// Component risks and OverallRisk are in [0, 1].
type RiskBundle struct {
	Graph       float64   `json:"graph"`
	Behavioral  float64   `json:"behavioral"`
	Economic    float64   `json:"economic"`
	Content     float64   `json:"content"`
	Temporal    float64   `json:"temporal"`
	OverallRisk float64   `json:"overall_risk"`
	Level       RiskLevel `json:"risk_level"`
}

// ─── Results ────────────────────────────────────────────────────────────────

// ReputationResult is the engine's output for one actor. Immutable once
// returned; may be cached keyed by (actor, input signature).
type ReputationResult struct {
	Actor           string      `json:"actor"`
	Scores          ScoreBundle `json:"scores"`
	Risk            RiskBundle  `json:"risk"`
	FinalReputation float64     `json:"final_reputation"`
	SybilPenalty    float64     `json:"sybil_penalty"`
	Confidence      float64     `json:"confidence"`
	ComputedAt      time.Time   `json:"computed_at"`
	Recommendations []string    `json:"recommendations,omitempty"`
}

// ─── Flags ──────────────────────────────────────────────────────────────────

// FlagStatus tracks the lifecycle of a flag record.
type FlagStatus string

const (
	FlagOpen     FlagStatus = "open"
	FlagResolved FlagStatus = "resolved"
	FlagRejected FlagStatus = "rejected"
)

// FlagRecord is one report filed against a target actor. The flag log is
// append-only: records are never mutated in place.
type FlagRecord struct {
	ID                 string     `json:"id"`
	Reporter           string     `json:"reporter"`
	Target             string     `json:"target"`
	FlagType           string     `json:"flag_type"`
	Confidence         float64    `json:"confidence"` // reporter's stated confidence, [0,1]
	ReporterReputation float64    `json:"reporter_reputation"`
	Timestamp          time.Time  `json:"timestamp"`
	Description        string     `json:"description,omitempty"`
	Status             FlagStatus `json:"status"`
}
