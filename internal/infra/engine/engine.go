// Package engine fuses the per-dimension score primitives, Sybil risk, and
// flag analysis into final reputation results. It owns the two caches that
// make repeated and batch computation cheap: the graph-wide metric set
// (PageRank, centrality, communities) keyed by graph epoch, and the
// per-actor result memo.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/content"
	"github.com/dotrep-network/dotrep/internal/infra/flagging"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
	"github.com/dotrep-network/dotrep/internal/infra/observability"
	"github.com/dotrep-network/dotrep/internal/infra/signals"
	"github.com/dotrep-network/dotrep/internal/infra/sybil"
)

// Fusion weights of the five dimensions.
const (
	wStructural = 0.25
	wBehavioral = 0.20
	wContent    = 0.25
	wEconomic   = 0.20
	wTemporal   = 0.10
)

// Config tunes the engine.
type Config struct {
	PageRank      graph.PageRankConfig
	CacheTTL      time.Duration // globals and per-actor memo lifetime
	CommunitySeed int64
	BatchChunk    int // actors per batch chunk
	BatchWorkers  int // concurrent chunk workers
}

// DefaultConfig returns production defaults: hour-long caches, chunks of
// 100 actors across 4 workers.
func DefaultConfig() Config {
	return Config{
		PageRank:      graph.DefaultPageRankConfig(),
		CacheTTL:      time.Hour,
		CommunitySeed: 1,
		BatchChunk:    100,
		BatchWorkers:  4,
	}
}

// Engine computes reputation over a shared trust graph.
type Engine struct {
	cfg      Config
	graph    *graph.Graph
	bridge   *content.Bridge
	detector *sybil.Detector
	stakes   domain.StakeProvider // optional
	consumer domain.ResultConsumer
	flags    domain.FlagSource
	analyzer *flagging.Analyzer
	metrics  *observability.Metrics

	globals *globalsCache
	results *resultCache

	now func() time.Time
}

// Option configures optional collaborators.
type Option func(*Engine)

// WithStakeProvider injects the economic data provider.
func WithStakeProvider(p domain.StakeProvider) Option {
	return func(e *Engine) { e.stakes = p }
}

// WithConsumer injects a downstream result consumer, called after every
// successful computation.
func WithConsumer(c domain.ResultConsumer) Option {
	return func(e *Engine) { e.consumer = c }
}

// WithVerifier injects the content verifier.
func WithVerifier(v content.Verifier) Option {
	return func(e *Engine) { e.bridge = content.NewBridge(v) }
}

// WithFlagSource injects the flag log used by flag-adjusted computation.
func WithFlagSource(fs domain.FlagSource) Option {
	return func(e *Engine) { e.flags = fs }
}

// WithMetrics injects the Prometheus metric set.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the engine clock (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New builds an engine over the graph.
func New(cfg Config, g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		graph:    g,
		bridge:   content.NewBridge(nil),
		detector: sybil.New(),
		analyzer: flagging.NewAnalyzer(g),
		globals:  newGlobalsCache(cfg.CacheTTL),
		results:  newResultCache(cfg.CacheTTL),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	g.OnMutate(func(touched []string) {
		e.results.invalidate(touched)
		if e.metrics != nil {
			e.metrics.GraphNodes.Set(float64(g.NodeCount()))
			e.metrics.GraphEdges.Set(float64(g.EdgeCount()))
		}
	})
	return e
}

// Graph exposes the underlying trust graph.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Analyzer exposes the flagging analyzer bound to the engine's graph.
func (e *Engine) Analyzer() *flagging.Analyzer { return e.analyzer }

// Compute produces the full reputation result for one actor. Unknown actors
// yield the sentinel result, never an error.
func (e *Engine) Compute(ctx context.Context, actor string) domain.ReputationResult {
	start := e.now()
	if actor == "" || !e.graph.Has(actor) {
		if e.metrics != nil {
			e.metrics.ObserveCompute("not_found", e.now().Sub(start))
		}
		return e.sentinel(actor)
	}

	epoch := e.graph.Epoch()
	stake, txDiversity := e.resolveStake(ctx, actor)
	key := resultKey{actor: actor, epoch: epoch, stakeSig: fmt.Sprintf("%.6f:%.6f", stake, txDiversity)}
	if r, ok := e.results.get(key, e.now()); ok {
		if e.metrics != nil {
			e.metrics.CacheHits.Inc()
		}
		return r
	}
	if e.metrics != nil {
		e.metrics.CacheMisses.Inc()
	}

	gl := e.buildGlobals(epoch)
	r := e.score(ctx, gl, actor, stake, txDiversity)
	e.results.put(key, r, e.now())

	if e.metrics != nil {
		e.metrics.ObserveCompute("ok", e.now().Sub(start))
		e.metrics.SybilRisk.Observe(r.Risk.OverallRisk)
	}
	if e.consumer != nil {
		_ = e.consumer.Consume(ctx, r)
	}
	return r
}

func (e *Engine) buildGlobals(epoch int64) *signals.Globals {
	gl, hit := e.globals.get(epoch, e.now(), func(prior map[string]float64) *signals.Globals {
		snap := e.graph.Snapshot()
		mean, std := snap.DegreeStats()
		return &signals.Globals{
			Snapshot:    snap,
			PageRank:    snap.PageRank(e.cfg.PageRank, prior, e.now()),
			Centrality:  snap.ComputeCentrality(),
			Communities: snap.DetectCommunities(e.cfg.CommunitySeed),
			DegreeMean:  mean,
			DegreeStd:   std,
		}
	})
	if !hit && e.metrics != nil {
		e.metrics.GlobalsRebuilds.Inc()
	}
	return gl
}

func (e *Engine) score(ctx context.Context, gl *signals.Globals, actor string, stake, txDiversity float64) domain.ReputationResult {
	ageDays := e.graph.AccountAgeDays(actor)

	scores := domain.ScoreBundle{
		Structural: signals.Structural(gl, actor),
		Behavioral: signals.Behavioral(gl, actor),
		Content:    e.bridge.Score(ctx, e.graph.Fingerprints(actor)),
		Economic:   signals.Economic(gl, actor, stake, txDiversity, ageDays),
		Temporal:   signals.Temporal(gl, actor, ageDays),
	}

	risk := e.detector.Assess(gl, actor, sybil.Evidence{
		StakeAmount:     stake,
		ContentCombined: scores.Content.Combined,
		AccountAgeDays:  ageDays,
	})

	fused := clamp01(
		scores.Structural.Combined*wStructural +
			scores.Behavioral.Combined*wBehavioral +
			scores.Content.Combined*wContent +
			scores.Economic.Combined*wEconomic +
			scores.Temporal.Combined*wTemporal)
	final := clamp01(fused * (1 - risk.OverallRisk*0.5))

	r := domain.ReputationResult{
		Actor:           actor,
		Scores:          scores,
		Risk:            risk,
		FinalReputation: final,
		SybilPenalty:    sybilPenalty(risk.OverallRisk),
		Confidence:      confidence(scores),
		ComputedAt:      e.now(),
		Recommendations: recommendations(final, risk, scores),
	}
	return r
}

// resolveStake prefers the injected provider; without one the graph-node
// stake is used with neutral transaction diversity.
func (e *Engine) resolveStake(ctx context.Context, actor string) (stake, txDiversity float64) {
	if e.stakes != nil {
		if data, ok := e.stakes.Stake(ctx, actor); ok {
			return data.StakeAmount, data.TransactionDiversity
		}
	}
	return e.graph.Stake(actor), 0.5
}

// sentinel is the fixed result for unknown actors: zero scores, maximal
// risk, zero confidence.
func (e *Engine) sentinel(actor string) domain.ReputationResult {
	risk := domain.RiskBundle{
		Graph: 1, Behavioral: 1, Economic: 1, Content: 1, Temporal: 1,
		OverallRisk: 1, Level: domain.RiskCritical,
	}
	return domain.ReputationResult{
		Actor:           actor,
		Risk:            risk,
		SybilPenalty:    sybilPenalty(1),
		ComputedAt:      e.now(),
		Recommendations: []string{"actor not found"},
	}
}

// sybilPenalty is the tiered penalty fraction reported with each result.
func sybilPenalty(overallRisk float64) float64 {
	switch {
	case overallRisk >= 0.8:
		return 0.5
	case overallRisk >= 0.6:
		return 0.3
	case overallRisk >= 0.4:
		return 0.15
	case overallRisk >= 0.2:
		return 0.05
	default:
		return 0
	}
}

// confidence grows with the number of populated dimensions and gets a 20%
// bonus when at least three of the four evidence-backed dimensions are
// strong. Temporal is excluded from the bonus: it is derivable from account
// age alone.
func confidence(s domain.ScoreBundle) float64 {
	populated := 0
	for _, v := range []float64{
		s.Structural.Combined, s.Behavioral.Combined, s.Content.Combined,
		s.Economic.Combined, s.Temporal.Combined,
	} {
		if v > 0 {
			populated++
		}
	}
	c := float64(populated) / 5

	strong := 0
	for _, v := range []float64{
		s.Structural.Combined, s.Behavioral.Combined, s.Content.Combined, s.Economic.Combined,
	} {
		if v > 0.7 {
			strong++
		}
	}
	if strong >= 3 {
		c *= 1.2
	}
	return clamp01(c)
}

func recommendations(final float64, risk domain.RiskBundle, s domain.ScoreBundle) []string {
	var recs []string
	if final < 0.3 {
		recs = append(recs, "low reputation score; increase engagement and build trust")
	}
	if risk.OverallRisk > 0.7 {
		recs = append(recs, "high sybil risk; account may be flagged for review")
	}
	if s.Structural.Embeddedness < 0.3 {
		recs = append(recs, "low community embeddedness; engage with more communities")
	}
	return recs
}

// AdjustedResult is a reputation result with the flagging discount applied.
type AdjustedResult struct {
	Base               domain.ReputationResult `json:"base"`
	FlagAnalysis       flagging.Analysis       `json:"flag_analysis"`
	AdjustedReputation float64                 `json:"adjusted_reputation"`
	FlagPenalty        float64                 `json:"flag_penalty"`
}

// ComputeAdjusted computes reputation and then discounts it by the residual
// credible flag risk. Without a flag source the base result passes through
// unpenalized.
func (e *Engine) ComputeAdjusted(ctx context.Context, actor string) (AdjustedResult, error) {
	base := e.Compute(ctx, actor)
	out := AdjustedResult{Base: base, AdjustedReputation: base.FinalReputation}
	if e.flags == nil {
		return out, nil
	}
	flags, err := e.flags.FlagsFor(ctx, actor)
	if err != nil {
		return out, err
	}
	recent := flagging.Within(flags, e.now().Add(-flagging.DefaultWindow))
	out.FlagAnalysis = e.analyzer.Analyze(actor, recent)
	out.AdjustedReputation, out.FlagPenalty = flagging.ApplyAdjustment(
		base.FinalReputation, out.FlagAnalysis.Risk.OverallRisk)
	return out, nil
}

// ApplyInteractions merges a batch of interactions into the graph. Malformed
// rows abort with the first error; prior rows stay applied (the graph is
// additive, re-sending is safe for valid rows).
func (e *Engine) ApplyInteractions(interactions []domain.Interaction) error {
	for _, it := range interactions {
		if err := e.graph.AddInteraction(it); err != nil {
			return fmt.Errorf("apply %s→%s: %w", it.Source, it.Target, err)
		}
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
