package graph

import (
	"math"
	"time"
)

// PageRankConfig tunes the trust-weighted temporal PageRank.
type PageRankConfig struct {
	Damping       float64 // teleport complement, default 0.85
	MaxIterations int     // hard cap, default 100
	Tolerance     float64 // L1 convergence threshold, default 1e-6
	DecayBase     float64 // per-day recency decay, default 0.95; 1.0 disables
	MaxTrust      float64 // ceiling on per-edge trust multiplier, default 2.0
}

// DefaultPageRankConfig returns production defaults.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Damping:       0.85,
		MaxIterations: 100,
		Tolerance:     1e-6,
		DecayBase:     0.95,
		MaxTrust:      2.0,
	}
}

// PageRank runs trust-weighted temporal PageRank over the snapshot and
// returns min-max normalized scores in [0,1]. prior carries reputation
// scores from an earlier round (may be nil); they feed the trust
// multiplier, not the starting vector. now anchors the recency decay.
//
// Per-edge trust combines three factors, capped at MaxTrust:
//
//	stakeFactor = 1 + 0.5·min(1, stake(u)/10000)
//	repFactor   = 1 + 0.3·prior(u)          (1.0 when no prior)
//	connStrength= 1.5 if reciprocal, else min(1, weight)
//
// Edge weights are premultiplied by DecayBase^ageDays so stale endorsements
// fade without edge deletion. Dangling mass is redistributed uniformly.
func (g *Graph) PageRank(cfg PageRankConfig, prior map[string]float64, now time.Time) map[string]float64 {
	return g.Snapshot().PageRank(cfg, prior, now)
}

// PageRank is the snapshot form; see Graph.PageRank.
func (s *Snapshot) PageRank(cfg PageRankConfig, prior map[string]float64, now time.Time) map[string]float64 {
	n := len(s.Nodes)
	if n == 0 {
		return map[string]float64{}
	}

	ids := make([]string, 0, n)
	for id := range s.Nodes {
		ids = append(ids, id)
	}

	// Precompute decayed trust-weighted edges and per-source totals.
	type wedge struct {
		src string
		w   float64
	}
	incoming := make(map[string][]wedge, n)
	outTotal := make(map[string]float64, n)
	for src, targets := range s.Out {
		for dst, e := range targets {
			w := e.Weight * decay(cfg.DecayBase, e.Timestamp, now)
			if w <= 0 {
				continue
			}
			w *= s.trust(cfg, prior, src, dst, e.Weight)
			outTotal[src] += w
			incoming[dst] = append(incoming[dst], wedge{src: src, w: w})
		}
	}

	score := make(map[string]float64, n)
	uniform := 1.0 / float64(n)
	for _, id := range ids {
		score[id] = uniform
	}

	base := (1 - cfg.Damping) / float64(n)
	next := make(map[string]float64, n)
	for i := 0; i < cfg.MaxIterations; i++ {
		// Mass of nodes with no usable out-edges teleports uniformly.
		dangling := 0.0
		for _, id := range ids {
			if outTotal[id] == 0 {
				dangling += score[id]
			}
		}
		danglingShare := cfg.Damping * dangling / float64(n)

		delta := 0.0
		for _, id := range ids {
			sum := 0.0
			for _, in := range incoming[id] {
				sum += score[in.src] * in.w / outTotal[in.src]
			}
			v := base + danglingShare + cfg.Damping*sum
			next[id] = v
			delta += math.Abs(v - score[id])
		}
		score, next = next, score
		if delta < cfg.Tolerance {
			break
		}
	}

	return normalizeMinMax(score)
}

// trust returns the per-edge trust multiplier for src→dst, capped at MaxTrust.
// rawWeight is the undecayed edge weight (connection strength uses it).
func (s *Snapshot) trust(cfg PageRankConfig, prior map[string]float64, src, dst string, rawWeight float64) float64 {
	stakeFactor := 1 + 0.5*math.Min(1, s.Nodes[src].Stake/10000)

	repFactor := 1.0
	if r, ok := prior[src]; ok {
		repFactor = 1 + 0.3*r
	}

	connStrength := math.Min(1, rawWeight)
	if _, ok := s.Out[dst][src]; ok { // reciprocal edge
		connStrength = 1.5
	}

	t := stakeFactor * repFactor * connStrength
	if t > cfg.MaxTrust {
		t = cfg.MaxTrust
	}
	return t
}

func decay(base float64, ts, now time.Time) float64 {
	if base >= 1 || base <= 0 || ts.IsZero() {
		return 1
	}
	days := now.Sub(ts).Hours() / 24
	if days <= 0 {
		return 1
	}
	return math.Pow(base, days)
}

// normalizeMinMax rescales scores to [0,1]. A flat vector (all scores equal,
// including the single-node case) maps every entry to 1.0.
func normalizeMinMax(score map[string]float64) map[string]float64 {
	if len(score) == 0 {
		return score
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range score {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make(map[string]float64, len(score))
	if hi-lo < 1e-15 {
		for id := range score {
			out[id] = 1.0
		}
		return out
	}
	span := hi - lo
	for id, v := range score {
		out[id] = (v - lo) / span
	}
	return out
}
