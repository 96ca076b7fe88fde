// Package audit provides ranking explainability and fairness tooling: which
// edges move an actor's score, which actors sit on fragile rankings, and a
// post-hoc fairness pass that tempers rich-get-richer dynamics.
package audit

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/dotrep-network/dotrep/internal/infra/dsa"
	"github.com/dotrep-network/dotrep/internal/infra/graph"
)

// EdgeInfluence is the ranking impact of removing one edge.
type EdgeInfluence struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Influence float64 `json:"influence"` // |Δ target PageRank| on removal
}

// Explanation reports why an actor ranks where it does.
type Explanation struct {
	Actor             string          `json:"actor"`
	Score             float64         `json:"score"`
	TopEdges          []EdgeInfluence `json:"top_influencing_edges"`
	IncomingInfluence float64         `json:"incoming_influence"`
	OutgoingInfluence float64         `json:"outgoing_influence"`
	Sensitivity       float64         `json:"sensitivity_score"`
}

// Config tunes the auditor's sampling.
type Config struct {
	SampleSize int     // edges to perturb, 0 = all
	TopK       int     // influences kept
	Threshold  float64 // minimum influence counted toward node sensitivity
	Seed       int64
	PageRank   graph.PageRankConfig
}

// DefaultConfig keeps audits bounded on large graphs.
func DefaultConfig() Config {
	pr := graph.DefaultPageRankConfig()
	pr.MaxIterations = 50
	return Config{
		SampleSize: 200,
		TopK:       50,
		Threshold:  0.01,
		Seed:       time.Now().UnixNano(),
		PageRank:   pr,
	}
}

// Auditor measures edge influence by leave-one-out PageRank recomputation
// over a fixed snapshot.
type Auditor struct {
	cfg      Config
	snap     *graph.Snapshot
	baseline map[string]float64

	influences []EdgeInfluence // sorted descending, computed lazily
}

// New builds an auditor over the snapshot with the given baseline scores.
// Passing the engine's current PageRank as baseline keeps the audit
// consistent with served results.
func New(cfg Config, snap *graph.Snapshot, baseline map[string]float64) *Auditor {
	if baseline == nil {
		baseline = snap.PageRank(cfg.PageRank, nil, time.Now())
	}
	return &Auditor{cfg: cfg, snap: snap, baseline: baseline}
}

// Influences returns the top-K most influential edges, most influential
// first. The first call does the leave-one-out sweep; later calls reuse it.
func (a *Auditor) Influences(now time.Time) []EdgeInfluence {
	if a.influences != nil {
		return a.influences
	}

	type edgeKey struct{ src, dst string }
	edges := make([]edgeKey, 0)
	for src, targets := range a.snap.Out {
		for dst := range targets {
			edges = append(edges, edgeKey{src, dst})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].src != edges[j].src {
			return edges[i].src < edges[j].src
		}
		return edges[i].dst < edges[j].dst
	})

	if a.cfg.SampleSize > 0 && len(edges) > a.cfg.SampleSize {
		rng := rand.New(rand.NewSource(a.cfg.Seed))
		rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
		edges = edges[:a.cfg.SampleSize]
	}

	top := dsa.NewTopK(a.cfg.TopK)
	for _, e := range edges {
		perturbed := a.without(e.src, e.dst)
		scores := perturbed.PageRank(a.cfg.PageRank, nil, now)
		inf := EdgeInfluence{
			Source:    e.src,
			Target:    e.dst,
			Influence: math.Abs(a.baseline[e.dst] - scores[e.dst]),
		}
		top.Offer(dsa.ScoredItem{Key: e.src + "\x00" + e.dst, Score: inf.Influence, Value: inf})
	}
	influences := make([]EdgeInfluence, 0, top.Len())
	for _, it := range top.Items() {
		influences = append(influences, it.Value.(EdgeInfluence))
	}
	a.influences = influences
	return influences
}

// without copies the snapshot minus one directed edge.
func (a *Auditor) without(src, dst string) *graph.Snapshot {
	s := &graph.Snapshot{
		Nodes: a.snap.Nodes,
		Out:   make(map[string]map[string]graph.Edge, len(a.snap.Out)),
		In:    make(map[string]map[string]graph.Edge, len(a.snap.In)),
	}
	for u, targets := range a.snap.Out {
		if u != src {
			s.Out[u] = targets
			continue
		}
		m := make(map[string]graph.Edge, len(targets))
		for v, e := range targets {
			if v != dst {
				m[v] = e
			}
		}
		s.Out[u] = m
	}
	for v, sources := range a.snap.In {
		if v != dst {
			s.In[v] = sources
			continue
		}
		m := make(map[string]graph.Edge, len(sources))
		for u, e := range sources {
			if u != src {
				m[u] = e
			}
		}
		s.In[v] = m
	}
	return s
}

// NodeSensitivity is one row of the sensitivity ranking.
type NodeSensitivity struct {
	Actor       string  `json:"actor"`
	Sensitivity float64 `json:"sensitivity"`
}

// SensitiveNodes ranks actors by how much sampled edge removals move them:
// incoming influence counts fully, outgoing at half weight.
func (a *Auditor) SensitiveNodes(now time.Time) []NodeSensitivity {
	sens := make(map[string]float64)
	for _, inf := range a.Influences(now) {
		if inf.Influence < a.cfg.Threshold {
			continue
		}
		sens[inf.Target] += inf.Influence
		sens[inf.Source] += inf.Influence * 0.5
	}
	out := make([]NodeSensitivity, 0, len(sens))
	for actor, s := range sens {
		out = append(out, NodeSensitivity{Actor: actor, Sensitivity: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sensitivity != out[j].Sensitivity {
			return out[i].Sensitivity > out[j].Sensitivity
		}
		return out[i].Actor < out[j].Actor
	})
	return out
}

// Explain builds the per-actor explainability report from the influence
// sweep: the top edges touching the actor and their summed directional
// influence.
func (a *Auditor) Explain(actor string, topK int, now time.Time) Explanation {
	ex := Explanation{Actor: actor, Score: a.baseline[actor]}
	for _, inf := range a.Influences(now) {
		if inf.Source != actor && inf.Target != actor {
			continue
		}
		if topK > 0 && len(ex.TopEdges) >= topK {
			continue
		}
		ex.TopEdges = append(ex.TopEdges, inf)
		if inf.Target == actor {
			ex.IncomingInfluence += inf.Influence
		} else {
			ex.OutgoingInfluence += inf.Influence
		}
	}
	ex.Sensitivity = ex.IncomingInfluence + ex.OutgoingInfluence
	return ex
}
