// Package graph implements the in-memory trust graph: a directed,
// weighted, timestamped interaction graph with per-node economic metadata.
//
// The graph is the single shared snapshot read by every score primitive.
// Reads take an RLock and never mutate state; mutations (AddInteraction,
// SetStake, Load) take the write lock, bump a mutation epoch, and fire the
// registered invalidation hooks so caches built over the graph are dropped
// before the next computation is trusted.
package graph

import (
	"sync"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// Edge is one aggregated interaction between an ordered pair of actors.
// Repeated interactions merge into the same Edge by summing Weight; the
// newest timestamp wins.
type Edge struct {
	Weight    float64
	Timestamp time.Time
	Payment   float64
	Verified  bool
}

type node struct {
	stake        float64
	ageDays      int
	fingerprints []string
	attrs        map[string]string
}

// Graph is the mutable trust graph. Thread-safe via RWMutex.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*node
	out   map[string]map[string]*Edge // source → target → edge
	in    map[string]map[string]*Edge // target → source → edge
	edges int

	epoch int64 // bumped on every structural mutation

	hooks []func(touched []string)
}

// New creates an empty trust graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
		out:   make(map[string]map[string]*Edge),
		in:    make(map[string]map[string]*Edge),
	}
}

// OnMutate registers a hook fired (outside the graph lock) after every
// structural mutation with the actor ids touched by it. The engine uses this
// to invalidate its global-metrics and per-actor caches.
func (g *Graph) OnMutate(fn func(touched []string)) {
	g.mu.Lock()
	g.hooks = append(g.hooks, fn)
	g.mu.Unlock()
}

func (g *Graph) fireHooks(touched []string) {
	for _, fn := range g.hooks {
		fn(touched)
	}
}

// Epoch returns the current mutation epoch. Two equal epochs guarantee the
// structure has not changed between observations.
func (g *Graph) Epoch() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.epoch
}

// ─── Mutation ───────────────────────────────────────────────────────────────

// AddActor registers an actor with metadata. Existing metadata is replaced;
// edges are untouched. Actors are also created implicitly by AddInteraction.
func (g *Graph) AddActor(a domain.Actor) error {
	if a.ID == "" {
		return domain.ErrEmptyActorID
	}
	g.mu.Lock()
	n := g.ensureNode(a.ID)
	n.stake = a.Stake
	n.ageDays = a.AccountAgeDays
	n.fingerprints = append([]string(nil), a.Fingerprints...)
	if len(a.Attrs) > 0 {
		n.attrs = make(map[string]string, len(a.Attrs))
		for k, v := range a.Attrs {
			n.attrs[k] = v
		}
	}
	g.epoch++
	hooks := g.hooks
	g.mu.Unlock()

	for _, fn := range hooks {
		fn([]string{a.ID})
	}
	return nil
}

// AddInteraction merges an interaction into the graph. At most one aggregated
// edge exists per ordered pair: a repeated interaction accumulates weight by
// summation. Self-edges are rejected; weight must be positive.
func (g *Graph) AddInteraction(it domain.Interaction) error {
	if it.Source == "" || it.Target == "" {
		return domain.ErrEmptyActorID
	}
	if it.Source == it.Target {
		return domain.ErrSelfEndorse
	}
	if it.Weight <= 0 {
		return domain.ErrInvalidWeight
	}

	g.mu.Lock()
	g.ensureNode(it.Source)
	g.ensureNode(it.Target)

	e := g.out[it.Source][it.Target]
	if e == nil {
		e = &Edge{}
		g.out[it.Source][it.Target] = e
		g.in[it.Target][it.Source] = e
		g.edges++
	}
	e.Weight += it.Weight
	if it.Timestamp.After(e.Timestamp) {
		e.Timestamp = it.Timestamp
	}
	if it.Meta != nil {
		e.Payment += it.Meta.Payment
		e.Verified = e.Verified || it.Meta.Verified
	}
	g.epoch++
	hooks := g.hooks
	g.mu.Unlock()

	for _, fn := range hooks {
		fn([]string{it.Source, it.Target})
	}
	return nil
}

// Load ingests a full GraphData snapshot (nodes first, then edges).
// Hooks fire once with every touched actor.
func (g *Graph) Load(data domain.GraphData) error {
	touched := make([]string, 0, len(data.Nodes)+2*len(data.Edges))

	g.mu.Lock()
	for _, a := range data.Nodes {
		if a.ID == "" {
			g.mu.Unlock()
			return domain.ErrEmptyActorID
		}
		n := g.ensureNode(a.ID)
		n.stake = a.Stake
		n.ageDays = a.AccountAgeDays
		n.fingerprints = append([]string(nil), a.Fingerprints...)
		touched = append(touched, a.ID)
	}
	for _, it := range data.Edges {
		if it.Source == "" || it.Target == "" || it.Source == it.Target || it.Weight <= 0 {
			continue // skip malformed rows, load the rest
		}
		g.ensureNode(it.Source)
		g.ensureNode(it.Target)
		e := g.out[it.Source][it.Target]
		if e == nil {
			e = &Edge{}
			g.out[it.Source][it.Target] = e
			g.in[it.Target][it.Source] = e
			g.edges++
		}
		e.Weight += it.Weight
		if it.Timestamp.After(e.Timestamp) {
			e.Timestamp = it.Timestamp
		}
		if it.Meta != nil {
			e.Payment += it.Meta.Payment
			e.Verified = e.Verified || it.Meta.Verified
		}
		touched = append(touched, it.Source, it.Target)
	}
	g.epoch++
	hooks := g.hooks
	g.mu.Unlock()

	for _, fn := range hooks {
		fn(touched)
	}
	return nil
}

// SetStake updates an actor's stake without touching edges.
func (g *Graph) SetStake(actor string, stake float64) {
	g.mu.Lock()
	g.ensureNode(actor).stake = stake
	g.epoch++
	hooks := g.hooks
	g.mu.Unlock()

	for _, fn := range hooks {
		fn([]string{actor})
	}
}

// ensureNode must be called with the write lock held.
func (g *Graph) ensureNode(id string) *node {
	n, ok := g.nodes[id]
	if !ok {
		n = &node{}
		g.nodes[id] = n
		g.out[id] = make(map[string]*Edge)
		g.in[id] = make(map[string]*Edge)
	}
	return n
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Has reports whether the actor exists in the graph.
func (g *Graph) Has(actor string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[actor]
	return ok
}

// NodeCount returns the number of actors.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of aggregated directed edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges
}

// Nodes returns all actor ids (unordered).
func (g *Graph) Nodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Stake returns an actor's stake (0 for unknown actors).
func (g *Graph) Stake(actor string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[actor]; ok {
		return n.stake
	}
	return 0
}

// AccountAgeDays returns an actor's account age in days (0 for unknown).
func (g *Graph) AccountAgeDays(actor string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[actor]; ok {
		return n.ageDays
	}
	return 0
}

// Fingerprints returns the actor's sampled content fingerprints.
func (g *Graph) Fingerprints(actor string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if n, ok := g.nodes[actor]; ok {
		return append([]string(nil), n.fingerprints...)
	}
	return nil
}

// OutDegree returns the number of distinct targets an actor endorses.
func (g *Graph) OutDegree(actor string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.out[actor])
}

// InDegree returns the number of distinct endorsers of an actor.
func (g *Graph) InDegree(actor string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.in[actor])
}

// Degree returns in-degree + out-degree.
func (g *Graph) Degree(actor string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.out[actor]) + len(g.in[actor])
}

// Successors returns the targets of an actor's outgoing edges.
func (g *Graph) Successors(actor string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	succ := make([]string, 0, len(g.out[actor]))
	for t := range g.out[actor] {
		succ = append(succ, t)
	}
	return succ
}

// Predecessors returns the sources of an actor's incoming edges.
func (g *Graph) Predecessors(actor string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	pred := make([]string, 0, len(g.in[actor]))
	for s := range g.in[actor] {
		pred = append(pred, s)
	}
	return pred
}

// Neighbors returns the union of successors and predecessors.
func (g *Graph) Neighbors(actor string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := make(map[string]struct{}, len(g.out[actor])+len(g.in[actor]))
	for t := range g.out[actor] {
		seen[t] = struct{}{}
	}
	for s := range g.in[actor] {
		seen[s] = struct{}{}
	}
	ns := make([]string, 0, len(seen))
	for n := range seen {
		ns = append(ns, n)
	}
	return ns
}

// MutualCount returns |successors ∩ predecessors| and |successors ∪ predecessors|.
func (g *Graph) MutualCount(actor string) (mutual, total int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := make(map[string]struct{}, len(g.out[actor])+len(g.in[actor]))
	for t := range g.out[actor] {
		seen[t] = struct{}{}
		if _, ok := g.in[actor][t]; ok {
			mutual++
		}
	}
	for s := range g.in[actor] {
		seen[s] = struct{}{}
	}
	return mutual, len(seen)
}

// HasEdge reports whether a directed edge source→target exists.
func (g *Graph) HasEdge(source, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.out[source][target]
	return ok
}

// EdgeWeight returns the aggregated weight of source→target (0 if absent).
func (g *Graph) EdgeWeight(source, target string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if e, ok := g.out[source][target]; ok {
		return e.Weight
	}
	return 0
}

// NeighborDegrees returns the total degree of every neighbor of the actor.
func (g *Graph) NeighborDegrees(actor string) []int {
	neighbors := g.Neighbors(actor)
	g.mu.RLock()
	defer g.mu.RUnlock()
	degs := make([]int, 0, len(neighbors))
	for _, n := range neighbors {
		degs = append(degs, len(g.out[n])+len(g.in[n]))
	}
	return degs
}

// Density returns the directed graph density |E| / (|V|·(|V|-1)).
func (g *Graph) Density() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	return float64(g.edges) / float64(n*(n-1))
}

// ─── Snapshot view ──────────────────────────────────────────────────────────

// Snapshot is an immutable adjacency copy used by the iterative algorithms so
// a whole PageRank run observes one consistent graph without holding the lock.
type Snapshot struct {
	Nodes map[string]NodeInfo
	Out   map[string]map[string]Edge
	In    map[string]map[string]Edge
}

// NodeInfo is the per-node metadata carried by a Snapshot.
type NodeInfo struct {
	Stake   float64
	AgeDays int
}

// Snapshot copies the adjacency under a read lock.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &Snapshot{
		Nodes: make(map[string]NodeInfo, len(g.nodes)),
		Out:   make(map[string]map[string]Edge, len(g.out)),
		In:    make(map[string]map[string]Edge, len(g.in)),
	}
	for id, n := range g.nodes {
		s.Nodes[id] = NodeInfo{Stake: n.stake, AgeDays: n.ageDays}
	}
	for src, targets := range g.out {
		m := make(map[string]Edge, len(targets))
		for t, e := range targets {
			m[t] = *e
		}
		s.Out[src] = m
	}
	for dst, sources := range g.in {
		m := make(map[string]Edge, len(sources))
		for sID, e := range sources {
			m[sID] = *e
		}
		s.In[dst] = m
	}
	return s
}
