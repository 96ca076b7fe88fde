package graph

import "math"

// eigenvectorNodeCap disables eigenvector centrality on very large graphs;
// above it all eigenvector scores are reported as zero.
const eigenvectorNodeCap = 10000

// Centrality bundles the per-node structural metrics computed in one pass
// over a snapshot. All maps share the same key set (every node).
type Centrality struct {
	Degree      map[string]float64
	Closeness   map[string]float64
	Betweenness map[string]float64
	Eigenvector map[string]float64
	Clustering  map[string]float64
}

// ComputeCentrality computes the structural metric set over the snapshot.
// Directed edges are treated as undirected links for closeness, betweenness,
// eigenvector, and clustering (endorsement in either direction is proximity).
func (s *Snapshot) ComputeCentrality() *Centrality {
	n := len(s.Nodes)
	c := &Centrality{
		Degree:      make(map[string]float64, n),
		Closeness:   make(map[string]float64, n),
		Betweenness: make(map[string]float64, n),
		Eigenvector: make(map[string]float64, n),
		Clustering:  make(map[string]float64, n),
	}
	if n == 0 {
		return c
	}

	ids := make([]string, 0, n)
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	adj := s.undirected()

	// Degree centrality: distinct undirected neighbors over n-1.
	for _, id := range ids {
		if n > 1 {
			c.Degree[id] = float64(len(adj[id])) / float64(n-1)
		}
	}

	s.closeness(ids, adj, c.Closeness)
	s.betweenness(ids, adj, c.Betweenness)
	if n <= eigenvectorNodeCap {
		s.eigenvector(ids, adj, c.Eigenvector)
	} else {
		for _, id := range ids {
			c.Eigenvector[id] = 0
		}
	}
	s.clusteringCoeffs(ids, adj, c.Clustering)
	return c
}

// undirected builds the undirected neighbor sets of the snapshot.
func (s *Snapshot) undirected() map[string]map[string]struct{} {
	adj := make(map[string]map[string]struct{}, len(s.Nodes))
	for id := range s.Nodes {
		adj[id] = make(map[string]struct{})
	}
	for src, targets := range s.Out {
		for dst := range targets {
			adj[src][dst] = struct{}{}
			adj[dst][src] = struct{}{}
		}
	}
	return adj
}

// closeness is the classic BFS formulation restricted to each node's
// reachable component: (reached) / Σ dist, scaled by reached/(n-1) so
// small fragments don't dominate.
func (s *Snapshot) closeness(ids []string, adj map[string]map[string]struct{}, out map[string]float64) {
	n := len(ids)
	for _, src := range ids {
		dist := bfsDistances(src, adj)
		total, reached := 0, 0
		for id, d := range dist {
			if id == src {
				continue
			}
			total += d
			reached++
		}
		if total == 0 || n < 2 {
			out[src] = 0
			continue
		}
		out[src] = float64(reached) / float64(total) * float64(reached) / float64(n-1)
	}
}

func bfsDistances(src string, adj map[string]map[string]struct{}) map[string]int {
	dist := map[string]int{src: 0}
	queue := []string{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for v := range adj[u] {
			if _, seen := dist[v]; !seen {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return dist
}

// betweenness implements Brandes' accumulation over unweighted shortest
// paths, normalized to [0,1] by the pair count.
func (s *Snapshot) betweenness(ids []string, adj map[string]map[string]struct{}, out map[string]float64) {
	n := len(ids)
	for _, id := range ids {
		out[id] = 0
	}
	if n < 3 {
		return
	}

	for _, src := range ids {
		// BFS with predecessor tracking.
		stack := make([]string, 0, n)
		pred := make(map[string][]string, n)
		sigma := map[string]float64{src: 1}
		dist := map[string]int{src: 0}
		queue := []string{src}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			stack = append(stack, u)
			for v := range adj[u] {
				dv, seen := dist[v]
				if !seen {
					dist[v] = dist[u] + 1
					dv = dist[v]
					queue = append(queue, v)
				}
				if dv == dist[u]+1 {
					sigma[v] += sigma[u]
					pred[v] = append(pred[v], u)
				}
			}
		}
		// Back-propagate dependencies.
		delta := make(map[string]float64, len(stack))
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, u := range pred[w] {
				delta[u] += sigma[u] / sigma[w] * (1 + delta[w])
			}
			if w != src {
				out[w] += delta[w]
			}
		}
	}

	// Undirected normalization: each pair counted twice.
	norm := float64((n - 1) * (n - 2))
	for id := range out {
		out[id] /= norm
	}
}

// eigenvector runs power iteration on the undirected adjacency with L2
// normalization, then rescales the result by the max component.
func (s *Snapshot) eigenvector(ids []string, adj map[string]map[string]struct{}, out map[string]float64) {
	n := len(ids)
	x := make(map[string]float64, n)
	for _, id := range ids {
		x[id] = 1.0 / float64(n)
	}
	next := make(map[string]float64, n)
	for iter := 0; iter < 100; iter++ {
		norm := 0.0
		for _, id := range ids {
			sum := 0.0
			for nb := range adj[id] {
				sum += x[nb]
			}
			next[id] = sum
			norm += sum * sum
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			break
		}
		delta := 0.0
		for _, id := range ids {
			v := next[id] / norm
			delta += math.Abs(v - x[id])
			x[id] = v
		}
		if delta < 1e-6 {
			break
		}
	}
	max := 0.0
	for _, v := range x {
		if v > max {
			max = v
		}
	}
	for _, id := range ids {
		if max > 0 {
			out[id] = x[id] / max
		} else {
			out[id] = 0
		}
	}
}

// clusteringCoeffs computes the local clustering coefficient: the fraction of
// a node's neighbor pairs that are themselves linked.
func (s *Snapshot) clusteringCoeffs(ids []string, adj map[string]map[string]struct{}, out map[string]float64) {
	for _, id := range ids {
		nbs := adj[id]
		k := len(nbs)
		if k < 2 {
			out[id] = 0
			continue
		}
		links := 0
		list := make([]string, 0, k)
		for nb := range nbs {
			list = append(list, nb)
		}
		for i := 0; i < len(list); i++ {
			for j := i + 1; j < len(list); j++ {
				if _, ok := adj[list[i]][list[j]]; ok {
					links++
				}
			}
		}
		out[id] = 2 * float64(links) / float64(k*(k-1))
	}
}

// DegreeStats reports mean and standard deviation of total degree, used by
// the risk detector for degree-anomaly z-scores.
func (s *Snapshot) DegreeStats() (mean, std float64) {
	n := len(s.Nodes)
	if n == 0 {
		return 0, 0
	}
	degs := make([]float64, 0, n)
	sum := 0.0
	for id := range s.Nodes {
		d := float64(len(s.Out[id]) + len(s.In[id]))
		degs = append(degs, d)
		sum += d
	}
	mean = sum / float64(n)
	varSum := 0.0
	for _, d := range degs {
		varSum += (d - mean) * (d - mean)
	}
	std = math.Sqrt(varSum / float64(n))
	return mean, std
}
