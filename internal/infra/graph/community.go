package graph

import (
	"math/rand"
	"sort"
)

// CommunityInfo summarizes one detected community for risk analysis.
type CommunityInfo struct {
	Members   []string
	Size      int
	Density   float64 // internal directed density
	Isolation float64 // fraction of member edge endpoints staying inside
	Diversity float64 // distinct external communities reached / (k-1)
}

// Communities is a full community decomposition of a snapshot.
type Communities struct {
	Label map[string]int // node → community id
	Info  map[int]*CommunityInfo
}

// DetectCommunities runs synchronous label propagation over the undirected
// view until labels stabilize (bounded at 50 sweeps). Ties break toward the
// smallest label so runs are deterministic given the same seed ordering.
func (s *Snapshot) DetectCommunities(seed int64) *Communities {
	adj := s.undirected()
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	label := make(map[string]int, len(ids))
	for i, id := range ids {
		label[id] = i
	}

	rng := rand.New(rand.NewSource(seed))
	order := make([]string, len(ids))
	copy(order, ids)

	for sweep := 0; sweep < 50; sweep++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		changed := 0
		for _, id := range order {
			if len(adj[id]) == 0 {
				continue
			}
			counts := make(map[int]int)
			for nb := range adj[id] {
				counts[label[nb]]++
			}
			best, bestCount := label[id], 0
			for l, c := range counts {
				if c > bestCount || (c == bestCount && l < best) {
					best, bestCount = l, c
				}
			}
			if best != label[id] {
				label[id] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	return s.summarize(label)
}

func (s *Snapshot) summarize(label map[string]int) *Communities {
	c := &Communities{Label: label, Info: make(map[int]*CommunityInfo)}
	for id, l := range label {
		info := c.Info[l]
		if info == nil {
			info = &CommunityInfo{}
			c.Info[l] = info
		}
		info.Members = append(info.Members, id)
	}
	totalCommunities := len(c.Info)

	for _, info := range c.Info {
		sort.Strings(info.Members)
		info.Size = len(info.Members)
		member := make(map[string]struct{}, info.Size)
		for _, m := range info.Members {
			member[m] = struct{}{}
		}

		internal, external := 0, 0
		externalComms := make(map[int]struct{})
		for _, m := range info.Members {
			for dst := range s.Out[m] {
				if _, in := member[dst]; in {
					internal++
				} else {
					external++
					externalComms[label[dst]] = struct{}{}
				}
			}
			for src := range s.In[m] {
				if _, in := member[src]; !in {
					external++
					externalComms[label[src]] = struct{}{}
				}
			}
		}

		if info.Size > 1 {
			info.Density = float64(internal) / float64(info.Size*(info.Size-1))
		}
		if internal+external > 0 {
			// internal directed edges have both endpoints inside; weigh them twice
			// so a closed clique scores isolation 1.0.
			info.Isolation = float64(2*internal) / float64(2*internal+external)
		}
		if totalCommunities > 1 {
			info.Diversity = float64(len(externalComms)) / float64(totalCommunities-1)
		}
	}
	return c
}

// Embeddedness returns the fraction of an actor's neighbors sharing its
// community. When detection degenerates to one community per node (no links)
// or one global community, it falls back to the triadic closure rate: the
// fraction of the actor's neighbor pairs that are themselves linked.
func (s *Snapshot) Embeddedness(actor string, comms *Communities) float64 {
	adj := s.undirected()
	nbs := adj[actor]
	if len(nbs) == 0 {
		return 0
	}

	degenerate := len(comms.Info) == len(comms.Label) || len(comms.Info) == 1
	if !degenerate {
		same := 0
		for nb := range nbs {
			if comms.Label[nb] == comms.Label[actor] {
				same++
			}
		}
		return float64(same) / float64(len(nbs))
	}

	if len(nbs) < 2 {
		return 0
	}
	list := make([]string, 0, len(nbs))
	for nb := range nbs {
		list = append(list, nb)
	}
	linked := 0
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if _, ok := adj[list[i]][list[j]]; ok {
				linked++
			}
		}
	}
	return 2 * float64(linked) / float64(len(list)*(len(list)-1))
}
