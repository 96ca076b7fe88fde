// Package dsa holds the small data structures shared by the ranking code.
package dsa

import "sort"

// ScoredItem is one candidate in a top-K selection.
type ScoredItem struct {
	Key   string  // unique identifier, also the deterministic tie-break
	Score float64 // higher = better
	Value any     // payload (caller stores whatever they need)
}

// TopK keeps the K highest-scoring items seen so far in a bounded min-heap.
//
// Operations:
//
//	Offer: O(log k)
//	Items: O(k log k)
//
// Ties resolve toward the lexicographically smaller key, so repeated runs
// over the same input select the same set.
type TopK struct {
	k    int
	heap []ScoredItem // min-heap, root = weakest kept item
}

// NewTopK creates a selector for the k best items. k <= 0 keeps everything.
func NewTopK(k int) *TopK {
	return &TopK{k: k}
}

// Offer considers one item. Once k items are held, an offer only lands by
// beating the weakest kept item.
func (t *TopK) Offer(item ScoredItem) {
	if t.k > 0 && len(t.heap) >= t.k {
		if !t.beats(item, t.heap[0]) {
			return
		}
		t.heap[0] = item
		t.siftDown(0)
		return
	}
	t.heap = append(t.heap, item)
	t.siftUp(len(t.heap) - 1)
}

// Len returns the number of items currently held.
func (t *TopK) Len() int { return len(t.heap) }

// Items returns the kept items, best first.
func (t *TopK) Items() []ScoredItem {
	out := make([]ScoredItem, len(t.heap))
	copy(out, t.heap)
	sort.Slice(out, func(i, j int) bool { return t.beats(out[i], out[j]) })
	return out
}

// beats reports whether a outranks b.
func (t *TopK) beats(a, b ScoredItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Key < b.Key
}

// less orders the heap: weaker items toward the root.
func (t *TopK) less(i, j int) bool {
	return t.beats(t.heap[j], t.heap[i])
}

func (t *TopK) siftUp(idx int) {
	for idx > 0 {
		parent := (idx - 1) / 2
		if t.less(idx, parent) {
			t.heap[idx], t.heap[parent] = t.heap[parent], t.heap[idx]
			idx = parent
		} else {
			break
		}
	}
}

func (t *TopK) siftDown(idx int) {
	n := len(t.heap)
	for {
		smallest := idx
		left := 2*idx + 1
		right := 2*idx + 2

		if left < n && t.less(left, smallest) {
			smallest = left
		}
		if right < n && t.less(right, smallest) {
			smallest = right
		}
		if smallest == idx {
			break
		}
		t.heap[idx], t.heap[smallest] = t.heap[smallest], t.heap[idx]
		idx = smallest
	}
}
