package dsa

import (
	"fmt"
	"testing"
)

func TestTopKKeepsBest(t *testing.T) {
	tk := NewTopK(3)
	for i := 0; i < 10; i++ {
		tk.Offer(ScoredItem{Key: fmt.Sprintf("n%02d", i), Score: float64(i)})
	}

	items := tk.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	want := []string{"n09", "n08", "n07"}
	for i, w := range want {
		if items[i].Key != w {
			t.Errorf("items[%d] = %q (score %v), want %q", i, items[i].Key, items[i].Score, w)
		}
	}
}

func TestTopKUnboundedKeepsAll(t *testing.T) {
	tk := NewTopK(0)
	for i := 0; i < 5; i++ {
		tk.Offer(ScoredItem{Key: fmt.Sprintf("n%d", i), Score: float64(5 - i)})
	}
	if tk.Len() != 5 {
		t.Fatalf("len = %d, want 5", tk.Len())
	}
	items := tk.Items()
	for i := 1; i < len(items); i++ {
		if items[i].Score > items[i-1].Score {
			t.Errorf("items out of order at %d: %v after %v", i, items[i].Score, items[i-1].Score)
		}
	}
}

func TestTopKTieBreaksOnKey(t *testing.T) {
	tk := NewTopK(2)
	tk.Offer(ScoredItem{Key: "charlie", Score: 1})
	tk.Offer(ScoredItem{Key: "alpha", Score: 1})
	tk.Offer(ScoredItem{Key: "bravo", Score: 1})

	items := tk.Items()
	if items[0].Key != "alpha" || items[1].Key != "bravo" {
		t.Errorf("tie-break order = %q, %q; want alpha, bravo", items[0].Key, items[1].Key)
	}
}

func TestTopKWeakOfferIgnored(t *testing.T) {
	tk := NewTopK(2)
	tk.Offer(ScoredItem{Key: "a", Score: 10})
	tk.Offer(ScoredItem{Key: "b", Score: 9})
	tk.Offer(ScoredItem{Key: "c", Score: 1})

	for _, it := range tk.Items() {
		if it.Key == "c" {
			t.Error("weak offer should not displace stronger items")
		}
	}
}
