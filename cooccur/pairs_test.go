package cooccur

import (
	"testing"

	"github.com/rushteam/cooccur/core"
)

func TestExtractPairs_Count(t *testing.T) {
	tests := []struct {
		name   string
		items  []string
		policy SelfPairPolicy
		want   int
	}{
		{name: "empty order", items: nil, want: 0},
		{name: "single item", items: []string{"A"}, want: 0},
		{name: "two distinct", items: []string{"A", "B"}, want: 2},
		{name: "five distinct", items: []string{"A", "B", "C", "D", "E"}, want: 20},
		{name: "duplicates dropped", items: []string{"X", "X"}, policy: SelfPairsDrop, want: 0},
		{name: "duplicates kept by position", items: []string{"X", "X"}, policy: SelfPairsKeep, want: 2},
		{name: "mixed kept is k(k-1)", items: []string{"A", "A", "B"}, policy: SelfPairsKeep, want: 6},
		{name: "mixed dropped", items: []string{"A", "A", "B"}, policy: SelfPairsDrop, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractPairs(tt.items, tt.policy)
			if len(got) != tt.want {
				t.Fatalf("len(ExtractPairs(%v)) = %d, want %d", tt.items, len(got), tt.want)
			}
			for _, o := range got {
				if o.Count != 1 {
					t.Errorf("observation %v count = %d, want 1", o.Key, o.Count)
				}
				if tt.policy != SelfPairsKeep && o.Key.IsSelf() {
					t.Errorf("unexpected self pair %v", o.Key)
				}
			}
		})
	}
}

func TestExtractPairs_BothOrientations(t *testing.T) {
	got := ExtractPairs([]string{"A", "B", "C"}, SelfPairsDrop)
	want := []core.PairKey{
		{A: "A", B: "B"}, {A: "B", B: "A"},
		{A: "A", B: "C"}, {A: "C", B: "A"},
		{A: "B", B: "C"}, {A: "C", B: "B"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d observations, want %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Key != k {
			t.Errorf("observation[%d] = %v, want %v", i, got[i].Key, k)
		}
	}
}

func TestExtractPairs_SelfPairKept(t *testing.T) {
	got := ExtractPairs([]string{"X", "X"}, SelfPairsKeep)
	m := ReducePairs(got)
	if c := m.Count(core.PairKey{A: "X", B: "X"}); c != 2 {
		t.Errorf("count(X,X) = %d, want 2", c)
	}
}

func TestMapPairs_DropsSelfPairs(t *testing.T) {
	m := ReducePairs(MapPairs(core.Order{ID: "o1", Items: []string{"X", "X", "Y"}}))
	if m.Has(core.PairKey{A: "X", B: "X"}) {
		t.Error("self pair (X,X) must not be stored")
	}
	if c := m.Count(core.PairKey{A: "X", B: "Y"}); c != 2 {
		t.Errorf("count(X,Y) = %d, want 2", c)
	}
	if c := m.Count(core.PairKey{A: "Y", B: "X"}); c != 2 {
		t.Errorf("count(Y,X) = %d, want 2", c)
	}
}
