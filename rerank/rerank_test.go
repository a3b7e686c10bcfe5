package rerank

import (
	"context"
	"reflect"
	"testing"

	"github.com/rushteam/cooccur/core"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for i, id := range ids {
		it := core.NewItem(id)
		it.Score = float64(len(ids) - i)
		out = append(out, it)
	}
	return out
}

func TestTopNNode(t *testing.T) {
	many := make([]string, 12)
	for i := range many {
		many[i] = string(rune('a' + i))
	}

	tests := []struct {
		name string
		n    int
		rctx *core.RecommendContext
		in   []*core.Item
		want int
	}{
		{name: "truncate", n: 2, in: items("a", "b", "c"), want: 2},
		{name: "fewer than n", n: 5, in: items("a", "b"), want: 2},
		{name: "request top n", n: 0, rctx: &core.RecommendContext{TopN: 1}, in: items("a", "b"), want: 1},
		{name: "default", n: 0, in: items(many...), want: 10},
		{name: "empty", n: 3, in: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := (&TopNNode{N: tt.n}).Process(context.Background(), tt.rctx, tt.in)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(out) != tt.want {
				t.Errorf("len = %d, want %d", len(out), tt.want)
			}
		})
	}
}

func TestSortNode(t *testing.T) {
	in := []*core.Item{
		{ID: "a", Score: 1},
		{ID: "b", Score: 3},
		nil,
		{ID: "c", Score: 3},
		{ID: "d", Score: 2},
	}
	out, err := (&SortNode{}).Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := core.ItemIDs(out); !reflect.DeepEqual(got, []string{"b", "c", "d", "a"}) {
		t.Errorf("desc = %v", got)
	}
	out, _ = (&SortNode{Ascending: true}).Process(context.Background(), nil, in)
	if got := core.ItemIDs(out); !reflect.DeepEqual(got, []string{"a", "d", "b", "c"}) {
		t.Errorf("asc = %v", got)
	}
}
