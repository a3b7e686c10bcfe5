package recall

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/store"
)

func TestStoreMatrixAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	a := NewStoreMatrixAdapter(s, "", "")

	m := exampleMatrix()
	if err := a.SaveMatrix(ctx, m); err != nil {
		t.Fatalf("SaveMatrix: %v", err)
	}
	got, err := a.LoadMatrix(ctx)
	if err != nil {
		t.Fatalf("LoadMatrix: %v", err)
	}
	if !reflect.DeepEqual(got.Pairs(), m.Pairs()) {
		t.Errorf("read back %v, want %v (order preserved)", got.Pairs(), m.Pairs())
	}
	if !reflect.DeepEqual(Rank("A", got, 2), Rank("A", m, 2)) {
		t.Error("ranking must not change across persistence")
	}
}

func TestStoreMatrixAdapter_Missing(t *testing.T) {
	a := NewStoreMatrixAdapter(store.NewMemoryStore(), "/none.csv", "")
	_, err := a.LoadMatrix(context.Background())
	if !core.IsStoreNotFound(err) {
		t.Errorf("LoadMatrix missing key: want ErrStoreNotFound, got %v", err)
	}
}

func TestCoOccurrence_Recall(t *testing.T) {
	ctx := context.Background()
	r := &CoOccurrence{Matrix: exampleMatrix(), TopN: 2}

	items, err := r.Process(ctx, &core.RecommendContext{Target: "A"}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := core.ItemIDs(items); !reflect.DeepEqual(got, []string{"B", "C"}) {
		t.Errorf("ids = %v, want [B C]", got)
	}
	if lbl := items[0].Labels[LabelRecallSource]; lbl.Value != "recall.cooccurrence" {
		t.Errorf("recall_source = %q", lbl.Value)
	}
	if lbl := items[0].Labels[LabelRecallTarget]; lbl.Value != "A" {
		t.Errorf("recall_target = %q", lbl.Value)
	}
}

func TestCoOccurrence_FromStore(t *testing.T) {
	ctx := context.Background()
	a := NewStoreMatrixAdapter(store.NewMemoryStore(), "", "")
	if err := a.SaveMatrix(ctx, exampleMatrix()); err != nil {
		t.Fatalf("SaveMatrix: %v", err)
	}
	r := &CoOccurrence{Store: a}
	items, err := r.Recall(ctx, &core.RecommendContext{Target: "B", TopN: 5})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if got := core.ItemIDs(items); !reflect.DeepEqual(got, []string{"A"}) {
		t.Errorf("ids = %v, want [A]", got)
	}
}

func TestCoOccurrence_Basket(t *testing.T) {
	m := cooccur.AggregatePairs([]core.Order{
		{ID: "o1", Items: []string{"A", "C"}},
		{ID: "o2", Items: []string{"B", "C"}},
		{ID: "o3", Items: []string{"B", "D"}},
	})
	r := &CoOccurrence{Matrix: m}
	items, err := r.Recall(context.Background(), &core.RecommendContext{Basket: []string{"A", "B"}})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) == 0 || items[0].ID != "C" || items[0].Score != 4 {
		t.Fatalf("top item = %+v, want C with score 4", items)
	}
}

func TestCoOccurrence_NoTarget(t *testing.T) {
	r := &CoOccurrence{Matrix: exampleMatrix()}
	items, err := r.Recall(context.Background(), &core.RecommendContext{})
	if err != nil || len(items) != 0 {
		t.Errorf("Recall without target = %v, %v; want empty, nil", items, err)
	}
	if _, err := (&CoOccurrence{}).Recall(context.Background(), &core.RecommendContext{Target: "A"}); err == nil {
		t.Error("want error when no matrix source configured")
	}
}

func TestStripeLookup(t *testing.T) {
	ctx := context.Background()
	a := NewStoreStripeAdapter(store.NewMemoryStore(), "")
	stripes := cooccur.AggregateStripes([]core.Order{
		{ID: "o1", Items: []string{"A", "B"}},
		{ID: "o2", Items: []string{"A", "B"}},
		{ID: "o3", Items: []string{"A", "C"}},
		{ID: "o4", Items: []string{"A", "D"}},
	})
	if err := a.SaveStripes(ctx, stripes); err != nil {
		t.Fatalf("SaveStripes: %v", err)
	}

	r := &StripeLookup{Store: a, TopN: 10}
	items, err := r.Recall(ctx, &core.RecommendContext{Target: "A"})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if got := core.ItemIDs(items); !reflect.DeepEqual(got, []string{"B", "C", "D"}) {
		t.Errorf("ids = %v, want [B C D]", got)
	}
	if items[0].Score != 2 {
		t.Errorf("score(B) = %v, want 2", items[0].Score)
	}

	items, err = r.Recall(ctx, &core.RecommendContext{Target: "unknown"})
	if err != nil || len(items) != 0 {
		t.Errorf("unknown target = %v, %v; want empty, nil", items, err)
	}
}

func TestStoreStripeAdapter_EscapesKeys(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	a := NewStoreStripeAdapter(s, "/s")
	if err := a.SaveStripes(ctx, cooccur.Stripes{"a/b": {"c": 1}}); err != nil {
		t.Fatalf("SaveStripes: %v", err)
	}
	keys, _ := s.Keys(ctx, "/s/")
	if !reflect.DeepEqual(keys, []string{"/s/a%2Fb"}) {
		t.Errorf("keys = %v", keys)
	}
	row, err := a.LoadStripe(ctx, "a/b")
	if err != nil || row["c"] != 1 {
		t.Errorf("LoadStripe = %v, %v", row, err)
	}
}

func TestStoreStripeAdapter_ReplacesPreviousRun(t *testing.T) {
	ctx := context.Background()
	fileStore, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		s    core.Store
	}{
		{"memory", store.NewMemoryStore()},
		{"file", fileStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewStoreStripeAdapter(tt.s, "")
			first := cooccur.AggregateStripes([]core.Order{{ID: "o1", Items: []string{"Z", "A"}}})
			if err := a.SaveStripes(ctx, first); err != nil {
				t.Fatalf("SaveStripes first: %v", err)
			}
			m := cooccur.AggregatePairs([]core.Order{{ID: "o2", Items: []string{"A", "B"}}})
			if err := a.SaveStripes(ctx, cooccur.StripesFromMatrix(m)); err != nil {
				t.Fatalf("SaveStripes second: %v", err)
			}

			row, err := a.LoadStripe(ctx, "Z")
			if err != nil || len(row) != 0 {
				t.Errorf("stripe Z = %v, %v; want empty", row, err)
			}
			row, err = a.LoadStripe(ctx, "A")
			if err != nil || !reflect.DeepEqual(row, map[string]int64{"B": 1}) {
				t.Errorf("stripe A = %v, %v; want map[B:1]", row, err)
			}

			r := &StripeLookup{Store: a, TopN: 10}
			items, err := r.Recall(ctx, &core.RecommendContext{Target: "Z"})
			if err != nil {
				t.Fatalf("Recall: %v", err)
			}
			if got, want := core.ItemIDs(items), Rank("Z", m, 10); !reflect.DeepEqual(got, want) {
				t.Errorf("StripeLookup(Z) = %v, Rank(Z) = %v", got, want)
			}

			keys, _ := tt.s.(core.KeyLister).Keys(ctx, "/stripes/")
			if !reflect.DeepEqual(keys, []string{"/stripes/A", "/stripes/B"}) {
				t.Errorf("keys = %v", keys)
			}
		})
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Recall(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return nil, errors.New("boom")
}

func TestFanout_PerTargetSum(t *testing.T) {
	m := cooccur.AggregatePairs([]core.Order{
		{ID: "o1", Items: []string{"A", "C"}},
		{ID: "o2", Items: []string{"B", "C"}},
		{ID: "o3", Items: []string{"B", "D"}},
	})
	f := &Fanout{
		Sources:       []Source{&CoOccurrence{Matrix: m}, failingSource{}},
		PerTarget:     true,
		MaxConcurrent: 2,
	}
	items, err := f.Process(context.Background(), &core.RecommendContext{Basket: []string{"A", "B"}}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := core.ItemIDs(items); !reflect.DeepEqual(got, []string{"C", "D"}) {
		t.Errorf("ids = %v, want [C D]", got)
	}
	if items[0].Score != 4 {
		t.Errorf("score(C) = %v, want 4", items[0].Score)
	}
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.ID] {
			t.Errorf("duplicate item %s after sum merge", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestFanout_MergeStrategies(t *testing.T) {
	m := exampleMatrix()
	sources := []Source{&CoOccurrence{Matrix: m}, &CoOccurrence{Matrix: m}}
	rctx := &core.RecommendContext{Target: "A"}

	tests := []struct {
		strategy string
		wantLen  int
		topScore float64
	}{
		{strategy: MergeSum, wantLen: 2, topScore: 8},
		{strategy: MergeFirst, wantLen: 2, topScore: 4},
		{strategy: MergeUnion, wantLen: 4, topScore: 4},
		{strategy: MergePriority, wantLen: 2, topScore: 4},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			f := &Fanout{Sources: sources, MergeStrategy: tt.strategy}
			items, err := f.Process(context.Background(), rctx, nil)
			if err != nil {
				t.Fatalf("Process: %v", err)
			}
			if len(items) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(items), tt.wantLen)
			}
			if items[0].ID != "B" || items[0].Score != tt.topScore {
				t.Errorf("top = %s/%v, want B/%v", items[0].ID, items[0].Score, tt.topScore)
			}
		})
	}
}
