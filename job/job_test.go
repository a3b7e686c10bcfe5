package job

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/cooccur/config"
	"github.com/rushteam/cooccur/config/builders"
	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/dataset"
	"github.com/rushteam/cooccur/store"
)

const exampleOrders = "Order ID,Items\no1,A;B\no2,A;B\n\no3,A;C\nbroken-row\n"

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.Default()
	s.Store = store.Config{Backend: store.BackendFile, Path: t.TempDir()}
	s.Job.Generate = false
	s.Job.Target = "A"
	return &s
}

func TestRunWithStore_Example(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	if err := st.Set(ctx, "/orders.csv", []byte(exampleOrders)); err != nil {
		t.Fatal(err)
	}
	s := testSettings(t)
	s.Job.TopN = 2

	res, err := RunWithStore(ctx, st, s)
	if err != nil {
		t.Fatalf("RunWithStore: %v", err)
	}
	if res.Orders != 3 || res.Pairs != 4 {
		t.Errorf("orders=%d pairs=%d, want 3/4", res.Orders, res.Pairs)
	}
	if !reflect.DeepEqual(res.Recommendations, []string{"B", "C"}) {
		t.Errorf("recommendations = %v, want [B C]", res.Recommendations)
	}
	// 未配置 Pipeline 时分数即 RankScored 的双向计数
	if len(res.Items) != 2 || res.Items[0].Score != 4 || res.Items[1].Score != 2 {
		t.Errorf("items = %v, want scores 4/2", res.Items)
	}

	pairs, err := dataset.LoadResults(ctx, st, "/cross_correlation_results.csv", ", ")
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if len(pairs) != 4 {
		t.Errorf("persisted %d pairs, want 4", len(pairs))
	}
}

func TestRun_GenerateFileStore(t *testing.T) {
	s := testSettings(t)
	s.Job.Generate = true
	s.Job.Seed = 11
	s.Job.Target = "Apple"
	s.Job.StripesPrefix = "/stripes"
	s.Aggregate.Shards = 3

	res, err := Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Orders != 100 {
		t.Errorf("orders = %d, want 100", res.Orders)
	}
	if len(res.Recommendations) > 10 {
		t.Errorf("got %d recommendations, want <= 10", len(res.Recommendations))
	}
	for _, name := range []string{"orders.csv", "cross_correlation_results.csv", "stripes/Apple"} {
		if _, err := os.Stat(filepath.Join(s.Store.Path, name)); err != nil {
			t.Errorf("expected %s in store: %v", name, err)
		}
	}

	// 分片与单次聚合结果一致
	s.Job.Generate = false
	s.Aggregate.Shards = 0
	again, err := Run(context.Background(), s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(again.Recommendations, res.Recommendations) {
		t.Errorf("sequential = %v, sharded = %v", again.Recommendations, res.Recommendations)
	}
}

func TestRun_CatalogFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Set(ctx, "/products.csv", []byte("Product\nKiwi\nLime\n"))
	s := testSettings(t)
	s.Job.Generate = true
	s.Job.Seed = 5
	s.Job.Target = "Kiwi"

	if _, err := RunWithStore(ctx, st, s); err != nil {
		t.Fatalf("RunWithStore: %v", err)
	}
	orders, err := dataset.LoadOrders(ctx, st, "/orders.csv")
	if err != nil {
		t.Fatalf("LoadOrders: %v", err)
	}
	for _, o := range orders {
		for _, it := range o.Items {
			if it != "Kiwi" && it != "Lime" {
				t.Fatalf("item %q not from stored catalog", it)
			}
		}
	}
}

func TestRun_Pipeline(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Set(ctx, "/orders.csv", []byte("Order ID,Items\no1,A;B;C\no2,A;B\no3,A;D\n"))

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	yml := `
pipeline:
  name: job
  nodes:
    - type: recall.cooccurrence
    - type: filter
      config:
        filters:
          - type: target
          - type: min_score
            min: 3
    - type: rerank.topn
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	s := testSettings(t)
	s.Pipeline = path

	res, err := RunWithStore(ctx, st, s)
	if err != nil {
		t.Fatalf("RunWithStore: %v", err)
	}
	if !reflect.DeepEqual(res.Recommendations, []string{"B"}) {
		t.Errorf("recommendations = %v, want [B]", res.Recommendations)
	}

	// 运行结束后不再持有 Store
	if _, err := builders.BuildCoOccurrenceNode(nil); err == nil {
		t.Error("recall.cooccurrence still bound after run")
	}
}

func TestRun_UnknownTarget(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Set(ctx, "/orders.csv", []byte(exampleOrders))
	s := testSettings(t)
	s.Job.Target = "Z"

	res, err := RunWithStore(ctx, st, s)
	if err != nil {
		t.Fatalf("RunWithStore: %v", err)
	}
	if len(res.Recommendations) != 0 {
		t.Errorf("recommendations = %v, want empty", res.Recommendations)
	}
}

func TestRun_MissingOrders(t *testing.T) {
	s := testSettings(t)
	_, err := RunWithStore(context.Background(), store.NewMemoryStore(), s)
	if !core.IsStoreNotFound(err) {
		t.Errorf("RunWithStore = %v, want ErrStoreNotFound", err)
	}
}

func TestRun_BadDelimiter(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Set(ctx, "/orders.csv", []byte("Order ID,Items\no1,\"a, b;c\"\n"))
	s := testSettings(t)

	if _, err := RunWithStore(ctx, st, s); !core.IsInvalidInput(err) {
		t.Errorf("RunWithStore = %v, want INVALID_INPUT for item containing delimiter", err)
	}
}
