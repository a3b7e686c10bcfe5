package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/cooccur/core"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Store.Backend != "file" {
		t.Errorf("store.backend = %q, want file", s.Store.Backend)
	}
	if s.Job.NumOrders != 100 || s.Job.MaxItems != 5 || s.Job.TopN != 10 {
		t.Errorf("job defaults = %+v", s.Job)
	}
	if s.Job.PairDelimiter != ", " {
		t.Errorf("pair_delimiter = %q", s.Job.PairDelimiter)
	}
	if s.Aggregate.Strategy != "pairwise" || s.Aggregate.SelfPairs != "drop" {
		t.Errorf("aggregate defaults = %+v", s.Aggregate)
	}
}

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cooccur.yaml")
	yml := `
store:
  backend: sqlite
  path: /tmp/cooccur.db
job:
  target: Banana
  top_n: 3
aggregate:
  strategy: stripes
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COOCCUR_JOB_TOP_N", "7")
	t.Setenv("COOCCUR_JOB_PRODUCTS", "Kiwi, Lime")
	t.Setenv("COOCCUR_AGGREGATE_SHARDS", "4")

	s, err := Load(path, map[string]any{"job.target": "Cherry"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Store.Backend != "sqlite" || s.Store.Path != "/tmp/cooccur.db" {
		t.Errorf("store from file = %+v", s.Store)
	}
	if s.Aggregate.Strategy != "stripes" {
		t.Errorf("strategy = %q, want stripes", s.Aggregate.Strategy)
	}
	if s.Job.TopN != 7 {
		t.Errorf("top_n = %d, want env override 7", s.Job.TopN)
	}
	if s.Aggregate.Shards != 4 {
		t.Errorf("shards = %d, want 4", s.Aggregate.Shards)
	}
	if !reflect.DeepEqual(s.Job.Products, []string{"Kiwi", "Lime"}) {
		t.Errorf("products = %v", s.Job.Products)
	}
	if s.Job.Target != "Cherry" {
		t.Errorf("target = %q, want CLI override Cherry", s.Job.Target)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml"), nil); err == nil {
		t.Error("want error for missing config file")
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{name: "unknown backend", mutate: func(s *Settings) { s.Store.Backend = "hdfs" }},
		{name: "unknown strategy", mutate: func(s *Settings) { s.Aggregate.Strategy = "matrix" }},
		{name: "stripes keep self pairs", mutate: func(s *Settings) {
			s.Aggregate.Strategy = "stripes"
			s.Aggregate.SelfPairs = "keep"
		}},
		{name: "zero max items", mutate: func(s *Settings) { s.Job.MaxItems = 0 }},
		{name: "file without path", mutate: func(s *Settings) { s.Store.Path = "" }},
		{name: "empty delimiter", mutate: func(s *Settings) { s.Job.PairDelimiter = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if !core.IsInvalidInput(err) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}

	s := Default()
	if err := s.Validate(); err != nil {
		t.Errorf("default settings invalid: %v", err)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"COOCCUR_STORE_REDIS_ADDR": "store.redis_addr",
		"COOCCUR_JOB_MAX_ITEMS":    "job.max_items",
		"COOCCUR_LOG_LEVEL":        "log.level",
		"COOCCUR_PIPELINE":         "pipeline",
	}
	for in, want := range tests {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}
