package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/rushteam/cooccur/core"
)

// testStore 对任意 core.Store 实现执行同一组行为检查。
func testStore(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "/missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("Get missing key: want ErrStoreNotFound, got %v", err)
	}

	if err := s.Set(ctx, "/orders.csv", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "/orders.csv", []byte("v2")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "/orders.csv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("Get after overwrite = %q, want %q", got, "v2")
	}

	kvs := map[string][]byte{
		"/stripes/A": []byte(`{"B":1}`),
		"/stripes/B": []byte(`{"A":1}`),
	}
	if err := s.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}
	batch, err := s.BatchGet(ctx, []string{"/stripes/A", "/stripes/B", "/stripes/none"})
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}
	if len(batch) != 2 {
		t.Errorf("BatchGet returned %d keys, want 2", len(batch))
	}
	if !bytes.Equal(batch["/stripes/A"], kvs["/stripes/A"]) {
		t.Errorf("BatchGet /stripes/A = %q", batch["/stripes/A"])
	}

	if lister, ok := s.(core.KeyLister); ok {
		keys, err := lister.Keys(ctx, "/stripes/")
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		if len(keys) != 2 {
			t.Errorf("Keys(/stripes/) = %v, want 2 keys", keys)
		}
	}

	if err := s.Delete(ctx, "/orders.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "/orders.csv"); err != nil {
		t.Fatalf("Delete missing key should not fail: %v", err)
	}
	if _, err := s.Get(ctx, "/orders.csv"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after Delete: want ErrStoreNotFound, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Close()
	_, err := s.Get(context.Background(), "/x")
	if !core.IsUnavailable(err) {
		t.Errorf("Get on closed store: want UNAVAILABLE, got %v", err)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	_ = s.Set(ctx, "k", buf)
	buf[0] = 'x'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value mutated through caller slice: %q", got)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStore_KeyLayout(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	if err := s.Set(ctx, "/out/cross_correlation_results.csv", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "out", "cross_correlation_results.csv")); err != nil {
		t.Errorf("expected file under root: %v", err)
	}
	// 越界的 key 被限制在 Root 内
	if err := s.Set(ctx, "../../escape", []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape")); err != nil {
		t.Errorf("escaping key should be cleaned into root: %v", err)
	}
	if err := s.Set(ctx, "/", []byte("x")); !core.IsInvalidInput(err) {
		t.Errorf("Set root key: want INVALID_INPUT, got %v", err)
	}
}

func TestNewFileStore_EmptyRoot(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Error("want error for empty root")
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "memory", path: func(*testing.T) string { return ":memory:" }},
		{name: "file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "cooccur.db") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := OpenSQLiteStore(context.Background(), tt.path(t))
			if err != nil {
				t.Fatalf("OpenSQLiteStore: %v", err)
			}
			defer s.Close()
			testStore(t, s)
		})
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("COOCCUR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COOCCUR_TEST_REDIS_ADDR not set")
	}
	db := 15
	if v := os.Getenv("COOCCUR_TEST_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	s, err := NewRedisStore(context.Background(), addr, db)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: Config{Backend: "memory"}, want: "memory"},
		{name: "file", cfg: Config{Backend: "file", Path: t.TempDir()}, want: "file"},
		{name: "badger in-memory", cfg: Config{Backend: "badger"}, want: "badger"},
		{name: "sqlite", cfg: Config{Backend: "SQLite", Path: ":memory:"}, want: "sqlite"},
		{name: "redis without addr", cfg: Config{Backend: "redis"}, wantErr: true},
		{name: "unknown", cfg: Config{Backend: "hdfs"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					_ = s.Close()
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if s.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.want)
			}
		})
	}
}
