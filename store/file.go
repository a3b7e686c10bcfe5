package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rushteam/cooccur/core"
)

var errStoreClosed = errors.New("store is closed")

// FileStore 把每个 key 存成 Root 下的一个文件，对应原有的“本地文件存储”。
// key 中的 '/' 视为目录分隔符，例如 "/orders.csv" -> {Root}/orders.csv。
// 写入先落临时文件再 rename，实现覆盖写。
type FileStore struct {
	Root string
}

// NewFileStore 创建文件存储，Root 不存在时自动创建。
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("file store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, core.NewStorageError("file", "mkdir", root, err)
	}
	return &FileStore{Root: filepath.Clean(root)}, nil
}

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) path(key string) (string, error) {
	rel := filepath.Clean("/" + filepath.FromSlash(key))
	if rel == string(filepath.Separator) {
		return "", core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, fmt.Sprintf("store file: invalid key %q", key))
	}
	return filepath.Join(f.Root, rel), nil
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, core.NewStorageError(f.Name(), "get", key, err)
	}
	return data, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return core.NewStorageError(f.Name(), "set", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return core.NewStorageError(f.Name(), "set", key, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return core.NewStorageError(f.Name(), "set", key, err)
	}
	if err := tmp.Close(); err != nil {
		return core.NewStorageError(f.Name(), "set", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return core.NewStorageError(f.Name(), "set", key, err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.NewStorageError(f.Name(), "delete", key, err)
	}
	return nil
}

func (f *FileStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := f.Get(ctx, k)
		if core.IsStoreNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

func (f *FileStore) BatchSet(ctx context.Context, kvs map[string][]byte) error {
	for k, v := range kvs {
		if err := f.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys 实现 core.KeyLister，返回以 '/' 开头的 key。
func (f *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(f.Root, p)
		if err != nil {
			return err
		}
		key := "/" + filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, core.NewStorageError(f.Name(), "keys", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Close() error { return nil }

var (
	_ core.Store     = (*FileStore)(nil)
	_ core.KeyLister = (*FileStore)(nil)
)
