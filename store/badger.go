package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/rushteam/cooccur/core"
)

// BadgerStore 是基于 BadgerDB 的嵌入式持久化 Store，适合单机批处理。
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore 打开（或创建）目录 dir 下的 BadgerDB；dir 为空时使用纯内存模式。
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, core.NewStorageError("badger", "open", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Name() string { return "badger" }

func (b *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, core.NewStorageError(b.Name(), "get", key, err)
	}
	return out, nil
}

func (b *BadgerStore) Set(ctx context.Context, key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return core.NewStorageError(b.Name(), "set", key, err)
	}
	return nil
}

func (b *BadgerStore) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return core.NewStorageError(b.Name(), "delete", key, err)
	}
	return nil
}

func (b *BadgerStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, core.NewStorageError(b.Name(), "batch get", "", err)
	}
	return result, nil
}

// BatchSet 使用 WriteBatch，避免大批量写入超出单事务限制。
func (b *BadgerStore) BatchSet(ctx context.Context, kvs map[string][]byte) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for k, v := range kvs {
		if err := wb.Set([]byte(k), v); err != nil {
			return core.NewStorageError(b.Name(), "batch set", k, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return core.NewStorageError(b.Name(), "batch set", "", err)
	}
	return nil
}

// Keys 实现 core.KeyLister。
func (b *BadgerStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, core.NewStorageError(b.Name(), "keys", prefix, err)
	}
	return keys, nil
}

func (b *BadgerStore) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

var (
	_ core.Store     = (*BadgerStore)(nil)
	_ core.KeyLister = (*BadgerStore)(nil)
)
