package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/cooccur/core"
)

// 后端名称
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config 描述如何打开一个 Store。
type Config struct {
	// Backend: memory | file | redis | badger | sqlite
	Backend string `koanf:"backend" validate:"required,oneof=memory file redis badger sqlite"`
	// Path 是 file 的根目录、badger 的数据目录或 sqlite 的数据库文件
	Path string `koanf:"path"`

	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db" validate:"gte=0"`
}

// Open 按 Config.Backend 打开对应的 Store，调用方负责 Close。
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(cfg.Path)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("store redis: redis_addr is required")
		}
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
	case BackendBadger:
		return OpenBadgerStore(cfg.Path)
	case BackendSQLite:
		return OpenSQLiteStore(ctx, cfg.Path)
	default:
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotSupported,
			fmt.Sprintf("store: unknown backend %q", cfg.Backend))
	}
}
