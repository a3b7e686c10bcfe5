package core

import "context"

// Store 是存储的领域接口：一个按 key 寻址的不透明 blob 存储。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - Set 为 create-overwrite 语义：key 已存在时整体覆盖
//
// 使用场景：
//   - 订单文件（orders.csv）读写
//   - 共现结果文件（cross_correlation_results.csv）读写
//   - 按物品分组的 stripe（JSON）读写
//
// 实现：
//   - store.MemoryStore / store.FileStore / store.RedisStore
//   - store.BadgerStore / store.SQLiteStore
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值，不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value（覆盖写）
	Set(ctx context.Context, key string, value []byte) error

	// Delete 删除单个 key，key 不存在不视为错误
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取，缺失的 key 不出现在结果中
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// BatchSet 批量写入
	BatchSet(ctx context.Context, kvs map[string][]byte) error

	// Close 关闭连接/释放资源，重复调用安全
	Close() error
}

// KeyLister 是 Store 的可选扩展：按前缀列出 key。
// 如果后端不支持，可返回 ErrStoreNotSupported。
type KeyLister interface {
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsStoreNotSupported 检查错误是否为操作不支持
func IsStoreNotSupported(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}
