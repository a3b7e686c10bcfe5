package recall

import (
	"context"
	"fmt"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
)

// StripeStore 按物品读写单行 stripe。
type StripeStore interface {
	SaveStripes(ctx context.Context, s cooccur.Stripes) error
	LoadStripe(ctx context.Context, item string) (map[string]int64, error)
}

// StoreStripeAdapter 把每个物品的 stripe 以 JSON 存在独立 key 下：
//
//	{KeyPrefix}/{url.PathEscape(item)} -> {"other": count, ...}
//
// 单物品查询只需读一个 key，无需加载整个矩阵。
type StoreStripeAdapter struct {
	store core.Store

	// KeyPrefix 是 stripe key 的前缀，默认 "/stripes"
	KeyPrefix string
}

func NewStoreStripeAdapter(s core.Store, keyPrefix string) *StoreStripeAdapter {
	if keyPrefix == "" {
		keyPrefix = "/stripes"
	}
	return &StoreStripeAdapter{store: s, KeyPrefix: keyPrefix}
}

func (a *StoreStripeAdapter) key(item string) string {
	return a.KeyPrefix + "/" + url.PathEscape(item)
}

// SaveStripes 批量写入全部 stripe，并删除前缀下不属于本次结果的旧 stripe，
// 写入完成后前缀下只剩本次矩阵中的物品。后端不支持 core.KeyLister 时只覆盖写。
func (a *StoreStripeAdapter) SaveStripes(ctx context.Context, s cooccur.Stripes) error {
	kvs := make(map[string][]byte, len(s))
	for item, row := range s {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode stripe %q: %w", item, err)
		}
		kvs[a.key(item)] = data
	}
	if err := a.store.BatchSet(ctx, kvs); err != nil {
		return fmt.Errorf("save stripes: %w", err)
	}
	return a.prune(ctx, kvs)
}

// prune 删除 KeyPrefix 下不在 keep 中的 key。
func (a *StoreStripeAdapter) prune(ctx context.Context, keep map[string][]byte) error {
	lister, ok := a.store.(core.KeyLister)
	if !ok {
		return nil
	}
	keys, err := lister.Keys(ctx, a.KeyPrefix+"/")
	if err != nil {
		if core.IsNotSupported(err) {
			return nil
		}
		return fmt.Errorf("list stripes: %w", err)
	}
	for _, k := range keys {
		if _, ok := keep[k]; ok {
			continue
		}
		if err := a.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete stale stripe %s: %w", k, err)
		}
	}
	return nil
}

// LoadStripe 读取单个物品的 stripe，不存在时返回空 map。
func (a *StoreStripeAdapter) LoadStripe(ctx context.Context, item string) (map[string]int64, error) {
	data, err := a.store.Get(ctx, a.key(item))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return make(map[string]int64), nil
		}
		return nil, err
	}

	var row map[string]int64
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, core.WrapDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			fmt.Sprintf("recall: decode stripe %q", item), err)
	}
	return row, nil
}

func (a *StoreStripeAdapter) Name() string {
	return "store_stripe_adapter"
}

var _ StripeStore = (*StoreStripeAdapter)(nil)
