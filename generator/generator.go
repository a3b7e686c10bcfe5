// Package generator 生成合成订单数据，用于演示与压测。
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/dataset"
	"github.com/rushteam/cooccur/pkg/logging"
)

// Options 控制生成规模。
type Options struct {
	// NumOrders 订单数量
	NumOrders int
	// MaxItems 单个订单的最大物品数，实际上限为 min(MaxItems, len(products))
	MaxItems int
	// Seed 随机种子，0 表示使用当前时间
	Seed int64
}

// Generate 生成 NumOrders 个订单：每个订单包含 1..min(MaxItems, len(products)) 个物品，
// 物品从 products 中有放回地均匀抽取（同一订单内可能重复）。订单号为 UUIDv4。
// Seed 固定时结果（含订单号）可复现。
func Generate(products []string, opts Options) ([]core.Order, error) {
	if len(products) == 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput, "generator: product catalog is empty")
	}
	if opts.MaxItems < 1 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("generator: max items must be >= 1, got %d", opts.MaxItems))
	}
	if opts.NumOrders < 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
			fmt.Sprintf("generator: num orders must be >= 0, got %d", opts.NumOrders))
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	limit := min(opts.MaxItems, len(products))
	orders := make([]core.Order, 0, opts.NumOrders)
	for i := 0; i < opts.NumOrders; i++ {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("generator: order id: %w", err)
		}
		items := make([]string, 1+r.Intn(limit))
		for j := range items {
			items[j] = products[r.Intn(len(products))]
		}
		orders = append(orders, core.Order{ID: id.String(), Items: items})
	}
	return orders, nil
}

// GenerateToStore 生成订单并以订单 CSV 覆盖写入 key。
func GenerateToStore(ctx context.Context, s core.Store, key string, products []string, opts Options) ([]core.Order, error) {
	orders, err := Generate(products, opts)
	if err != nil {
		return nil, err
	}
	if err := dataset.SaveOrders(ctx, s, key, orders); err != nil {
		return nil, err
	}
	logging.Info().
		Int("orders", len(orders)).
		Int("products", len(products)).
		Str("key", key).
		Str("store", s.Name()).
		Msg("orders generated")
	return orders, nil
}
