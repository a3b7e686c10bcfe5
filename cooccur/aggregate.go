package cooccur

import (
	"context"
	"fmt"

	"github.com/rushteam/cooccur/core"
)

// Strategy 是聚合策略。
type Strategy string

const (
	// StrategyPairwise 逐对输出再按 key 求和（参考策略，持久化的结果来自它）。
	StrategyPairwise Strategy = "pairwise"
	// StrategyStripes 按物品分组输出 stripe 再合并。
	StrategyStripes Strategy = "stripes"
)

// Options 是聚合配置。
type Options struct {
	// Strategy 默认 pairwise
	Strategy Strategy

	// SelfPairs 默认 drop；stripes 策略不支持 keep
	SelfPairs SelfPairPolicy

	// Shards > 1 时按分片并发聚合后合并
	Shards int

	// MaxConcurrent 分片最大并发数（0 表示不限制）
	MaxConcurrent int
}

func (o Options) withDefaults() Options {
	if o.Strategy == "" {
		o.Strategy = StrategyPairwise
	}
	if o.SelfPairs == "" {
		o.SelfPairs = SelfPairsDrop
	}
	return o
}

// Validate 检查配置组合是否合法。
func (o Options) Validate() error {
	o = o.withDefaults()
	switch o.Strategy {
	case StrategyPairwise, StrategyStripes:
	default:
		return core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, fmt.Sprintf("cooccur: unknown strategy %q", o.Strategy))
	}
	switch o.SelfPairs {
	case SelfPairsDrop, SelfPairsKeep:
	default:
		return core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, fmt.Sprintf("cooccur: unknown self pair policy %q", o.SelfPairs))
	}
	if o.Strategy == StrategyStripes && o.SelfPairs == SelfPairsKeep {
		return core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput, "cooccur: stripes strategy cannot keep self pairs")
	}
	return nil
}

// AggregatePairs 用 pairwise 策略聚合全部订单。
func AggregatePairs(orders []core.Order) *Matrix {
	m, _ := aggregatePairs(context.Background(), orders, SelfPairsDrop)
	return m
}

// AggregateStripes 用 stripes 策略聚合全部订单。
func AggregateStripes(orders []core.Order) Stripes {
	s, _ := aggregateStripes(context.Background(), orders)
	return s
}

// Aggregate 按 Options 聚合订单，返回 PairKey 形式的矩阵。
// 订单之间检查 ctx，取消时返回 ctx.Err()。
func Aggregate(ctx context.Context, orders []core.Order, opts Options) (*Matrix, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	if opts.Shards > 1 {
		return AggregateSharded(ctx, orders, opts)
	}
	return aggregateOnce(ctx, orders, opts)
}

func aggregateOnce(ctx context.Context, orders []core.Order, opts Options) (*Matrix, error) {
	if opts.Strategy == StrategyStripes {
		s, err := aggregateStripes(ctx, orders)
		if err != nil {
			return nil, err
		}
		return s.ToMatrix(), nil
	}
	return aggregatePairs(ctx, orders, opts.SelfPairs)
}

func aggregatePairs(ctx context.Context, orders []core.Order, policy SelfPairPolicy) (*Matrix, error) {
	m := NewMatrix()
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, o := range ExtractPairs(order.Items, policy) {
			m.Add(o.Key, o.Count)
		}
	}
	return m, nil
}

func aggregateStripes(ctx context.Context, orders []core.Order) (Stripes, error) {
	s := make(Stripes)
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, st := range MapStripes(order) {
			s.add(st.Item, st.Counts)
		}
	}
	return s, nil
}
