package cooccur

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cooccur/core"
)

// Partition 把订单按顺序切成 n 个连续分片（n <= 0 视为 1）。
// 分片之间不共享可变状态，各自聚合后再合并。
func Partition(orders []core.Order, n int) [][]core.Order {
	if n <= 1 || len(orders) <= 1 {
		return [][]core.Order{orders}
	}
	if n > len(orders) {
		n = len(orders)
	}
	size := (len(orders) + n - 1) / n
	shards := make([][]core.Order, 0, n)
	for start := 0; start < len(orders); start += size {
		end := start + size
		if end > len(orders) {
			end = len(orders)
		}
		shards = append(shards, orders[start:end])
	}
	return shards
}

// AggregateSharded 并发聚合各分片，再按分片下标顺序合并。
// 分片是连续切分的，pairwise 策略下合并结果的 key 顺序与单次顺序聚合一致。
func AggregateSharded(ctx context.Context, orders []core.Order, opts Options) (*Matrix, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	shards := Partition(orders, opts.Shards)

	eg, egCtx := errgroup.WithContext(ctx)
	if opts.MaxConcurrent > 0 {
		eg.SetLimit(opts.MaxConcurrent)
	}

	if opts.Strategy == StrategyStripes {
		partials := make([]Stripes, len(shards))
		for i, shard := range shards {
			eg.Go(func() error {
				s, err := aggregateStripes(egCtx, shard)
				if err != nil {
					return err
				}
				partials[i] = s
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
		merged := make(Stripes)
		for _, p := range partials {
			merged.Merge(p)
		}
		return merged.ToMatrix(), nil
	}

	partials := make([]*Matrix, len(shards))
	for i, shard := range shards {
		eg.Go(func() error {
			m, err := aggregatePairs(egCtx, shard, opts.SelfPairs)
			if err != nil {
				return err
			}
			partials[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	merged := NewMatrix()
	for _, p := range partials {
		merged.Merge(p)
	}
	return merged, nil
}
