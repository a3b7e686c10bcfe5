package cooccur

import "github.com/rushteam/cooccur/core"

// SelfPairPolicy 决定同一订单内值相同的两个位置如何处理。
type SelfPairPolicy string

const (
	// SelfPairsDrop 丢弃 (x,x)，矩阵中不会出现自配对（默认）。
	SelfPairsDrop SelfPairPolicy = "drop"
	// SelfPairsKeep 按位置原样输出 (x,x)，每个订单恰好输出 k*(k-1) 条观测。
	SelfPairsKeep SelfPairPolicy = "keep"
)

// ExtractPairs 对一个订单的物品序列输出所有有序物品对观测。
// 对每个 i < j 同时输出 (items[i], items[j]) 与 (items[j], items[i])，计数为 1。
func ExtractPairs(items []string, policy SelfPairPolicy) []core.Observation {
	k := len(items)
	if k < 2 {
		return nil
	}
	out := make([]core.Observation, 0, k*(k-1))
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if items[i] == items[j] && policy != SelfPairsKeep {
				continue
			}
			out = append(out,
				core.Observation{Key: core.PairKey{A: items[i], B: items[j]}, Count: 1},
				core.Observation{Key: core.PairKey{A: items[j], B: items[i]}, Count: 1},
			)
		}
	}
	return out
}

// MapPairs 是 pairwise 策略的 map 步骤（默认丢弃自配对）。
func MapPairs(order core.Order) []core.Observation {
	return ExtractPairs(order.Items, SelfPairsDrop)
}

// ReducePairs 是 pairwise 策略的 reduce 步骤：按 key 累加计数。
func ReducePairs(observations []core.Observation) *Matrix {
	m := NewMatrix()
	for _, o := range observations {
		m.Add(o.Key, o.Count)
	}
	return m
}
