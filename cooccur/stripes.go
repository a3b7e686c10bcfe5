package cooccur

import (
	"sort"

	"github.com/rushteam/cooccur/core"
)

// Stripe 是单个物品位置的共现计数：该位置上的物品与订单中其它物品的共现次数。
type Stripe struct {
	Item   string
	Counts map[string]int64
}

// Stripes 是按首物品分组的共现矩阵：item -> (other -> count)。
type Stripes map[string]map[string]int64

// MapStripes 是 stripes 策略的 map 步骤。
// 订单中每个位置输出一个 stripe，统计订单里所有其它值不同的物品（按位置计数）。
func MapStripes(order core.Order) []Stripe {
	items := order.Items
	if len(items) < 2 {
		return nil
	}
	out := make([]Stripe, 0, len(items))
	for i, item := range items {
		counts := make(map[string]int64)
		for j, other := range items {
			if i == j || other == item {
				continue
			}
			counts[other]++
		}
		out = append(out, Stripe{Item: item, Counts: counts})
	}
	return out
}

// ReduceStripes 是 stripes 策略的 reduce 步骤：相同首物品的 stripe 按嵌套 key 求和。
func ReduceStripes(stripes []Stripe) Stripes {
	out := make(Stripes)
	for _, s := range stripes {
		out.add(s.Item, s.Counts)
	}
	return out
}

func (s Stripes) add(item string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	row, ok := s[item]
	if !ok {
		row = make(map[string]int64, len(counts))
		s[item] = row
	}
	for other, c := range counts {
		row[other] += c
	}
}

// Merge 将 other 累加进 s 并返回 s。
func (s Stripes) Merge(other Stripes) Stripes {
	for item, row := range other {
		s.add(item, row)
	}
	return s
}

// Row 返回 item 的 stripe，不存在时为 nil。
func (s Stripes) Row(item string) map[string]int64 {
	return s[item]
}

// ToMatrix 转为 PairKey 形式。
// map 无序，这里按首物品、次物品的字典序写入，保证输出确定。
func (s Stripes) ToMatrix() *Matrix {
	m := NewMatrix()
	leads := make([]string, 0, len(s))
	for item := range s {
		leads = append(leads, item)
	}
	sort.Strings(leads)
	for _, a := range leads {
		row := s[a]
		others := make([]string, 0, len(row))
		for b := range row {
			others = append(others, b)
		}
		sort.Strings(others)
		for _, b := range others {
			m.Add(core.PairKey{A: a, B: b}, row[b])
		}
	}
	return m
}

// StripesFromMatrix 将 PairKey 形式的矩阵按首物品分组。
func StripesFromMatrix(m *Matrix) Stripes {
	out := make(Stripes)
	m.Range(func(k core.PairKey, c int64) bool {
		out.add(k.A, map[string]int64{k.B: c})
		return true
	})
	return out
}
