package cooccur

import "github.com/rushteam/cooccur/core"

// Matrix 是稀疏共现矩阵：PairKey -> 计数。
//
// key 按首次写入的顺序保存，Range / Pairs 依此顺序遍历，
// 排序时的并列项因此是确定的（先出现者在前）。
// 构建完成后应视为只读；并发读安全，并发写需要调用方加锁。
type Matrix struct {
	keys   []core.PairKey
	counts map[core.PairKey]int64
}

func NewMatrix() *Matrix {
	return &Matrix{counts: make(map[core.PairKey]int64)}
}

// MatrixFromPairs 由持久化记录重建矩阵，重复的 key 会被累加。
func MatrixFromPairs(pairs []core.PairCount) *Matrix {
	m := NewMatrix()
	for _, p := range pairs {
		m.Add(p.Key, p.Count)
	}
	return m
}

// Add 为 key 累加 n。
func (m *Matrix) Add(key core.PairKey, n int64) {
	if _, ok := m.counts[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.counts[key] += n
}

// Count 返回 key 的计数，不存在时为 0。
func (m *Matrix) Count(key core.PairKey) int64 {
	if m == nil {
		return 0
	}
	return m.counts[key]
}

// Has 判断 key 是否存在。
func (m *Matrix) Has(key core.PairKey) bool {
	if m == nil {
		return false
	}
	_, ok := m.counts[key]
	return ok
}

// Len 返回不同 key 的数量。
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Total 返回所有计数之和，即参与聚合的观测总数。
func (m *Matrix) Total() int64 {
	if m == nil {
		return 0
	}
	var sum int64
	for _, c := range m.counts {
		sum += c
	}
	return sum
}

// Range 按插入顺序遍历，fn 返回 false 时停止。
func (m *Matrix) Range(fn func(key core.PairKey, count int64) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.counts[k]) {
			return
		}
	}
}

// Pairs 按插入顺序导出全部记录。
func (m *Matrix) Pairs() []core.PairCount {
	out := make([]core.PairCount, 0, m.Len())
	m.Range(func(k core.PairKey, c int64) bool {
		out = append(out, core.PairCount{Key: k, Count: c})
		return true
	})
	return out
}

// Merge 将 other 的计数累加到 m 并返回 m。
// 对 key 集合与计数而言满足结合律与交换律；新 key 追加在 m 已有 key 之后。
func (m *Matrix) Merge(other *Matrix) *Matrix {
	other.Range(func(k core.PairKey, c int64) bool {
		m.Add(k, c)
		return true
	})
	return m
}

// Equal 比较 key 集合与计数，忽略插入顺序。
func (m *Matrix) Equal(other *Matrix) bool {
	if m.Len() != other.Len() {
		return false
	}
	equal := true
	m.Range(func(k core.PairKey, c int64) bool {
		oc, ok := other.counts[k]
		if !ok || oc != c {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Items 返回作为首分量出现过的物品，按首次出现顺序。
func (m *Matrix) Items() []string {
	seen := make(map[string]struct{})
	var out []string
	m.Range(func(k core.PairKey, _ int64) bool {
		if _, ok := seen[k.A]; !ok {
			seen[k.A] = struct{}{}
			out = append(out, k.A)
		}
		return true
	})
	return out
}
