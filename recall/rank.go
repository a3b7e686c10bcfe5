package recall

import (
	"sort"

	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
)

// Rank 返回与 target 共现最多的前 n 个物品 ID。
// n <= 0 时使用默认值 10；target 没有任何共现记录时返回空切片。
func Rank(target string, m *cooccur.Matrix, n int) []string {
	return core.ItemIDs(RankScored(target, m, n))
}

// RankScored 与 Rank 相同，但保留分数。
//
// 扫描矩阵中的每个 key (p1, p2)：p1 == target 时 score[p2] += count，
// 否则 p2 == target 时 score[p1] += count。矩阵按两个方向冗余存储，两个分支都要检查，
// 因此分数是双向计数之和；自配对 (target, target) 只累加一次。
// 按分数降序稳定排序，并列时保持扫描中首次出现的顺序。
func RankScored(target string, m *cooccur.Matrix, n int) []*core.Item {
	if n <= 0 {
		n = core.Defaults.DefaultTopN()
	}

	scores := make(map[string]int64)
	var order []string
	add := func(id string, c int64) {
		if _, ok := scores[id]; !ok {
			order = append(order, id)
		}
		scores[id] += c
	}
	m.Range(func(key core.PairKey, count int64) bool {
		if key.A == target {
			add(key.B, count)
		} else if key.B == target {
			add(key.A, count)
		}
		return true
	})

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		it := core.NewItem(id)
		it.Score = float64(scores[id])
		out = append(out, it)
	}
	return out
}
