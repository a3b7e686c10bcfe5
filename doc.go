// Package cooccur 从订单日志计算物品共现矩阵，并据此做“买了 X 的人还买了…”推荐。
//
// 设计要点：
// - 聚合可加：pairwise 与 stripes 两种 map/reduce 形式结果一致，可分片并发后合并
// - 确定性：矩阵保持插入顺序，排序并列时先出现者在前，持久化读回后顺序不变
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → ReRank）
package cooccur

import (
	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/pipeline"
	"github.com/rushteam/cooccur/recall"
)

// 轻量 facade：便于直接 import 根包使用核心抽象。
type (
	Matrix   = cooccur.Matrix
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// Rank 是 recall.Rank 的快捷方式。
func Rank(target string, m *Matrix, n int) []string {
	return recall.Rank(target, m, n)
}
