package recall

import (
	"context"

	"github.com/rushteam/cooccur/core"
)

// Source 表示一个可复用的召回源（全量矩阵扫描 / 单物品 stripe 查找 / ...）。
// 可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

const (
	// LabelRecallSource 记录候选来自哪个召回源
	LabelRecallSource = "recall_source"
	// LabelRecallTarget 记录候选由哪个目标物品召回
	LabelRecallTarget = "recall_target"
)

// resolveTopN 依次取 node 配置、请求参数、全局默认值。
func resolveTopN(n int, rctx *core.RecommendContext) int {
	if n > 0 {
		return n
	}
	if rctx != nil && rctx.TopN > 0 {
		return rctx.TopN
	}
	return core.Defaults.DefaultTopN()
}
