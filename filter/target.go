package filter

import (
	"context"

	"github.com/rushteam/cooccur/core"
)

// TargetFilter 过滤掉请求目标本身（Target 与 Basket 中的物品），
// 避免“买了 X 的人还买了 X”。
type TargetFilter struct{}

func NewTargetFilter() *TargetFilter { return &TargetFilter{} }

func (f *TargetFilter) Name() string {
	return "filter.target"
}

func (f *TargetFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	for _, t := range rctx.Targets() {
		if item.ID == t {
			return true, nil
		}
	}
	return false, nil
}
