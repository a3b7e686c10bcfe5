package filter

import (
	"context"

	"github.com/rushteam/cooccur/core"
)

// MinScoreFilter 过滤掉分数（累计共现次数）低于 Min 的物品。
type MinScoreFilter struct {
	Min float64
}

func NewMinScoreFilter(min float64) *MinScoreFilter {
	return &MinScoreFilter{Min: min}
}

func (f *MinScoreFilter) Name() string {
	return "filter.min_score"
}

func (f *MinScoreFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return item.Score < f.Min, nil
}
