package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pipeline"
)

// SortNode 按分数重新排序（稳定排序，并列保持输入顺序）。
// 多个召回源合并或过滤改写分数后使用。
type SortNode struct {
	// Ascending 为 true 时升序，默认降序
	Ascending bool
}

func (n *SortNode) Name() string        { return "rerank.sort" }
func (n *SortNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *SortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if n.Ascending {
			return out[i].Score < out[j].Score
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}
