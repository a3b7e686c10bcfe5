package rerank

import (
	"context"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，通常放在 Pipeline 末尾，限制返回结果数量。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.CoOccurrence{Matrix: m},
//	        &filter.FilterNode{Filters: []filter.Filter{filter.NewTargetFilter()}},
//	        &rerank.TopNNode{N: 10},
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量。
	// N <= 0 时取 rctx.TopN；两者都未设置时取默认值 10。
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.TopN
	}
	if limit <= 0 {
		limit = core.Defaults.DefaultTopN()
	}
	if len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
