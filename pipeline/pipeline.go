package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pkg/logging"
)

// Pipeline 把一次推荐拆成可组合的 Node 链：Recall -> Filter -> ReRank。
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run 依次执行各 Node，上一个 Node 的输出作为下一个 Node 的输入。
// 任一 Node 出错即中止并返回带 Node 名称的错误。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: node %s: %w", p.Name, node.Name(), err)
		}
		logging.Debug().
			Str("pipeline", p.Name).
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Msg("node processed")
		cur = next
	}
	return cur, nil
}
