package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pipeline"
	"github.com/rushteam/cooccur/pkg/utils"
)

// StripeLookup 从 StripeStore 读取目标物品的单行 stripe 进行召回，
// 不需要加载整个矩阵。
//
// 分数是 stripe 中的原始共现次数；stripe 是无序 map，
// 并列项按物品 ID 字典序排列。
type StripeLookup struct {
	Store StripeStore
	TopN  int
}

func (r *StripeLookup) Name() string        { return "recall.stripe" }
func (r *StripeLookup) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *StripeLookup) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *StripeLookup) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("recall.stripe: store not configured")
	}
	if rctx == nil || rctx.Target == "" {
		return nil, nil
	}

	row, err := r.Store.LoadStripe(ctx, rctx.Target)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(row))
	for id := range row {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if row[ids[i]] != row[ids[j]] {
			return row[ids[i]] > row[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if n := resolveTopN(r.TopN, rctx); len(ids) > n {
		ids = ids[:n]
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = float64(row[id])
		it.PutLabel(LabelRecallSource, utils.NewLabel(r.Name(), "recall"))
		it.PutLabel(LabelRecallTarget, utils.NewLabel(rctx.Target, "recall"))
		out = append(out, it)
	}
	return out, nil
}

var (
	_ Source        = (*StripeLookup)(nil)
	_ pipeline.Node = (*StripeLookup)(nil)
)
