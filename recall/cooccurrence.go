package recall

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pipeline"
	"github.com/rushteam/cooccur/pkg/utils"
)

// CoOccurrence 是共现召回源：“买了 X 的人还买了…”。
// 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
//
// 矩阵来源优先级：Matrix（已加载）> Store（每次召回时读取）。
// 请求包含多个目标（Basket）时，各目标的分数按物品累加。
type CoOccurrence struct {
	Matrix *cooccur.Matrix
	Store  MatrixStore

	// TopN 每个目标最多召回的数量，<= 0 时取 rctx.TopN，再取默认值
	TopN int
}

func (r *CoOccurrence) Name() string        { return "recall.cooccurrence" }
func (r *CoOccurrence) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *CoOccurrence) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *CoOccurrence) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	targets := rctx.Targets()
	if len(targets) == 0 {
		return nil, nil
	}

	m, err := r.matrix(ctx)
	if err != nil {
		return nil, err
	}

	n := resolveTopN(r.TopN, rctx)
	if len(targets) == 1 {
		items := RankScored(targets[0], m, n)
		r.label(items, targets[0])
		return items, nil
	}

	merged := make(map[string]*core.Item)
	var order []string
	for _, t := range targets {
		items := RankScored(t, m, n)
		r.label(items, t)
		for _, it := range items {
			if old, ok := merged[it.ID]; ok {
				old.Score += it.Score
				for k, v := range it.Labels {
					old.PutLabel(k, v)
				}
				continue
			}
			merged[it.ID] = it
			order = append(order, it.ID)
		}
	}
	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *CoOccurrence) matrix(ctx context.Context) (*cooccur.Matrix, error) {
	if r.Matrix != nil {
		return r.Matrix, nil
	}
	if r.Store == nil {
		return nil, fmt.Errorf("recall.cooccurrence: neither matrix nor store configured")
	}
	return r.Store.LoadMatrix(ctx)
}

func (r *CoOccurrence) label(items []*core.Item, target string) {
	for _, it := range items {
		it.PutLabel(LabelRecallSource, utils.NewLabel(r.Name(), "recall"))
		it.PutLabel(LabelRecallTarget, utils.NewLabel(target, "recall"))
	}
}

var (
	_ Source        = (*CoOccurrence)(nil)
	_ pipeline.Node = (*CoOccurrence)(nil)
)
