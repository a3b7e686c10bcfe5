package core

import "github.com/rushteam/cooccur/pkg/utils"

// RecommendContext 承载一次推荐请求的信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	// Target 是目标物品（"买了 X 的人还买了…" 中的 X）
	Target string

	// Basket 是多目标推荐时的物品集合；为空时只使用 Target
	Basket []string

	// TopN 是期望返回的数量，<= 0 时使用默认值
	TopN int

	Scene string

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，可在 CEL 表达式中通过 rctx.params 访问
	Params map[string]any
}

// Targets 返回本次请求的全部目标物品（Basket 优先，去重，保持顺序）。
func (rctx *RecommendContext) Targets() []string {
	if rctx == nil {
		return nil
	}
	src := rctx.Basket
	if len(src) == 0 && rctx.Target != "" {
		src = []string{rctx.Target}
	}
	seen := make(map[string]struct{}, len(src))
	out := make([]string, 0, len(src))
	for _, t := range src {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
