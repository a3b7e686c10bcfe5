package recall

import (
	"context"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pipeline"
	"github.com/rushteam/cooccur/pkg/logging"
	"github.com/rushteam/cooccur/pkg/utils"
)

// 合并策略
const (
	MergeSum      = "sum"      // 同 ID 分数累加，按累计分数降序
	MergeFirst    = "first"    // 同 ID 保留第一个出现的
	MergeUnion    = "union"    // 不去重
	MergePriority = "priority" // 同 ID 保留优先级更高（Sources 中靠前）的
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并合并结果。
//
// PerTarget 为 true 时，请求中的每个目标物品（Basket）单独执行一次每个召回源，
// 适用于“购物车中全部物品的相关推荐”。结果按 (source, target) 的顺序收集，
// 合并结果因此与并发调度无关。
type Fanout struct {
	Sources       []Source
	PerTarget     bool
	Timeout       time.Duration // 每次召回的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
	MergeStrategy string        // sum / first / union / priority，默认 sum
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

type fanoutTask struct {
	src      Source
	priority int
	rctx     *core.RecommendContext
}

func (n *Fanout) tasks(rctx *core.RecommendContext) []fanoutTask {
	var tasks []fanoutTask
	for i, src := range n.Sources {
		if !n.PerTarget {
			tasks = append(tasks, fanoutTask{src: src, priority: i, rctx: rctx})
			continue
		}
		for _, t := range rctx.Targets() {
			sub := *rctx
			sub.Target = t
			sub.Basket = nil
			tasks = append(tasks, fanoutTask{src: src, priority: i, rctx: &sub})
		}
	}
	return tasks
}

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}

	tasks := n.tasks(rctx)
	results := make([][]*core.Item, len(tasks))

	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}
	for i, task := range tasks {
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := task.src.Recall(recallCtx, task.rctx)
			if err != nil {
				// 单个召回源失败不中断其他召回源
				logging.Warn().Err(err).
					Str("source", task.src.Name()).
					Str("target", task.rctx.Target).
					Msg("recall source failed")
				return nil
			}

			for _, it := range items {
				it.PutLabel(LabelRecallSource, utils.NewLabel(task.src.Name(), "recall"))
				it.PutLabel("recall_priority", utils.NewLabel(strconv.Itoa(task.priority), "recall"))
			}
			results[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []*core.Item
	for _, items := range results {
		all = append(all, items...)
	}

	switch n.MergeStrategy {
	case MergeFirst:
		return mergeFirst(all), nil
	case MergeUnion:
		return all, nil
	case MergePriority:
		return mergeByPriority(all), nil
	default:
		return mergeSum(all), nil
	}
}

// mergeSum 同 ID 分数累加，按累计分数降序稳定排序。
func mergeSum(all []*core.Item) []*core.Item {
	out := mergeFirstWith(all, func(old, it *core.Item) { old.Score += it.Score })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// mergeFirst 按 ID 去重，保留第一个出现的，labels 合并。
func mergeFirst(all []*core.Item) []*core.Item {
	return mergeFirstWith(all, nil)
}

func mergeFirstWith(all []*core.Item, combine func(old, it *core.Item)) []*core.Item {
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			if combine != nil {
				combine(old, it)
			}
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}

// mergeByPriority 相同 ID 时保留优先级更高的（索引更小），保持首次出现的位置。
func mergeByPriority(all []*core.Item) []*core.Item {
	idx := make(map[string]int, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		i, ok := idx[it.ID]
		if !ok {
			idx[it.ID] = len(out)
			out = append(out, it)
			continue
		}
		if priority(it) < priority(out[i]) {
			out[i] = it
		}
	}
	return out
}

func priority(it *core.Item) int {
	lbl, ok := it.Labels["recall_priority"]
	if !ok {
		return int(^uint(0) >> 1)
	}
	// 合并过的 label 形如 "0|1"，取第一个
	v := lbl.Value
	for i := 0; i < len(v); i++ {
		if v[i] == '|' {
			v = v[:i]
			break
		}
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return p
}
