package builders

import (
	"fmt"
	"sync"
	"time"

	"github.com/rushteam/cooccur/config"
	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/filter"
	"github.com/rushteam/cooccur/pipeline"
	"github.com/rushteam/cooccur/pkg/conv"
	"github.com/rushteam/cooccur/recall"
	"github.com/rushteam/cooccur/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.sort", BuildSortNode)
}

// Deps 是召回 Node 需要的运行时依赖，无法从配置文件中构建。
type Deps struct {
	// Matrix 是已加载的共现矩阵，优先于 MatrixStore
	Matrix      *cooccur.Matrix
	MatrixStore recall.MatrixStore
	StripeStore recall.StripeStore

	// Store 供 blacklist 过滤器按 key 读取黑名单
	Store core.Store
}

var (
	deps   Deps
	depsMu sync.RWMutex
)

// Bind 注入运行时依赖并注册 recall.cooccurrence / recall.stripe / recall.fanout。
// 可重复调用，后一次覆盖前一次。
func Bind(d Deps) {
	depsMu.Lock()
	deps = d
	depsMu.Unlock()

	config.Register("recall.cooccurrence", BuildCoOccurrenceNode)
	config.Register("recall.stripe", BuildStripeNode)
	config.Register("recall.fanout", BuildFanoutNode)
}

// Unbind 清空已注入的依赖，之后构建 recall 节点会报未绑定错误。
// 依赖中的 Store 被关闭前应调用。
func Unbind() {
	depsMu.Lock()
	deps = Deps{}
	depsMu.Unlock()
}

func bound() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

func BuildCoOccurrenceNode(cfg map[string]interface{}) (pipeline.Node, error) {
	src, err := buildCoOccurrence(cfg)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func buildCoOccurrence(cfg map[string]interface{}) (*recall.CoOccurrence, error) {
	d := bound()
	if d.Matrix == nil && d.MatrixStore == nil {
		return nil, fmt.Errorf("recall.cooccurrence: no matrix bound (call builders.Bind)")
	}
	return &recall.CoOccurrence{
		Matrix: d.Matrix,
		Store:  d.MatrixStore,
		TopN:   int(conv.ConfigGetInt64(cfg, "top_n", 0)),
	}, nil
}

func BuildStripeNode(cfg map[string]interface{}) (pipeline.Node, error) {
	src, err := buildStripe(cfg)
	if err != nil {
		return nil, err
	}
	return src, nil
}

func buildStripe(cfg map[string]interface{}) (*recall.StripeLookup, error) {
	d := bound()
	if d.StripeStore == nil {
		return nil, fmt.Errorf("recall.stripe: no stripe store bound (call builders.Bind)")
	}
	return &recall.StripeLookup{
		Store: d.StripeStore,
		TopN:  int(conv.ConfigGetInt64(cfg, "top_n", 0)),
	}, nil
}

func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "cooccurrence":
			src, err := buildCoOccurrence(sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		case "stripe":
			src, err := buildStripe(sourceMap)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}
	fanout := &recall.Fanout{
		Sources:       sources,
		PerTarget:     conv.ConfigGet(cfg, "per_target", false),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", recall.MergeSum),
	}
	if ms := conv.ConfigGetInt64(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	switch fanout.MergeStrategy {
	case recall.MergeSum, recall.MergeFirst, recall.MergeUnion, recall.MergePriority:
	default:
		return nil, fmt.Errorf("unknown merge strategy: %s", fanout.MergeStrategy)
	}
	return fanout, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func BuildSortNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.SortNode{Ascending: conv.ConfigGet(cfg, "ascending", false)}, nil
}

func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["item_ids"])
			key := conv.ConfigGet(filterMap, "key", "")
			var adapter *filter.StoreAdapter
			if s := bound().Store; s != nil && key != "" {
				adapter = filter.NewStoreAdapter(s)
			}
			filters = append(filters, filter.NewBlacklistFilter(ids, adapter, key))
		case "target":
			filters = append(filters, filter.NewTargetFilter())
		case "min_score":
			filters = append(filters, filter.NewMinScoreFilter(conv.ConfigGetFloat64(filterMap, "min", 0)))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""), conv.ConfigGet(filterMap, "invert", false))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
