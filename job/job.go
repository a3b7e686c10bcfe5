// Package job 串联端到端批处理：
// 生成订单（可选）-> 读取订单 -> 聚合 -> 持久化结果 -> 读回 -> 推荐。
package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rushteam/cooccur/config"
	"github.com/rushteam/cooccur/config/builders"
	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/dataset"
	"github.com/rushteam/cooccur/generator"
	"github.com/rushteam/cooccur/pipeline"
	"github.com/rushteam/cooccur/pkg/logging"
	"github.com/rushteam/cooccur/pkg/metrics"
	"github.com/rushteam/cooccur/recall"
	"github.com/rushteam/cooccur/store"
)

// Result 是一次任务的摘要。
type Result struct {
	Orders int
	Pairs  int
	Target string
	// Recommendations 是推荐的物品 ID，按分数降序
	Recommendations []string
	// Items 保留分数与标签
	Items []*core.Item
}

// Run 按 Settings 执行一次完整任务。Store 在所有退出路径上都会被关闭。
func Run(ctx context.Context, s *config.Settings) (res *Result, err error) {
	st, err := store.Open(ctx, s.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("store", st.Name()).Msg("close store")
			err = errors.Join(err, cerr)
		}
	}()
	return RunWithStore(ctx, st, s)
}

// RunWithStore 与 Run 相同，但使用调用方提供的 Store（不负责关闭）。
func RunWithStore(ctx context.Context, st core.Store, s *config.Settings) (*Result, error) {
	products, err := catalog(ctx, st, s.Job)
	if err != nil {
		return nil, err
	}

	if s.Job.Generate {
		_, err := generator.GenerateToStore(ctx, st, s.Job.OrdersKey, products, generator.Options{
			NumOrders: s.Job.NumOrders,
			MaxItems:  s.Job.MaxItems,
			Seed:      s.Job.Seed,
		})
		if err != nil {
			return nil, fmt.Errorf("generate orders: %w", err)
		}
	}

	orders, err := dataset.LoadOrders(ctx, st, s.Job.OrdersKey)
	if err != nil {
		return nil, err
	}

	opts := cooccur.Options{
		Strategy:      cooccur.Strategy(s.Aggregate.Strategy),
		SelfPairs:     cooccur.SelfPairPolicy(s.Aggregate.SelfPairs),
		Shards:        s.Aggregate.Shards,
		MaxConcurrent: s.Aggregate.MaxConcurrent,
	}
	start := time.Now()
	m, err := cooccur.Aggregate(ctx, orders, opts)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	metrics.ObserveAggregation(s.Aggregate.Strategy, m.Len(), time.Since(start))
	metrics.PairObservations.Add(float64(m.Total()))
	logging.Info().
		Int("orders", len(orders)).
		Int("pairs", m.Len()).
		Str("strategy", s.Aggregate.Strategy).
		Int("shards", s.Aggregate.Shards).
		Dur("took", time.Since(start)).
		Msg("co-occurrence aggregated")

	matrixStore := recall.NewStoreMatrixAdapter(st, s.Job.ResultsKey, s.Job.PairDelimiter)
	if err := matrixStore.SaveMatrix(ctx, m); err != nil {
		return nil, err
	}
	logging.Info().Str("key", s.Job.ResultsKey).Int("pairs", m.Len()).Msg("results written")

	var stripeStore recall.StripeStore
	if s.Job.StripesPrefix != "" {
		a := recall.NewStoreStripeAdapter(st, s.Job.StripesPrefix)
		if err := a.SaveStripes(ctx, cooccur.StripesFromMatrix(m)); err != nil {
			return nil, err
		}
		stripeStore = a
	}

	// 推荐基于读回的结果，而不是内存中的矩阵
	loaded, err := matrixStore.LoadMatrix(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{Orders: len(orders), Pairs: loaded.Len(), Target: s.Job.Target}
	if s.Job.Target == "" {
		return res, nil
	}

	rctx := &core.RecommendContext{Target: s.Job.Target, TopN: s.Job.TopN}
	if s.Pipeline == "" {
		res.Items = recall.RankScored(s.Job.Target, loaded, s.Job.TopN)
	} else {
		builders.Bind(builders.Deps{
			Matrix:      loaded,
			MatrixStore: matrixStore,
			StripeStore: stripeStore,
			Store:       st,
		})
		defer builders.Unbind()
		p, err := loadPipeline(s.Pipeline)
		if err != nil {
			return nil, err
		}
		if res.Items, err = p.Run(ctx, rctx, nil); err != nil {
			return nil, err
		}
	}
	res.Recommendations = core.ItemIDs(res.Items)
	metrics.RecordRecommendation(len(res.Recommendations))

	logging.Info().
		Str("target", s.Job.Target).
		Strs("recommendations", res.Recommendations).
		Msg("recommendations")
	return res, nil
}

// catalog 优先从 Store 读取商品目录，不存在时使用配置中的列表。
func catalog(ctx context.Context, st core.Store, js config.JobSettings) ([]string, error) {
	if js.ProductsKey == "" {
		return js.Products, nil
	}
	products, err := dataset.LoadCatalog(ctx, st, js.ProductsKey)
	if core.IsStoreNotFound(err) {
		logging.Debug().Str("key", js.ProductsKey).Msg("catalog not found, using configured products")
		return js.Products, nil
	}
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return js.Products, nil
	}
	return products, nil
}

func loadPipeline(path string) (*pipeline.Pipeline, error) {
	cfg, err := pipeline.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline %s: %w", path, err)
	}
	return config.BuildPipeline(cfg)
}
