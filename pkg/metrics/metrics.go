// Package metrics 定义共现计算与推荐链路的 Prometheus 指标。
//
// 指标在包初始化时通过 promauto 注册到默认 Registry，
// 由调用方决定是否通过 promhttp 暴露或在批处理结束时 Gather。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersIngested 读入的有效订单数。
	OrdersIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cooccur_orders_ingested_total",
		Help: "Total number of orders decoded from the order store",
	})

	// RecordsSkipped 被跳过的记录数，按来源（orders / catalog / results）区分。
	RecordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cooccur_records_skipped_total",
		Help: "Total number of malformed records skipped during ingestion",
	}, []string{"dataset"})

	// PairObservations map 阶段产生的物品对观测数。
	PairObservations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cooccur_pair_observations_total",
		Help: "Total number of pair observations emitted by the extractor",
	})

	// MatrixPairs 最近一次聚合得到的 PairKey 数量。
	MatrixPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cooccur_matrix_pairs",
		Help: "Number of distinct pair keys in the latest co-occurrence matrix",
	})

	// AggregationDuration 聚合耗时，按策略区分。
	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cooccur_aggregation_duration_seconds",
		Help:    "Duration of co-occurrence aggregation in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"strategy"})

	// RecommendationsServed 推荐请求数，按结果是否为空区分。
	RecommendationsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cooccur_recommendations_total",
		Help: "Total number of recommendation queries",
	}, []string{"result"})
)

// RecordSkipped 记录一条被跳过的记录。
func RecordSkipped(dataset string) {
	RecordsSkipped.WithLabelValues(dataset).Inc()
}

// ObserveAggregation 记录一次聚合。
func ObserveAggregation(strategy string, pairs int, d time.Duration) {
	AggregationDuration.WithLabelValues(strategy).Observe(d.Seconds())
	MatrixPairs.Set(float64(pairs))
}

// RecordRecommendation 记录一次推荐查询。
func RecordRecommendation(n int) {
	if n == 0 {
		RecommendationsServed.WithLabelValues("empty").Inc()
		return
	}
	RecommendationsServed.WithLabelValues("hit").Inc()
}
