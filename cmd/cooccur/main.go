// Command cooccur 是共现推荐的批处理入口：
//
//  1. 配置：结构体默认值 < YAML（-config）< 环境变量 COOCCUR_* < 命令行参数
//  2. 生成订单（-generate）并写入订单文件
//  3. 读取订单，聚合共现矩阵（-strategy、-shards）
//  4. 写出结果文件 cross_correlation_results.csv 并读回
//  5. 为 -target 推荐 -top 个商品
//
// 示例：
//
//	cooccur -generate -orders 1000 -max-items 5 -target Apple -top 5
//	COOCCUR_STORE_BACKEND=badger COOCCUR_STORE_PATH=/var/lib/cooccur cooccur -config cooccur.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rushteam/cooccur/config"
	"github.com/rushteam/cooccur/job"
	"github.com/rushteam/cooccur/pkg/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("cooccur failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("cooccur", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "YAML 配置文件路径")
		products   = fs.String("products", "", "逗号分隔的商品目录，覆盖 job.products")
		numOrders  = fs.Int("orders", 0, "生成的订单数量")
		maxItems   = fs.Int("max-items", 0, "单个订单的最大商品数")
		target     = fs.String("target", "", "推荐目标商品")
		top        = fs.Int("top", 0, "推荐数量")
		generate   = fs.Bool("generate", false, "运行前生成合成订单")
		strategy   = fs.String("strategy", "", "聚合策略：pairwise | stripes")
		shards     = fs.Int("shards", 0, "并发聚合的分片数")
		backend    = fs.String("store", "", "存储后端：memory | file | redis | badger | sqlite")
		dataPath   = fs.String("data", "", "存储路径（file 根目录 / badger 目录 / sqlite 文件）")
		pipe       = fs.String("pipeline", "", "推荐 Pipeline 配置文件（YAML/JSON）")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 只覆盖显式传入的参数
	overrides := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "products":
			overrides["job.products"] = splitList(*products)
		case "orders":
			overrides["job.num_orders"] = *numOrders
		case "max-items":
			overrides["job.max_items"] = *maxItems
		case "target":
			overrides["job.target"] = *target
		case "top":
			overrides["job.top_n"] = *top
		case "generate":
			overrides["job.generate"] = *generate
		case "strategy":
			overrides["aggregate.strategy"] = *strategy
		case "shards":
			overrides["aggregate.shards"] = *shards
		case "store":
			overrides["store.backend"] = *backend
		case "data":
			overrides["store.path"] = *dataPath
		case "pipeline":
			overrides["pipeline"] = *pipe
		}
	})

	settings, err := config.Load(*configPath, overrides)
	if err != nil {
		return err
	}
	logging.Init(settings.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := job.Run(ctx, settings)
	if err != nil {
		return err
	}
	if res.Target != "" {
		fmt.Printf("Recommendations for %s: %v\n", res.Target, res.Recommendations)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
