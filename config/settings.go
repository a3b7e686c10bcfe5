package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pkg/logging"
	"github.com/rushteam/cooccur/store"
)

// EnvPrefix 是环境变量前缀，例如 COOCCUR_JOB_TARGET -> job.target。
const EnvPrefix = "COOCCUR_"

// Settings 是进程级配置：存储、日志、批处理任务与聚合参数。
//
// 加载优先级（后者覆盖前者）：结构体默认值 < YAML 文件 < 环境变量 < 命令行覆盖。
type Settings struct {
	Store     store.Config      `koanf:"store"`
	Log       logging.Config    `koanf:"log"`
	Job       JobSettings       `koanf:"job"`
	Aggregate AggregateSettings `koanf:"aggregate"`

	// Pipeline 是可选的推荐 Pipeline 配置文件（YAML/JSON），为空时直接按共现计数排序（recall.RankScored）
	Pipeline string `koanf:"pipeline"`
}

// JobSettings 描述一次端到端任务的输入输出。
type JobSettings struct {
	ProductsKey   string   `koanf:"products_key"`
	Products      []string `koanf:"products"`
	OrdersKey     string   `koanf:"orders_key" validate:"required"`
	ResultsKey    string   `koanf:"results_key" validate:"required"`
	StripesPrefix string   `koanf:"stripes_prefix"`
	PairDelimiter string   `koanf:"pair_delimiter" validate:"required"`

	Generate  bool  `koanf:"generate"`
	NumOrders int   `koanf:"num_orders" validate:"gte=0"`
	MaxItems  int   `koanf:"max_items" validate:"gte=1"`
	Seed      int64 `koanf:"seed"`

	Target string `koanf:"target"`
	TopN   int    `koanf:"top_n" validate:"gte=0"`
}

// AggregateSettings 对应 cooccur.Options。
type AggregateSettings struct {
	Strategy      string `koanf:"strategy" validate:"oneof=pairwise stripes"`
	SelfPairs     string `koanf:"self_pairs" validate:"oneof=drop keep"`
	Shards        int    `koanf:"shards" validate:"gte=0"`
	MaxConcurrent int    `koanf:"max_concurrent" validate:"gte=0"`
}

// Default 返回默认配置：本地文件存储，生成 100 个订单，为 Apple 推荐 10 个商品。
func Default() Settings {
	log := logging.DefaultConfig()
	log.Output = nil
	return Settings{
		Store: store.Config{Backend: store.BackendFile, Path: "./data"},
		Log:   log,
		Job: JobSettings{
			ProductsKey:   "/products.csv",
			Products:      []string{"Apple", "Banana", "Cherry", "Date", "Elderberry"},
			OrdersKey:     "/orders.csv",
			ResultsKey:    "/cross_correlation_results.csv",
			StripesPrefix: "",
			PairDelimiter: core.Defaults.DefaultPairDelimiter(),
			Generate:      true,
			NumOrders:     100,
			MaxItems:      5,
			Target:        "Apple",
			TopN:          core.Defaults.DefaultTopN(),
		},
		Aggregate: AggregateSettings{
			Strategy:  "pairwise",
			SelfPairs: "drop",
		},
	}
}

var validate = validator.New()

// Validate 校验结构体标签约束以及跨字段约束。
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "config: invalid settings", err)
	}
	if s.Aggregate.Strategy == "stripes" && s.Aggregate.SelfPairs == "keep" {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			"config: aggregate.self_pairs=keep is only supported by the pairwise strategy")
	}
	if s.Store.Backend != store.BackendMemory && s.Store.Backend != store.BackendRedis &&
		s.Store.Backend != store.BackendBadger && strings.TrimSpace(s.Store.Path) == "" {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("config: store.path is required for backend %q", s.Store.Backend))
	}
	return nil
}

// Load 按层加载配置。path 为空时跳过文件层；overrides 的 key 为 koanf 路径（如 "job.top_n"）。
func Load(path string, overrides map[string]any) (*Settings, error) {
	k := koanf.New(".")

	// Layer 1: 默认值
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: YAML 文件（可选）
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Layer 3: 环境变量
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}
	if err := splitListField(k, "job.products"); err != nil {
		return nil, err
	}

	// Layer 4: 命令行覆盖
	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("override %s: %w", key, err)
		}
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var sections = []string{"store", "log", "job", "aggregate"}

// envTransform 把环境变量名转换为 koanf 路径：
//   - COOCCUR_STORE_BACKEND -> store.backend
//   - COOCCUR_JOB_MAX_ITEMS -> job.max_items
//   - COOCCUR_PIPELINE -> pipeline
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			return s + "." + strings.TrimPrefix(key, s+"_")
		}
	}
	return key
}

// splitListField 把环境变量中逗号分隔的字符串转成列表。
func splitListField(k *koanf.Koanf, path string) error {
	v, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return errors.New("config: job.products is empty")
	}
	return k.Set(path, parts)
}
