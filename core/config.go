package core

// RecommendConfig 是推荐相关的配置接口，用于提供默认值。
type RecommendConfig interface {
	// DefaultTopN 返回默认的推荐数量
	DefaultTopN() int

	// DefaultPairDelimiter 返回结果文件中物品对字段的分隔符
	DefaultPairDelimiter() string
}

// DefaultRecommendConfig 是默认的推荐配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopN() int {
	return 10
}

func (c *DefaultRecommendConfig) DefaultPairDelimiter() string {
	return ", "
}

// Defaults 是包级默认配置，供未显式配置的组件使用。
var Defaults RecommendConfig = &DefaultRecommendConfig{}
