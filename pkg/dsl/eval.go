package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cooccur/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境，定义 item / label / rctx 三个变量
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的布尔表达式，线程安全，可重复求值。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score > 2.0
//   - 标签：label.recall_source == "recall.cooccurrence"
//   - 请求：item.id in rctx.basket / rctx.target == "Apple"
//   - 逻辑：label.recall_target == "Apple" && item.score >= 4.0
//
// 访问不存在的 label 会报错，可用 `"key" in label` 先检查存在性。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；空表达式恒为 true。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return &Program{}, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对单个物品求值，表达式必须返回布尔值。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if p.prg == nil {
		return true, nil
	}
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Eval 是 Label DSL 解释器，绑定一个物品和请求，便于对同一物品求值多个表达式。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 编译并执行表达式，返回布尔结果。
func (e *Eval) Evaluate(expr string) (bool, error) {
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(e.item, e.rctx)
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	if it == nil {
		it = &core.Item{}
	}
	if rctx == nil {
		rctx = &core.RecommendContext{}
	}

	labels := make(map[string]interface{}, len(it.Labels))
	labelValues := make(map[string]interface{}, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
		labelValues[k] = v.Value
	}

	meta := it.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	item := map[string]interface{}{
		"id":     it.ID,
		"score":  it.Score,
		"meta":   meta,
		"labels": labels,
	}

	basket := rctx.Basket
	if basket == nil {
		basket = []string{}
	}
	params := rctx.Params
	if params == nil {
		params = map[string]any{}
	}
	rc := map[string]interface{}{
		"target":  rctx.Target,
		"basket":  basket,
		"targets": rctx.Targets(),
		"scene":   rctx.Scene,
		"top_n":   int64(rctx.TopN),
		"params":  params,
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelValues,
		"rctx":  rc,
	}
}
