package filter

import (
	"context"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式过滤，表达式为 true 的物品被移除。
//
// 示例：
//   - `item.score < 2.0`
//   - `item.id in rctx.basket`
//   - `label.recall_target == "Apple" && item.score < 4.0`
//
// Invert 为 true 时语义相反：表达式为 true 的物品被保留。
type ExprFilter struct {
	Expr   string
	Invert bool

	prg *dsl.Program
}

// NewExprFilter 编译表达式，语法错误在此时返回。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Expr: expr, Invert: invert, prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	prg := f.prg
	if prg == nil {
		var err error
		if prg, err = dsl.Compile(f.Expr); err != nil {
			return false, err
		}
	}
	ok, err := prg.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return ok != f.Invert, nil
}
