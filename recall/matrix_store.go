package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/cooccur/cooccur"
	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/dataset"
)

// DefaultResultsKey 是共现结果文件的默认 key。
const DefaultResultsKey = "/cross_correlation_results.csv"

// MatrixStore 是共现矩阵的持久化接口。
type MatrixStore interface {
	SaveMatrix(ctx context.Context, m *cooccur.Matrix) error
	LoadMatrix(ctx context.Context) (*cooccur.Matrix, error)
}

// StoreMatrixAdapter 是基于 core.Store 的矩阵存储适配器：
// 以结果 CSV（"Product Pair,Count"）的形式整体写入 Key。
// 读回时保持文件中的记录顺序，排序并列项因此与写入前一致。
type StoreMatrixAdapter struct {
	store core.Store

	// Key 是结果文件的存储 key
	Key string
	// Delimiter 是物品对字段内的分隔符，默认 ", "
	Delimiter string
}

// NewStoreMatrixAdapter 创建矩阵存储适配器，key / delim 为空时使用默认值。
func NewStoreMatrixAdapter(s core.Store, key, delim string) *StoreMatrixAdapter {
	if key == "" {
		key = DefaultResultsKey
	}
	if delim == "" {
		delim = core.Defaults.DefaultPairDelimiter()
	}
	return &StoreMatrixAdapter{store: s, Key: key, Delimiter: delim}
}

func (a *StoreMatrixAdapter) SaveMatrix(ctx context.Context, m *cooccur.Matrix) error {
	return dataset.SaveResults(ctx, a.store, a.Key, a.Delimiter, m.Pairs())
}

// LoadMatrix 读回矩阵；结果文件不存在时返回 ErrStoreNotFound（可用 core.IsStoreNotFound 判断）。
func (a *StoreMatrixAdapter) LoadMatrix(ctx context.Context) (*cooccur.Matrix, error) {
	pairs, err := dataset.LoadResults(ctx, a.store, a.Key, a.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("load matrix: %w", err)
	}
	return cooccur.MatrixFromPairs(pairs), nil
}

func (a *StoreMatrixAdapter) Name() string {
	return "store_matrix_adapter"
}

var _ MatrixStore = (*StoreMatrixAdapter)(nil)
