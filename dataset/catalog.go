package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rushteam/cooccur/core"
)

// DecodeCatalog 解析商品目录：第一行为表头，每行第一列为物品 ID。
// 重复 ID 只保留第一次出现。
func DecodeCatalog(data []byte) (products []string, skipped []error) {
	r := newReader(data)
	seen := make(map[string]struct{})
	first := true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := errLine(err)
			skipped = append(skipped, skip("catalog", core.NewParseError(core.ModuleDataset, line, err.Error())))
			continue
		}
		if isBlank(rec) {
			continue
		}
		line, _ := r.FieldPos(0)
		if first {
			first = false
			continue
		}
		id := ""
		if len(rec) > 0 {
			id = strings.TrimSpace(rec[0])
		}
		if id == "" {
			skipped = append(skipped, skip("catalog", core.NewParseError(core.ModuleDataset, line, "empty product id")))
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		products = append(products, id)
	}
	return products, skipped
}

// LoadCatalog 从 Store 读取商品目录。
func LoadCatalog(ctx context.Context, s core.Store, key string) ([]string, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	products, _ := DecodeCatalog(data)
	return products, nil
}
