package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rushteam/cooccur/core"
)

// ResultsHeader 是共现结果文件的表头。
var ResultsHeader = []string{"Product Pair", "Count"}

// EncodeResults 生成共现结果文件：物品对以 delim 拼接在同一个字段中。
// 物品 ID 为空或包含 delim 时无法无损还原，直接报错。
func EncodeResults(pairs []core.PairCount, delim string) ([]byte, error) {
	if delim == "" {
		delim = core.Defaults.DefaultPairDelimiter()
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ResultsHeader); err != nil {
		return nil, err
	}
	for _, p := range pairs {
		field, err := JoinPair(p.Key, delim)
		if err != nil {
			return nil, err
		}
		if err := w.Write([]string{field, strconv.FormatInt(p.Count, 10)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeResults 解析共现结果文件，记录顺序与文件顺序一致。
func DecodeResults(data []byte, delim string) (pairs []core.PairCount, skipped []error) {
	if delim == "" {
		delim = core.Defaults.DefaultPairDelimiter()
	}
	r := newReader(data)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := errLine(err)
			skipped = append(skipped, skip("results", core.NewParseError(core.ModuleDataset, line, err.Error())))
			continue
		}
		if isBlank(rec) {
			continue
		}
		line, _ := r.FieldPos(0)
		if isHeader(rec, ResultsHeader) {
			continue
		}
		if len(rec) != 2 {
			skipped = append(skipped, skip("results", core.NewParseError(core.ModuleDataset, line,
				fmt.Sprintf("expected 2 fields, got %d", len(rec)))))
			continue
		}
		key, ok := SplitPair(rec[0], delim)
		if !ok {
			skipped = append(skipped, skip("results", core.NewParseError(core.ModuleDataset, line,
				fmt.Sprintf("ambiguous pair field %q", rec[0]))))
			continue
		}
		count, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil || count < 0 {
			skipped = append(skipped, skip("results", core.NewParseError(core.ModuleDataset, line,
				fmt.Sprintf("invalid count %q", rec[1]))))
			continue
		}
		pairs = append(pairs, core.PairCount{Key: key, Count: count})
	}
	return pairs, skipped
}

// JoinPair 将 PairKey 序列化为 "a<delim>b"。
func JoinPair(key core.PairKey, delim string) (string, error) {
	for _, it := range []string{key.A, key.B} {
		if it == "" || strings.Contains(it, delim) {
			return "", core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
				fmt.Sprintf("dataset: item %q cannot be joined with delimiter %q", it, delim))
		}
	}
	return key.A + delim + key.B, nil
}

// SplitPair 是 JoinPair 的逆操作，必须恰好拆出两个非空部分。
func SplitPair(field, delim string) (core.PairKey, bool) {
	parts := strings.Split(field, delim)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return core.PairKey{}, false
	}
	return core.PairKey{A: parts[0], B: parts[1]}, true
}

// LoadResults 从 Store 读取共现结果文件。
func LoadResults(ctx context.Context, s core.Store, key, delim string) ([]core.PairCount, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	pairs, _ := DecodeResults(data, delim)
	return pairs, nil
}

// SaveResults 编码并覆盖写入共现结果文件。
func SaveResults(ctx context.Context, s core.Store, key, delim string, pairs []core.PairCount) error {
	data, err := EncodeResults(pairs, delim)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}
