package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rushteam/cooccur/core"
	"github.com/rushteam/cooccur/pkg/logging"
	"github.com/rushteam/cooccur/pkg/metrics"
)

const (
	// ItemSeparator 是订单内物品之间的分隔符
	ItemSeparator = ";"
)

// OrdersHeader 是订单文件的表头。
var OrdersHeader = []string{"Order ID", "Items"}

// DecodeOrders 解析订单文件。
// 空行与表头被跳过；字段数不为 2 的记录记录日志后跳过，并在 skipped 中返回。
func DecodeOrders(data []byte) (orders []core.Order, skipped []error) {
	r := newReader(data)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := errLine(err)
			skipped = append(skipped, skip("orders", core.NewParseError(core.ModuleDataset, line, err.Error())))
			continue
		}
		if isBlank(rec) {
			continue
		}
		line, _ := r.FieldPos(0)
		if isHeader(rec, OrdersHeader) {
			continue
		}
		if len(rec) != 2 {
			skipped = append(skipped, skip("orders", core.NewParseError(core.ModuleDataset, line,
				fmt.Sprintf("expected 2 fields, got %d", len(rec)))))
			continue
		}
		orders = append(orders, core.Order{
			ID:    strings.TrimSpace(rec[0]),
			Items: splitItems(rec[1]),
		})
	}
	metrics.OrdersIngested.Add(float64(len(orders)))
	return orders, skipped
}

// EncodeOrders 生成订单文件（含表头）。
func EncodeOrders(orders []core.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(OrdersHeader); err != nil {
		return nil, err
	}
	for _, o := range orders {
		for _, it := range o.Items {
			if strings.Contains(it, ItemSeparator) {
				return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidInput,
					fmt.Sprintf("dataset: item %q in order %s contains %q", it, o.ID, ItemSeparator))
			}
		}
		if err := w.Write([]string{o.ID, strings.Join(o.Items, ItemSeparator)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadOrders 从 Store 读取并解析订单文件。
func LoadOrders(ctx context.Context, s core.Store, key string) ([]core.Order, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	orders, skipped := DecodeOrders(data)
	logging.Info().
		Str("key", key).
		Int("orders", len(orders)).
		Int("skipped", len(skipped)).
		Msg("orders loaded")
	return orders, nil
}

// SaveOrders 编码并覆盖写入订单文件。
func SaveOrders(ctx context.Context, s core.Store, key string, orders []core.Order) error {
	data, err := EncodeOrders(orders)
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save orders: %w", err)
	}
	return nil
}

func splitItems(field string) []string {
	parts := strings.Split(field, ItemSeparator)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func newReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false
	return r
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// errLine 从 csv.ParseError 中取出行号，取不到时为 0
func errLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

func isHeader(rec, header []string) bool {
	if len(rec) != len(header) {
		return false
	}
	for i := range rec {
		if strings.TrimSpace(rec[i]) != header[i] {
			return false
		}
	}
	return true
}

func skip(dataset string, err *core.DomainError) error {
	metrics.RecordSkipped(dataset)
	logging.Warn().Err(err).Str("dataset", dataset).Msg("record skipped")
	return err
}
