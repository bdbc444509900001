// Package kline 负责日K线的规范化与月度收益计算
package kline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockrank/model"
)

var (
	// ErrNonPositivePrice 开盘价或收盘价不为正
	ErrNonPositivePrice = errors.New("kline: 非正价格")
	// ErrMalformedBar 原始K线结构不符合预期
	ErrMalformedBar = errors.New("kline: K线格式错误")
)

var dateLayouts = []string{"2006-01-02", "20060102", "2006/01/02"}

// Columns 具名列数据源的字段映射
type Columns struct {
	Date   string
	Open   string
	Close  string
	High   string
	Low    string
	Volume string
	Amount string
}

// SinaColumns 新浪 getKLineData 接口的字段名
var SinaColumns = Columns{
	Date:   "day",
	Open:   "open",
	Close:  "close",
	High:   "high",
	Low:    "low",
	Volume: "volume",
}

// FromPositional 解析位置数组 [日期, 开, 收, 高, 低, 量, ...]（腾讯 fqkline）
func FromPositional(raw []any) (model.DailyBar, error) {
	if len(raw) < 6 {
		return model.DailyBar{}, fmt.Errorf("%w: 字段数量不足 %d", ErrMalformedBar, len(raw))
	}
	date, ok := raw[0].(string)
	if !ok {
		return model.DailyBar{}, fmt.Errorf("%w: 日期类型 %T", ErrMalformedBar, raw[0])
	}
	return build(date, raw[1], raw[2], raw[3], raw[4], raw[5], nil)
}

// FromDelimited 解析分隔字符串 "日期,开,收,高,低,量[,额]"（东方财富）
func FromDelimited(line, sep string) (model.DailyBar, error) {
	parts := strings.Split(line, sep)
	if len(parts) < 6 {
		return model.DailyBar{}, fmt.Errorf("%w: 字段数量不足 %d", ErrMalformedBar, len(parts))
	}
	var amount any
	if len(parts) > 6 {
		amount = parts[6]
	}
	return build(parts[0], parts[1], parts[2], parts[3], parts[4], parts[5], amount)
}

// FromRecord 按列名解析一条记录（新浪等具名列数据源）
func FromRecord(rec map[string]any, cols Columns) (model.DailyBar, error) {
	date, ok := rec[cols.Date].(string)
	if !ok {
		return model.DailyBar{}, fmt.Errorf("%w: 缺少日期列 %q", ErrMalformedBar, cols.Date)
	}
	var amount any
	if cols.Amount != "" {
		amount = rec[cols.Amount]
	}
	return build(date, rec[cols.Open], rec[cols.Close], rec[cols.High], rec[cols.Low], rec[cols.Volume], amount)
}

// Normalize 批量规范化，返回有效K线与被拒绝的条数
func Normalize[T any](raws []T, parse func(T) (model.DailyBar, error)) ([]model.DailyBar, int) {
	bars := make([]model.DailyBar, 0, len(raws))
	rejected := 0
	for _, raw := range raws {
		bar, err := parse(raw)
		if err != nil {
			rejected++
			continue
		}
		bars = append(bars, bar)
	}
	return bars, rejected
}

func build(date string, open, close, high, low, volume, amount any) (model.DailyBar, error) {
	day, err := canonicalDate(date)
	if err != nil {
		return model.DailyBar{}, err
	}
	o, err := toDecimal(open)
	if err != nil {
		return model.DailyBar{}, fmt.Errorf("%w: open: %v", ErrMalformedBar, err)
	}
	c, err := toDecimal(close)
	if err != nil {
		return model.DailyBar{}, fmt.Errorf("%w: close: %v", ErrMalformedBar, err)
	}
	if !o.IsPositive() || !c.IsPositive() {
		return model.DailyBar{}, fmt.Errorf("%w: %s open=%s close=%s", ErrNonPositivePrice, day, o, c)
	}

	return model.DailyBar{
		Date:   day,
		Open:   o.InexactFloat64(),
		Close:  c.InexactFloat64(),
		High:   optional(high),
		Low:    optional(low),
		Volume: optional(volume),
		Amount: optional(amount),
	}, nil
}

func canonicalDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: 无法识别的日期 %q", ErrMalformedBar, s)
}

// toDecimal 将字符串或数字强制转换为 decimal
func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case nil:
		return decimal.Zero, errors.New("缺失")
	default:
		return decimal.Zero, fmt.Errorf("不支持的类型 %T", v)
	}
}

// optional 非关键字段解析失败时记为0
func optional(v any) float64 {
	if v == nil {
		return 0
	}
	d, err := toDecimal(v)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
