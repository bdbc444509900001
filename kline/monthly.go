package kline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stockrank/model"
)

// Basis 月收益的计算口径
type Basis string

const (
	// OpenToClose (月末收盘 - 月初开盘) / 月初开盘
	OpenToClose Basis = "open_to_close"
	// CloseToClose (月末收盘 - 月初收盘) / 月初收盘
	CloseToClose Basis = "close_to_close"
)

// ParseBasis 解析配置中的口径名称
func ParseBasis(s string) (Basis, error) {
	switch Basis(s) {
	case "", OpenToClose:
		return OpenToClose, nil
	case CloseToClose:
		return CloseToClose, nil
	}
	return "", fmt.Errorf("未知的收益口径: %s", s)
}

// DefaultMinBars 单月至少需要的有效K线数
const DefaultMinBars = 2

// Options 月度收益计算参数
type Options struct {
	Basis     Basis
	MinBars   int
	FromMonth string // 含，YYYY-MM，空表示不限
	ToMonth   string // 含，YYYY-MM，空表示不限
}

func (o Options) minBars() int {
	if o.MinBars < DefaultMinBars {
		return DefaultMinBars
	}
	return o.MinBars
}

func (o Options) inRange(month string) bool {
	if o.FromMonth != "" && month < o.FromMonth {
		return false
	}
	if o.ToMonth != "" && month > o.ToMonth {
		return false
	}
	return true
}

// MonthlyReturn 单个标的单月的收益
type MonthlyReturn struct {
	Month  string  `json:"month"`
	Return float64 `json:"return"` // 百分比，保留两位小数
	Close  float64 `json:"close"`  // 月末收盘价
	Bars   int     `json:"bars"`
}

type bucket struct {
	month string
	first model.DailyBar
	last  model.DailyBar
	n     int
}

// MonthlyReturns 对按日期升序的K线做单遍折叠，每个自然月输出一条收益。
// 不会重新排序；若某月在序列后段再次出现，以首次出现的分桶为准。
func MonthlyReturns(bars []model.DailyBar, opt Options) []MonthlyReturn {
	var (
		out  []MonthlyReturn
		cur  *bucket
		seen = make(map[string]bool)
	)

	flush := func() {
		if cur == nil {
			return
		}
		if r, ok := cur.result(opt); ok {
			out = append(out, r)
		}
		cur = nil
	}

	for _, bar := range bars {
		if bar.Open <= 0 || bar.Close <= 0 {
			continue
		}
		month := bar.Month()
		if month == "" || !opt.inRange(month) {
			continue
		}
		if cur != nil && cur.month == month {
			cur.last = bar
			cur.n++
			continue
		}
		flush()
		if seen[month] {
			continue
		}
		seen[month] = true
		cur = &bucket{month: month, first: bar, last: bar, n: 1}
	}
	flush()
	return out
}

func (b *bucket) result(opt Options) (MonthlyReturn, bool) {
	if b.n < opt.minBars() {
		return MonthlyReturn{}, false
	}
	base := b.first.Open
	if opt.Basis == CloseToClose {
		base = b.first.Close
	}
	if base <= 0 {
		return MonthlyReturn{}, false
	}
	return MonthlyReturn{
		Month:  b.month,
		Return: PercentChange(base, b.last.Close),
		Close:  b.last.Close,
		Bars:   b.n,
	}, true
}

// PercentChange (to - from) / from * 100，保留两位小数
func PercentChange(from, to float64) float64 {
	f := decimal.NewFromFloat(from)
	if f.IsZero() {
		return 0
	}
	return decimal.NewFromFloat(to).Sub(f).Div(f).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// Round2 四舍五入到两位小数
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// ReturnMap 将有序的月度收益转换为 月份 -> 收益
func ReturnMap(rs []MonthlyReturn) map[string]float64 {
	m := make(map[string]float64, len(rs))
	for _, r := range rs {
		m[r.Month] = r.Return
	}
	return m
}
