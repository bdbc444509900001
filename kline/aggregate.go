package kline

import (
	"gonum.org/v1/gonum/stat"
)

// OutlierFilter 跨标的求平均时剔除异常收益（停牌、除权等造成的极端值）
type OutlierFilter struct {
	Min             float64 // 开区间下界
	Max             float64 // 开区间上界
	MinContributors int     // 过滤后至少需要的样本数
}

// DefaultOutlierFilter 收益落在 (-99, 200) 之外剔除，至少3个样本
var DefaultOutlierFilter = OutlierFilter{Min: -99, Max: 200, MinContributors: 3}

// Keep 判断单个收益是否参与平均
func (f OutlierFilter) Keep(r float64) bool {
	return r > f.Min && r < f.Max
}

// Average 过滤后求均值（两位小数）；样本不足时 ok=false
func (f OutlierFilter) Average(returns []float64) (avg float64, n int, ok bool) {
	kept := make([]float64, 0, len(returns))
	for _, r := range returns {
		if f.Keep(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 || len(kept) < f.MinContributors {
		return 0, len(kept), false
	}
	return Round2(stat.Mean(kept, nil)), len(kept), true
}
