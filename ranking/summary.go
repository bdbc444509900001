package ranking

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"stockrank/kline"
	"stockrank/ordered"
)

// MonthStat 某行业在某个自然月（跨年份）的历史表现
type MonthStat struct {
	Industry  string  `json:"industry"`
	AvgReturn float64 `json:"avg_return"`
	UpRatio   float64 `json:"up_ratio"` // 上涨年份占比，百分比取整
	Years     int     `json:"years"`
}

// Summarize 统计 1-12 月每个行业的平均收益，只保留至少 minYears 年数据的行业，每月取前 topN
func Summarize(t *Table, minYears, topN int) *ordered.Map[[]MonthStat] {
	out := ordered.New[[]MonthStat]()
	for cal := 1; cal <= 12; cal++ {
		suffix := fmt.Sprintf("-%02d", cal)
		var stats []MonthStat
		for i, e := range t.entities {
			var rets []float64
			for month, r := range t.returns[i] {
				if len(month) == 7 && month[4:] == suffix {
					rets = append(rets, r.Return)
				}
			}
			if len(rets) < minYears || len(rets) == 0 {
				continue
			}
			up := 0
			for _, r := range rets {
				if r > 0 {
					up++
				}
			}
			stats = append(stats, MonthStat{
				Industry:  e.Name,
				AvgReturn: kline.Round2(stat.Mean(rets, nil)),
				UpRatio:   math.Round(float64(up) / float64(len(rets)) * 100),
				Years:     len(rets),
			})
		}

		sort.SliceStable(stats, func(a, b int) bool { return stats[a].AvgReturn > stats[b].AvgReturn })
		if len(stats) > topN {
			stats = stats[:topN]
		}
		if stats == nil {
			stats = []MonthStat{}
		}
		out.Set(strconv.Itoa(cal), stats)
	}
	return out
}
