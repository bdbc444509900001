package ranking

import (
	"sort"

	"stockrank/model"
	"stockrank/ordered"
)

// DefaultK 每月默认取前3
const DefaultK = 3

// Options 排名参数
type Options struct {
	K int
	// Months 需要输出的月份；为空时取表中出现过的全部月份
	Months []string
	// IncludeEmpty 为 true 时 Months 中没有任何数据的月份也输出空列表
	IncludeEmpty bool
	// WithPrice 条目附带月末收盘价作为参考价
	WithPrice bool
	// Label 条目形态（个股 / 行业 / 板块）
	Label model.EntryLabel
	// TieBreakByCode 收益相同时按代码升序，否则按插入顺序
	TieBreakByCode bool
}

func (o Options) k() int {
	if o.K <= 0 {
		return DefaultK
	}
	return o.K
}

// RankMonth 某月收益降序的前K名，收益相同保持插入顺序
func RankMonth(t *Table, month string, opt Options) []model.RankedEntry {
	entries := make([]model.RankedEntry, 0, len(t.entities))
	for i, e := range t.entities {
		r, ok := t.returns[i][month]
		if !ok {
			continue
		}
		entry := model.RankedEntry{
			Code:   e.Code,
			Name:   e.Name,
			Return: r.Return,
			Label:  opt.Label,
		}
		if opt.WithPrice {
			price := r.Close
			entry.Price = &price
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Return != entries[b].Return {
			return entries[a].Return > entries[b].Return
		}
		if opt.TieBreakByCode {
			return entries[a].Code < entries[b].Code
		}
		return false
	})

	if k := opt.k(); len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// Rank 逐月排名，按月份升序输出
func Rank(t *Table, opt Options) *ordered.Map[[]model.RankedEntry] {
	months := opt.Months
	if len(months) == 0 {
		months = t.Months()
	}

	out := ordered.New[[]model.RankedEntry]()
	for _, month := range months {
		entries := RankMonth(t, month, opt)
		if len(entries) == 0 && !opt.IncludeEmpty {
			continue
		}
		out.Set(month, entries)
	}
	return out
}
