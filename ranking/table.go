// Package ranking 按月对标的收益排序并截取 Top-K
package ranking

import (
	"sort"

	"stockrank/kline"
	"stockrank/model"
	"stockrank/ordered"
)

// Table 标的 -> 月份 -> 收益，按插入顺序保存标的
type Table struct {
	entities []model.Entity
	index    map[string]int
	returns  []map[string]kline.MonthlyReturn
}

// NewTable 创建空表
func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Add 追加一个标的的月度收益。代码重复时保留先加入的一条；没有任何月份时不加入。
func (t *Table) Add(e model.Entity, rs []kline.MonthlyReturn) bool {
	if len(rs) == 0 {
		return false
	}
	if _, dup := t.index[e.Code]; dup {
		return false
	}
	m := make(map[string]kline.MonthlyReturn, len(rs))
	for _, r := range rs {
		if _, ok := m[r.Month]; !ok {
			m[r.Month] = r
		}
	}
	t.index[e.Code] = len(t.entities)
	t.entities = append(t.entities, e)
	t.returns = append(t.returns, m)
	return true
}

// Len 已加入的标的数
func (t *Table) Len() int {
	return len(t.entities)
}

// Entities 按插入顺序返回标的
func (t *Table) Entities() []model.Entity {
	return append([]model.Entity(nil), t.entities...)
}

// Return 查询某标的某月收益
func (t *Table) Return(code, month string) (kline.MonthlyReturn, bool) {
	i, ok := t.index[code]
	if !ok {
		return kline.MonthlyReturn{}, false
	}
	r, ok := t.returns[i][month]
	return r, ok
}

// Months 所有标的出现过的月份，升序
func (t *Table) Months() []string {
	set := make(map[string]struct{})
	for _, m := range t.returns {
		for month := range m {
			set[month] = struct{}{}
		}
	}
	months := make([]string, 0, len(set))
	for month := range set {
		months = append(months, month)
	}
	sort.Strings(months)
	return months
}

// ByName 生成 名称 -> (月份升序 -> 收益) 的有序表，用于 industry_returns / board_returns
func (t *Table) ByName() *ordered.Map[*ordered.Map[float64]] {
	out := ordered.New[*ordered.Map[float64]]()
	for i, e := range t.entities {
		months := make([]string, 0, len(t.returns[i]))
		for month := range t.returns[i] {
			months = append(months, month)
		}
		sort.Strings(months)

		row := ordered.New[float64]()
		for _, month := range months {
			row.Set(month, t.returns[i][month].Return)
		}
		if _, exists := out.Get(e.Name); !exists {
			out.Set(e.Name, row)
		}
	}
	return out
}
