package ranking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrank/kline"
	"stockrank/model"
)

func mr(month string, ret float64) kline.MonthlyReturn {
	return kline.MonthlyReturn{Month: month, Return: ret, Close: 10 + ret, Bars: 20}
}

func sampleTable() *Table {
	t := NewTable()
	t.Add(model.Entity{Code: "A", Name: "甲"}, []kline.MonthlyReturn{mr("2024-01", 50)})
	t.Add(model.Entity{Code: "B", Name: "乙"}, []kline.MonthlyReturn{mr("2024-01", 30), mr("2024-02", 1)})
	t.Add(model.Entity{Code: "C", Name: "丙"}, []kline.MonthlyReturn{mr("2024-01", 30)})
	t.Add(model.Entity{Code: "D", Name: "丁"}, []kline.MonthlyReturn{mr("2024-01", 10)})
	return t
}

func codes(entries []model.RankedEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Code
	}
	return out
}

func TestRankMonthTopKWithInsertionTieBreak(t *testing.T) {
	got := RankMonth(sampleTable(), "2024-01", Options{K: 3})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "B", "C"}, codes(got))
	assert.Equal(t, 50.0, got[0].Return)
	assert.Equal(t, 30.0, got[1].Return)
}

func TestRankMonthTieBreakFollowsInsertion(t *testing.T) {
	tbl := NewTable()
	tbl.Add(model.Entity{Code: "Z", Name: "z"}, []kline.MonthlyReturn{mr("2024-01", 5)})
	tbl.Add(model.Entity{Code: "Y", Name: "y"}, []kline.MonthlyReturn{mr("2024-01", 5)})

	assert.Equal(t, []string{"Z", "Y"}, codes(RankMonth(tbl, "2024-01", Options{})))
	assert.Equal(t, []string{"Y", "Z"}, codes(RankMonth(tbl, "2024-01", Options{TieBreakByCode: true})))
}

func TestRankDeterministic(t *testing.T) {
	a, err := json.Marshal(Rank(sampleTable(), Options{}))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		b, err := json.Marshal(Rank(sampleTable(), Options{}))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}
}

func TestRankMonthModes(t *testing.T) {
	tbl := sampleTable()

	only := Rank(tbl, Options{Months: []string{"2023-12", "2024-01", "2024-02"}})
	assert.Equal(t, []string{"2024-01", "2024-02"}, only.Keys())

	all := Rank(tbl, Options{Months: []string{"2023-12", "2024-01", "2024-02"}, IncludeEmpty: true})
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, all.Keys())
	empty, _ := all.Get("2023-12")
	raw, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestRankWithPriceAndLabel(t *testing.T) {
	got := RankMonth(sampleTable(), "2024-02", Options{WithPrice: true})
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Price)
	assert.Equal(t, 11.0, *got[0].Price)

	ind := RankMonth(sampleTable(), "2024-01", Options{K: 1, Label: model.LabelIndustry})
	raw, err := json.Marshal(ind)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"industry":"甲","return":50}]`, string(raw))
}

func TestTableDuplicateAndEmpty(t *testing.T) {
	tbl := NewTable()
	assert.True(t, tbl.Add(model.Entity{Code: "600519", Name: "贵州茅台"}, []kline.MonthlyReturn{mr("2024-01", 1)}))
	assert.False(t, tbl.Add(model.Entity{Code: "600519", Name: "重复"}, []kline.MonthlyReturn{mr("2024-01", 9)}))
	assert.False(t, tbl.Add(model.Entity{Code: "000001", Name: "平安银行"}, nil))
	assert.Equal(t, 1, tbl.Len())

	r, ok := tbl.Return("600519", "2024-01")
	require.True(t, ok)
	assert.Equal(t, 1.0, r.Return)
}

func TestByNameOrdersMonths(t *testing.T) {
	tbl := NewTable()
	tbl.Add(model.Entity{Code: "BK1", Name: "半导体"}, []kline.MonthlyReturn{mr("2024-02", 2), mr("2023-11", -1)})
	tbl.Add(model.Entity{Code: "BK2", Name: "酿酒行业"}, []kline.MonthlyReturn{mr("2024-01", 3)})

	raw, err := json.Marshal(tbl.ByName())
	require.NoError(t, err)
	assert.Equal(t, `{"半导体":{"2023-11":-1,"2024-02":2},"酿酒行业":{"2024-01":3}}`, string(raw))
}
