package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrank/kline"
	"stockrank/model"
)

func TestSummarize(t *testing.T) {
	tbl := NewTable()
	tbl.Add(model.Entity{Code: "BK1", Name: "煤炭行业"}, []kline.MonthlyReturn{
		mr("2023-01", 4), mr("2024-01", -2), mr("2024-02", 9),
	})
	tbl.Add(model.Entity{Code: "BK2", Name: "电力行业"}, []kline.MonthlyReturn{
		mr("2022-01", 6), mr("2023-01", 2), mr("2024-01", 1),
	})
	tbl.Add(model.Entity{Code: "BK3", Name: "银行"}, []kline.MonthlyReturn{mr("2024-01", 20)})

	sum := Summarize(tbl, 2, 5)
	require.Equal(t, 12, sum.Len())
	assert.Equal(t, "1", sum.Keys()[0])
	assert.Equal(t, "12", sum.Keys()[11])

	jan, _ := sum.Get("1")
	require.Len(t, jan, 2)
	assert.Equal(t, MonthStat{Industry: "电力行业", AvgReturn: 3, UpRatio: 100, Years: 3}, jan[0])
	assert.Equal(t, MonthStat{Industry: "煤炭行业", AvgReturn: 1, UpRatio: 50, Years: 2}, jan[1])

	feb, _ := sum.Get("2")
	assert.Empty(t, feb)
	assert.NotNil(t, feb)
}

func TestSummarizeTopN(t *testing.T) {
	tbl := NewTable()
	for i, name := range []string{"a", "b", "c"} {
		tbl.Add(model.Entity{Code: name, Name: name}, []kline.MonthlyReturn{
			mr("2023-03", float64(i)), mr("2024-03", float64(i)),
		})
	}
	mar, _ := Summarize(tbl, 2, 2).Get("3")
	require.Len(t, mar, 2)
	assert.Equal(t, "c", mar[0].Industry)
	assert.Equal(t, "b", mar[1].Industry)
}
