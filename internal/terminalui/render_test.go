package terminalui

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockrank/artifact"
	"stockrank/model"
	"stockrank/ordered"
)

func monthlyDoc(months int) *artifact.Document {
	m := ordered.New[[]model.RankedEntry]()
	for i := 1; i <= months; i++ {
		m.Set(fmt.Sprintf("2024-%02d", i), []model.RankedEntry{
			{Code: "600519", Name: "贵州茅台", Return: float64(i), Theme: "白酒"},
			{Code: "000001", Name: "平安银行", Return: -1.5},
		})
	}
	return &artifact.Document{UpdateTime: "2024-09-01 16:00:00", DataSource: "腾讯财经", MonthlyMonsters: m}
}

func TestRenderShowsLastMonths(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Preview{Title: "妖股排行", Document: monthlyDoc(8), NoColor: true})
	out := buf.String()

	assert.Contains(t, out, "妖股排行  2024-09-01 16:00:00")
	assert.Contains(t, out, "数据来源: 腾讯财经")
	assert.NotContains(t, out, "2024-02")
	assert.Contains(t, out, "2024-03")
	assert.Contains(t, out, "2024-08")
	assert.Contains(t, out, " +8.00%")
	assert.Contains(t, out, " -1.50%")
	assert.Contains(t, out, "白酒")
	assert.NotContains(t, out, "\033[")
}

func TestRenderBoardEntriesWithColor(t *testing.T) {
	m := ordered.New[[]model.RankedEntry]()
	m.Set("2024-01", []model.RankedEntry{{Name: "半导体", Return: 12.3, Label: model.LabelIndustry}})
	m.Set("2024-02", []model.RankedEntry{})

	var buf bytes.Buffer
	Render(&buf, Preview{Title: "行业", Document: &artifact.Document{Top3PerMonth: m}, Months: 2})
	out := buf.String()

	assert.Contains(t, out, "月度板块榜")
	assert.Contains(t, out, "\033[31m +12.30%\033[0m")
	assert.Contains(t, out, "(无数据)")
}

func TestRenderEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Preview{Title: "空", Document: &artifact.Document{}})
	assert.Contains(t, buf.String(), "暂无数据")

	buf.Reset()
	Render(&buf, Preview{})
	assert.Empty(t, buf.String())
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "中航", truncateName("中航沈飞", 2))
	assert.Equal(t, "ABC", truncateName("ABC", 8))
}
