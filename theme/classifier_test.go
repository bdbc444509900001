package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrank/model"
	"stockrank/ordered"
)

func TestClassifyKeyword(t *testing.T) {
	c := Default()
	assert.Equal(t, "白酒", c.Classify("贵州茅台", "600519"))
	assert.Equal(t, "军工", c.Classify("中航沈飞", "600760"))
	assert.Equal(t, "芯片", c.Classify("中芯国际", "688981"))
}

func TestClassifyPrefixFallback(t *testing.T) {
	c := Default()
	assert.Equal(t, "科创板", c.Classify("某某科技", "688999"))
	assert.Equal(t, "创业板", c.Classify("某某科技", "300999"))
	assert.Equal(t, "其他", c.Classify("海天味业", "603288"))
}

func TestFirstMatchWins(t *testing.T) {
	c, err := New(Table{Themes: []Rule{
		{Theme: "通信", Keywords: []string{"中兴"}},
		{Theme: "设备", Keywords: []string{"通讯"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "通信", c.Classify("中兴通讯", "000063"))
	assert.Equal(t, DefaultFallback, c.Classify("无关", "600000"))
}

func TestNewRejectsInvalidTable(t *testing.T) {
	_, err := New(Table{Themes: []Rule{{Theme: " ", Keywords: []string{"x"}}}})
	assert.Error(t, err)
	_, err = New(Table{Prefixes: []PrefixRule{{Prefix: "688"}}})
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("themes:\n  - theme: 机器人\n    keywords: [机器人]\nfallback: 杂项\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "机器人", c.Classify("埃斯顿机器人", "002747"))
	assert.Equal(t, "杂项", c.Classify("贵州茅台", "600519"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDecorateAndMonthlyThemes(t *testing.T) {
	ranked := ordered.New[[]model.RankedEntry]()
	ranked.Set("2024-01", []model.RankedEntry{
		{Code: "600519", Name: "贵州茅台", Return: 10},
		{Code: "688001", Name: "华兴源创", Return: 8},
	})
	ranked.Set("2024-02", []model.RankedEntry{
		{Code: "BK0477", Name: "酿酒行业", Return: 3, Label: model.LabelIndustry},
	})

	Default().Decorate(ranked)

	jan, _ := ranked.Get("2024-01")
	assert.Equal(t, "白酒", jan[0].Theme)
	assert.Equal(t, "科创板", jan[1].Theme)
	feb, _ := ranked.Get("2024-02")
	assert.Empty(t, feb[0].Theme)

	themes := MonthlyThemes(ranked)
	got, _ := themes.Get("2024-01")
	assert.Equal(t, []string{"白酒", "科创板"}, got)
}
