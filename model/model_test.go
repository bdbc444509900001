package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankedEntryShapes(t *testing.T) {
	price := 12.5
	cases := []struct {
		entry RankedEntry
		want  string
	}{
		{RankedEntry{Code: "600519", Name: "贵州茅台", Return: 50}, `{"code":"600519","name":"贵州茅台","return":50}`},
		{RankedEntry{Code: "600519", Name: "贵州茅台", Return: 1.25, Theme: "白酒", Price: &price}, `{"code":"600519","name":"贵州茅台","return":1.25,"theme":"白酒","price":12.5}`},
		{RankedEntry{Code: "BK0477", Name: "酿酒行业", Return: -3.2, Label: LabelIndustry}, `{"industry":"酿酒行业","return":-3.2}`},
		{RankedEntry{Name: "人工智能", Return: 8, Label: LabelBoard}, `{"board":"人工智能","return":8}`},
	}
	for _, c := range cases {
		raw, err := json.Marshal(c.entry)
		require.NoError(t, err)
		assert.Equal(t, c.want, string(raw))
	}
}

func TestRankedEntryDecodesLabel(t *testing.T) {
	var e RankedEntry
	require.NoError(t, json.Unmarshal([]byte(`{"board":"CPO概念","return":7.1}`), &e))
	assert.Equal(t, RankedEntry{Name: "CPO概念", Return: 7.1, Label: LabelBoard}, e)

	require.NoError(t, json.Unmarshal([]byte(`{"code":"300750","name":"宁德时代","return":3,"price":180}`), &e))
	assert.Equal(t, LabelStock, e.Label)
	require.NotNil(t, e.Price)
	assert.Equal(t, 180.0, *e.Price)
}

func TestQuoteChange(t *testing.T) {
	q := &Quote{Price: 11, PreClose: 10}
	assert.InDelta(t, 1.0, q.Change(), 1e-9)
	assert.InDelta(t, 10.0, q.ChangePercent(), 1e-9)

	q.PreClose = 0
	assert.Equal(t, 0.0, q.ChangePercent())
}

func TestBarMonth(t *testing.T) {
	assert.Equal(t, "2024-01", DailyBar{Date: "2024-01-31"}.Month())
	assert.Equal(t, "", DailyBar{Date: "2024"}.Month())
}
