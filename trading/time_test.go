package trading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStockTradingTimeAt(t *testing.T) {
	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2024, 1, 2, 10, 0, 0, 0, CST), true},     // 周二上午
		{time.Date(2024, 1, 2, 12, 0, 0, 0, CST), false},    // 午休
		{time.Date(2024, 1, 2, 14, 59, 0, 0, CST), true},    // 收盘前
		{time.Date(2024, 1, 2, 15, 1, 0, 0, CST), false},    // 收盘后
		{time.Date(2024, 1, 6, 10, 0, 0, 0, CST), false},    // 周六
		{time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC), true}, // UTC 02:00 = CST 10:00
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsStockTradingTimeAt(c.at), c.at.String())
	}
}

func TestMonthRange(t *testing.T) {
	months, err := MonthRange("2023-11", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01", "2024-02"}, months)

	_, err = MonthRange("2024-03", "2024-01")
	assert.Error(t, err)
	_, err = MonthRange("2024/01", "2024-02")
	assert.Error(t, err)
}

func TestMonthBounds(t *testing.T) {
	first, last, err := MonthBounds("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)
}

func TestMonthKeyAndTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 31, 17, 30, 5, 0, time.UTC) // CST 2024-02-01 01:30:05
	assert.Equal(t, "2024-02", MonthKey(at))
	assert.Equal(t, "2024-02-01 01:30:05", Timestamp(at))
}
