package trading

import (
	"fmt"
	"time"
)

// CST 中国时区
var CST = time.FixedZone("CST", 8*3600)

// TimeRange 时间范围
type TimeRange struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// A股交易时间段
var stockTradingHours = []TimeRange{
	{9, 30, 11, 30}, // 上午 9:30-11:30
	{13, 0, 15, 0},  // 下午 13:00-15:00
}

// Now 当前中国时间
func Now() time.Time {
	return time.Now().In(CST)
}

// IsStockTradingTime 判断当前是否为A股交易时间
func IsStockTradingTime() bool {
	return IsStockTradingTimeAt(time.Now())
}

// IsStockTradingTimeAt 判断指定时间是否为A股交易时间
func IsStockTradingTimeAt(t time.Time) bool {
	t = t.In(CST)

	weekday := t.Weekday()
	if weekday == time.Saturday || weekday == time.Sunday {
		return false
	}
	return isInTimeRanges(t, stockTradingHours)
}

// isInTimeRanges 检查时间是否在指定的时间范围内
func isInTimeRanges(t time.Time, ranges []TimeRange) bool {
	current := t.Hour()*60 + t.Minute()
	for _, r := range ranges {
		if current >= r.StartHour*60+r.StartMinute && current <= r.EndHour*60+r.EndMinute {
			return true
		}
	}
	return false
}

// MonthKey 返回 t 在中国时区的 YYYY-MM
func MonthKey(t time.Time) string {
	return t.In(CST).Format("2006-01")
}

// ParseMonth 解析 YYYY-MM，返回该月1日零点（中国时区）
func ParseMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, CST)
	if err != nil {
		return time.Time{}, fmt.Errorf("月份格式应为 YYYY-MM: %q", s)
	}
	return t, nil
}

// MonthRange 返回 [start, end] 闭区间内的所有月份，升序
func MonthRange(start, end string) ([]string, error) {
	from, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}
	to, err := ParseMonth(end)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, fmt.Errorf("起始月份 %s 晚于结束月份 %s", start, end)
	}

	var months []string
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format("2006-01"))
	}
	return months, nil
}

// MonthBounds 返回某月首日与末日（YYYY-MM-DD）
func MonthBounds(month string) (first, last string, err error) {
	t, err := ParseMonth(month)
	if err != nil {
		return "", "", err
	}
	return t.Format("2006-01-02"), t.AddDate(0, 1, -1).Format("2006-01-02"), nil
}

// Timestamp 产物中使用的时间格式
func Timestamp(t time.Time) string {
	return t.In(CST).Format("2006-01-02 15:04:05")
}
