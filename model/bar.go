package model

// DailyBar 规范化后的日K线
type DailyBar struct {
	Date   string  `json:"date"`   // 日期 YYYY-MM-DD
	Open   float64 `json:"open"`   // 开盘价
	Close  float64 `json:"close"`  // 收盘价
	High   float64 `json:"high"`   // 最高价
	Low    float64 `json:"low"`    // 最低价
	Volume float64 `json:"volume"` // 成交量
	Amount float64 `json:"amount"` // 成交额（部分数据源为0）
}

// Month 返回K线所属的 YYYY-MM
func (b DailyBar) Month() string {
	if len(b.Date) < 7 {
		return ""
	}
	return b.Date[:7]
}

// Entity 可交易标的（个股、行业板块、概念板块）
type Entity struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// EntitySeries 单个标的按日期升序排列的日K序列
type EntitySeries struct {
	Entity
	Bars []DailyBar `json:"bars"`
}
