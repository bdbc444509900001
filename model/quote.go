package model

import "time"

// Quote 单只标的的快照报价
type Quote struct {
	Code      string    `json:"code"`       // 原始代码 (600519)
	Symbol    string    `json:"symbol"`     // 带市场前缀的代码 (sh600519)
	Name      string    `json:"name"`       // 名称
	Price     float64   `json:"price"`      // 当前价
	PreClose  float64   `json:"pre_close"`  // 昨收
	UpdatedAt time.Time `json:"updated_at"` // 更新时间
}

// Change 计算涨跌额
func (q *Quote) Change() float64 {
	return q.Price - q.PreClose
}

// ChangePercent 计算涨跌幅，昨收无效时返回0
func (q *Quote) ChangePercent() float64 {
	if q.PreClose <= 0 {
		return 0
	}
	return (q.Price - q.PreClose) / q.PreClose * 100
}
