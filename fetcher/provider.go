package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stockrank/metrics"
	"stockrank/model"
)

var (
	// ErrNotFound 上游没有该标的（空报价、字段不足）
	ErrNotFound = errors.New("标的不存在或已退市")
	// ErrMalformed 上游返回结构不符合预期，重试无意义
	ErrMalformed = errors.New("上游数据格式错误")
	// ErrStatus 上游返回非 200 状态
	ErrStatus = errors.New("上游状态码异常")
)

// Adjust 复权方式
type Adjust string

const (
	AdjustForward  Adjust = "qfq" // 前复权
	AdjustBackward Adjust = "hfq" // 后复权
	AdjustNone     Adjust = ""    // 不复权
)

// BarRequest 日K请求参数。Start/End 为 YYYY-MM-DD，可为空
type BarRequest struct {
	Count  int
	Start  string
	End    string
	Adjust Adjust
}

// Provider 上游行情数据源
type Provider interface {
	// Name 数据源标识，用于日志与指标
	Name() string
	// Source 写入产物 data_source 的中文描述
	Source() string
	FetchQuote(ctx context.Context, code string) (*model.Quote, error)
	// FetchDailyBars 返回按日期升序、已规范化的日K
	FetchDailyBars(ctx context.Context, code string, req BarRequest) ([]model.DailyBar, error)
}

// BoardKind 板块类别
type BoardKind string

const (
	BoardIndustry BoardKind = "industry"
	BoardConcept  BoardKind = "concept"
)

// BoardLister 板块、成分股与活跃股列表
type BoardLister interface {
	ListBoards(ctx context.Context, kind BoardKind) ([]model.Entity, error)
	ListConstituents(ctx context.Context, board string, limit int) ([]model.Entity, error)
	ListActiveStocks(ctx context.Context, limit int) ([]model.Entity, error)
}

// New 按名称创建数据源，reg 可为 nil
func New(name string, timeout time.Duration, reg *metrics.Registry) (Provider, error) {
	switch name {
	case "", "tencent":
		p := NewTencent(timeout)
		p.Metrics = reg
		return p, nil
	case "eastmoney":
		p := NewEastmoney(timeout)
		p.Metrics = reg
		return p, nil
	case "sina":
		p := NewSina(timeout)
		p.Metrics = reg
		return p, nil
	}
	return nil, fmt.Errorf("未知的数据源: %s", name)
}
