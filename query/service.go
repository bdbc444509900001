// Package query 单只标的报价与日K查询
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"stockrank/fetcher"
	"stockrank/kline"
	"stockrank/model"
)

// ErrNoHistory 上游没有返回任何有效日K
var ErrNoHistory = errors.New("历史K线为空")

// DefaultBars 默认返回的日K条数
const DefaultBars = 320

// KlineResult /api/kline 的响应体
type KlineResult struct {
	Code   string           `json:"code"`
	Name   string           `json:"name"`
	Market string           `json:"market"`
	Price  float64          `json:"price"`
	Change float64          `json:"change"` // 涨跌幅（%），两位小数
	Kline  []model.DailyBar `json:"kline"`
}

// Service 报价 + 日K 查询
type Service struct {
	provider fetcher.Provider
	bars     int
	adjust   fetcher.Adjust
	log      zerolog.Logger
}

// NewService 创建查询服务，bars<=0 时使用 DefaultBars
func NewService(p fetcher.Provider, bars int, log zerolog.Logger) *Service {
	if bars <= 0 {
		bars = DefaultBars
	}
	return &Service{
		provider: p,
		bars:     bars,
		adjust:   fetcher.AdjustForward,
		log:      log.With().Str("component", "query").Logger(),
	}
}

// Kline 查询报价并附带最近的日K
func (s *Service) Kline(ctx context.Context, code string) (*KlineResult, error) {
	_, market := fetcher.ResolveSymbol(code)

	quote, err := s.provider.FetchQuote(ctx, code)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			return nil, fmt.Errorf("股票 %s 不存在或已退市: %w", code, err)
		}
		return nil, err
	}

	bars, err := s.provider.FetchDailyBars(ctx, code, fetcher.BarRequest{Count: s.bars, Adjust: s.adjust})
	if err != nil {
		return nil, fmt.Errorf("获取 %s K线数据失败: %w", code, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("获取 %s K线数据失败: %w", code, ErrNoHistory)
	}

	s.log.Info().Str("code", code).Str("name", quote.Name).Int("bars", len(bars)).Msg("查询成功")
	return &KlineResult{
		Code:   code,
		Name:   quote.Name,
		Market: market.Name,
		Price:  quote.Price,
		Change: kline.Round2(quote.ChangePercent()),
		Kline:  bars,
	}, nil
}
