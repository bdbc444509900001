package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockrank/kline"
	"stockrank/metrics"
	"stockrank/model"
	"stockrank/trading"
)

const eastmoneyReferer = "https://quote.eastmoney.com/"

// Eastmoney 东方财富：个股/板块日K、报价、板块与成分股列表
type Eastmoney struct {
	KlineURL string // push2his
	QuoteURL string // push2
	Client   *http.Client
	Metrics  *metrics.Registry
}

// NewEastmoney 创建东方财富数据源
func NewEastmoney(timeout time.Duration) *Eastmoney {
	return &Eastmoney{
		KlineURL: "https://push2his.eastmoney.com",
		QuoteURL: "https://push2.eastmoney.com",
		Client:   newHTTPClient(timeout),
	}
}

func (e *Eastmoney) Name() string   { return "eastmoney" }
func (e *Eastmoney) Source() string { return "东方财富" }

// FetchDailyBars 日K格式: 日期,开盘,收盘,最高,最低,成交量,成交额
func (e *Eastmoney) FetchDailyBars(ctx context.Context, code string, req BarRequest) ([]model.DailyBar, error) {
	q := url.Values{}
	q.Set("secid", Secid(code))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")
	q.Set("klt", "101")
	q.Set("fqt", fqt(req.Adjust))
	q.Set("beg", compactDate(req.Start, "0"))
	q.Set("end", compactDate(req.End, "20500101"))
	if req.Count > 0 {
		q.Set("lmt", strconv.Itoa(req.Count))
	}

	body, err := get(ctx, e.Client, e.KlineURL+"/api/qt/stock/kline/get?"+q.Encode(), eastmoneyReferer, false)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data *struct {
			Code   string   `json:"code"`
			Name   string   `json:"name"`
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	bars, rejected := kline.Normalize(result.Data.Klines, func(line string) (model.DailyBar, error) {
		return kline.FromDelimited(line, ",")
	})
	e.Metrics.Rejected(e.Name(), rejected)
	return bars, nil
}

// FetchQuote f43 最新价, f57 代码, f58 名称, f60 昨收（fltt=2 时为小数）
func (e *Eastmoney) FetchQuote(ctx context.Context, code string) (*model.Quote, error) {
	q := url.Values{}
	q.Set("secid", Secid(code))
	q.Set("fields", "f43,f57,f58,f60")
	q.Set("fltt", "2")

	body, err := get(ctx, e.Client, e.QuoteURL+"/api/qt/stock/get?"+q.Encode(), eastmoneyReferer, false)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	price, ok := number(result.Data["f43"])
	if !ok {
		return nil, fmt.Errorf("%w: 最新价 %v", ErrMalformed, result.Data["f43"])
	}
	preClose, _ := number(result.Data["f60"])
	name, _ := result.Data["f58"].(string)
	symbol, _ := ResolveSymbol(code)

	return &model.Quote{
		Code:      BareCode(code),
		Symbol:    symbol,
		Name:      name,
		Price:     price,
		PreClose:  preClose,
		UpdatedAt: trading.Now(),
	}, nil
}

// ListBoards 行业板块 m:90+t:2，概念板块 m:90+t:3，按涨幅排序
func (e *Eastmoney) ListBoards(ctx context.Context, kind BoardKind) ([]model.Entity, error) {
	fs := "m:90+t:2"
	if kind == BoardConcept {
		fs = "m:90+t:3"
	}
	return e.clist(ctx, fs, "f3", 1000)
}

// ListConstituents 板块成分股
func (e *Eastmoney) ListConstituents(ctx context.Context, board string, limit int) ([]model.Entity, error) {
	return e.clist(ctx, "b:"+strings.ToUpper(board), "f3", limit)
}

// ListActiveStocks 沪深A股按成交额降序
func (e *Eastmoney) ListActiveStocks(ctx context.Context, limit int) ([]model.Entity, error) {
	return e.clist(ctx, "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23", "f6", limit)
}

func (e *Eastmoney) clist(ctx context.Context, fs, fid string, limit int) ([]model.Entity, error) {
	if limit <= 0 {
		limit = 100
	}
	q := url.Values{}
	q.Set("pn", "1")
	q.Set("pz", strconv.Itoa(limit))
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fid", fid)
	q.Set("fs", fs)
	q.Set("fields", "f12,f14")

	body, err := get(ctx, e.Client, e.QuoteURL+"/api/qt/clist/get?"+q.Encode(), eastmoneyReferer, false)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data *struct {
			Total int `json:"total"`
			Diff  []struct {
				Code string `json:"f12"`
				Name string `json:"f14"`
			} `json:"diff"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fs)
	}

	out := make([]model.Entity, 0, len(result.Data.Diff))
	for _, d := range result.Data.Diff {
		if d.Code == "" {
			continue
		}
		out = append(out, model.Entity{Code: d.Code, Name: d.Name})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func fqt(adj Adjust) string {
	switch adj {
	case AdjustForward:
		return "1"
	case AdjustBackward:
		return "2"
	default:
		return "0"
	}
}

// compactDate 2024-01-02 -> 20240102
func compactDate(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.ReplaceAll(s, "-", "")
}

// number 东方财富停牌等情况会返回 "-"
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
