package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stockrank/kline"
	"stockrank/metrics"
	"stockrank/model"
	"stockrank/trading"
)

// Tencent 腾讯财经：qt.gtimg.cn 报价 + fqkline 日K
type Tencent struct {
	QuoteURL string
	KlineURL string
	Client   *http.Client
	Metrics  *metrics.Registry
}

// NewTencent 创建腾讯数据源
func NewTencent(timeout time.Duration) *Tencent {
	return &Tencent{
		QuoteURL: "http://qt.gtimg.cn/q=",
		KlineURL: "http://web.ifzq.gtimg.cn/appstock/app/fqkline/get",
		Client:   newHTTPClient(timeout),
	}
}

func (t *Tencent) Name() string   { return "tencent" }
func (t *Tencent) Source() string { return "腾讯财经" }

// FetchQuote 报价格式: v_sh600519="1~贵州茅台~600519~1856.00~1868.00~..."
func (t *Tencent) FetchQuote(ctx context.Context, code string) (*model.Quote, error) {
	symbol, _ := ResolveSymbol(code)
	body, err := get(ctx, t.Client, t.QuoteURL+symbol, "", true)
	if err != nil {
		return nil, err
	}

	content := string(body)
	if i := strings.IndexByte(content, '"'); i >= 0 {
		if j := strings.LastIndexByte(content, '"'); j > i {
			content = content[i+1 : j]
		}
	}
	parts := strings.Split(content, "~")
	if len(parts) < 5 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: 价格 %q", ErrMalformed, parts[3])
	}
	preClose, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: 昨收 %q", ErrMalformed, parts[4])
	}

	return &model.Quote{
		Code:      BareCode(code),
		Symbol:    symbol,
		Name:      strings.TrimSpace(parts[1]),
		Price:     price,
		PreClose:  preClose,
		UpdatedAt: trading.Now(),
	}, nil
}

// FetchDailyBars 日K: data[symbol].qfqday = [[日期, 开, 收, 高, 低, 量], ...]
func (t *Tencent) FetchDailyBars(ctx context.Context, code string, req BarRequest) ([]model.DailyBar, error) {
	symbol, _ := ResolveSymbol(code)
	count := req.Count
	if count <= 0 {
		count = 320
	}
	url := fmt.Sprintf("%s?param=%s,day,%s,%s,%d,%s", t.KlineURL, symbol, req.Start, req.End, count, req.Adjust)

	body, err := get(ctx, t.Client, url, "", false)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// 代码不存在时 data 为空数组
	if d := bytes.TrimSpace(resp.Data); len(d) == 0 || d[0] != '{' {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	var data map[string]map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	series, ok := data[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	var raw json.RawMessage
	for _, key := range seriesKeys(req.Adjust) {
		if v, ok := series[key]; ok {
			raw = v
			break
		}
	}
	if raw == nil {
		return nil, nil
	}

	var items [][]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	bars, rejected := kline.Normalize(items, kline.FromPositional)
	t.Metrics.Rejected(t.Name(), rejected)
	return bars, nil
}

func seriesKeys(adj Adjust) []string {
	switch adj {
	case AdjustForward:
		return []string{"qfqday", "day"}
	case AdjustBackward:
		return []string{"hfqday", "day"}
	default:
		return []string{"day"}
	}
}
