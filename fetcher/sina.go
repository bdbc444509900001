package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stockrank/kline"
	"stockrank/metrics"
	"stockrank/model"
	"stockrank/trading"
)

const sinaReferer = "http://finance.sina.com.cn/"

var sinaLine = regexp.MustCompile(`var hq_str_(\w+)="([^"]*)"`)

// Sina 新浪财经：hq.sinajs.cn 报价 + getKLineData 日K（不复权）
type Sina struct {
	QuoteURL string
	KlineURL string
	Client   *http.Client
	Metrics  *metrics.Registry
}

// NewSina 创建新浪数据源
func NewSina(timeout time.Duration) *Sina {
	return &Sina{
		QuoteURL: "http://hq.sinajs.cn/list=",
		KlineURL: "https://quotes.sina.cn/cn/api/json_v2.php/CN_MarketDataService.getKLineData",
		Client:   newHTTPClient(timeout),
	}
}

func (s *Sina) Name() string   { return "sina" }
func (s *Sina) Source() string { return "新浪财经" }

// FetchQuote 格式: var hq_str_sh600000="浦发银行,今开,昨收,当前价,最高,最低,..."
func (s *Sina) FetchQuote(ctx context.Context, code string) (*model.Quote, error) {
	symbol, _ := ResolveSymbol(code)
	body, err := get(ctx, s.Client, s.QuoteURL+symbol, sinaReferer, true)
	if err != nil {
		return nil, err
	}

	match := sinaLine.FindStringSubmatch(string(body))
	if len(match) < 3 || match[2] == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	fields := strings.Split(match[2], ",")
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: 字段数量不足 %d", ErrNotFound, len(fields))
	}

	preClose, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: 昨收 %q", ErrMalformed, fields[2])
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: 价格 %q", ErrMalformed, fields[3])
	}

	return &model.Quote{
		Code:      BareCode(code),
		Symbol:    symbol,
		Name:      fields[0],
		Price:     price,
		PreClose:  preClose,
		UpdatedAt: trading.Now(),
	}, nil
}

// FetchDailyBars 返回 [{day, open, high, low, close, volume}, ...]，Start/End 在本地过滤
func (s *Sina) FetchDailyBars(ctx context.Context, code string, req BarRequest) ([]model.DailyBar, error) {
	symbol, _ := ResolveSymbol(code)
	count := req.Count
	if count <= 0 {
		count = 320
	}
	url := fmt.Sprintf("%s?symbol=%s&scale=240&ma=no&datalen=%d", s.KlineURL, symbol, count)

	body, err := get(ctx, s.Client, url, sinaReferer, false)
	if err != nil {
		return nil, err
	}
	if t := strings.TrimSpace(string(body)); t == "" || t == "null" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	var records []map[string]any
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	bars, rejected := kline.Normalize(records, func(rec map[string]any) (model.DailyBar, error) {
		return kline.FromRecord(rec, kline.SinaColumns)
	})
	s.Metrics.Rejected(s.Name(), rejected)

	out := bars[:0]
	for _, b := range bars {
		if req.Start != "" && b.Date < req.Start {
			continue
		}
		if req.End != "" && b.Date > req.End {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
