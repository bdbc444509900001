package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrank/fetcher"
	"stockrank/metrics"
	"stockrank/model"
	"stockrank/query"
)

type fakeQuery struct {
	result *query.KlineResult
	err    error
}

func (f fakeQuery) Kline(context.Context, string) (*query.KlineResult, error) {
	return f.result, f.err
}

func newTestServer(q KlineQuerier) *Server {
	static := fstest.MapFS{"index.html": {Data: []byte("<html>stockrank</html>")}}
	return NewServer(Options{StaticFS: static}, q, metrics.New(), zerolog.Nop())
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestKlineMissingCode(t *testing.T) {
	rec := do(t, newTestServer(fakeQuery{}), http.MethodGet, "/api/kline")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"请提供股票代码"}`, rec.Body.String())
}

func TestKlineSuccess(t *testing.T) {
	q := fakeQuery{result: &query.KlineResult{
		Code: "600519", Name: "贵州茅台", Market: "上海", Price: 1856, Change: -0.64,
		Kline: []model.DailyBar{{Date: "2024-01-02", Open: 1850, Close: 1856, High: 1860, Low: 1840, Volume: 100}},
	}}
	rec := do(t, newTestServer(q), http.MethodGet, "/api/kline?code=600519")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "贵州茅台", body["name"])
	assert.Equal(t, "上海", body["market"])
	assert.Len(t, body["kline"], 1)
}

func TestKlineUpstreamTimeout(t *testing.T) {
	// 上游连续超时三次后由查询服务返回错误
	timeout := errors.New("i/o timeout")
	calls := 0
	p := &timeoutProvider{calls: &calls, err: timeout}
	r := fetcher.NewResilient(p, fetcher.ResilientConfig{Retry: fetcher.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}}, nil, zerolog.Nop())
	svc := query.NewService(r, 0, zerolog.Nop())

	rec := do(t, newTestServer(svc), http.MethodGet, "/api/kline?code=600519")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 3, calls)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "获取数据失败")
}

func TestHealthMetricsAndStatic(t *testing.T) {
	s := newTestServer(fakeQuery{})

	rec := do(t, s, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockrank")

	rec = do(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockrank_http_requests_total")

	rec = do(t, s, http.MethodOptions, "/api/kline")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

type timeoutProvider struct {
	calls *int
	err   error
}

func (p *timeoutProvider) Name() string   { return "timeout" }
func (p *timeoutProvider) Source() string { return "timeout" }

func (p *timeoutProvider) FetchQuote(context.Context, string) (*model.Quote, error) {
	*p.calls++
	return nil, fmt.Errorf("请求失败: %w", p.err)
}

func (p *timeoutProvider) FetchDailyBars(context.Context, string, fetcher.BarRequest) ([]model.DailyBar, error) {
	return nil, p.err
}
