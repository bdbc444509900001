// Package metrics 定义 prometheus 指标
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 持有全部指标。nil *Registry 上的方法都是空操作
type Registry struct {
	reg *prometheus.Registry

	FetchRequests *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchRetries  *prometheus.CounterVec
	BreakerState  *prometheus.GaugeVec
	RejectedBars  *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	JobRuns       *prometheus.CounterVec
	JobEntities   *prometheus.GaugeVec
}

// New 创建独立的指标注册表
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockrank_fetch_requests_total",
			Help: "上游请求次数（按数据源、操作、结果）",
		}, []string{"provider", "op", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockrank_fetch_duration_seconds",
			Help:    "单次上游请求耗时",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "op"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockrank_fetch_retries_total",
			Help: "上游请求重试次数",
		}, []string{"provider", "op"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockrank_breaker_state",
			Help: "熔断器状态 0=closed 1=half-open 2=open",
		}, []string{"provider"}),
		RejectedBars: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockrank_rejected_bars_total",
			Help: "规范化时被丢弃的K线数",
		}, []string{"provider"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockrank_http_requests_total",
			Help: "HTTP 请求数",
		}, []string{"method", "path", "status"}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockrank_job_runs_total",
			Help: "任务运行次数",
		}, []string{"job", "result"}),
		JobEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "stockrank_job_entities",
			Help: "最近一次运行成功取得数据的标的数",
		}, []string{"job"}),
	}
	r.reg.MustRegister(
		r.FetchRequests, r.FetchDuration, r.FetchRetries, r.BreakerState,
		r.RejectedBars, r.HTTPRequests, r.JobRuns, r.JobEntities,
	)
	return r
}

// Handler /metrics 处理器
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveFetch 记录一次上游请求
func (r *Registry) ObserveFetch(provider, op string, err error, took time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.FetchRequests.WithLabelValues(provider, op, result).Inc()
	r.FetchDuration.WithLabelValues(provider, op).Observe(took.Seconds())
}

// Retry 记录一次重试
func (r *Registry) Retry(provider, op string) {
	if r == nil {
		return
	}
	r.FetchRetries.WithLabelValues(provider, op).Inc()
}

// Breaker 记录熔断器状态
func (r *Registry) Breaker(provider string, state int) {
	if r == nil {
		return
	}
	r.BreakerState.WithLabelValues(provider).Set(float64(state))
}

// Rejected 记录被丢弃的K线
func (r *Registry) Rejected(provider string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.RejectedBars.WithLabelValues(provider).Add(float64(n))
}

// HTTP 记录一次 HTTP 请求
func (r *Registry) HTTP(method, path, status string) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, path, status).Inc()
}

// Job 记录任务结果
func (r *Registry) Job(job string, entities int, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.JobRuns.WithLabelValues(job, result).Inc()
	r.JobEntities.WithLabelValues(job).Set(float64(entities))
}
