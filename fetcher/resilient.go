package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"stockrank/metrics"
	"stockrank/model"
)

// ResilientConfig 重试、限速与熔断参数
type ResilientConfig struct {
	Retry RetryPolicy
	// Pace 相邻两次上游请求的最小间隔，成功时也生效
	Pace time.Duration
	// BreakerFailures 连续失败多少次后熔断，0 表示 5
	BreakerFailures uint32
	// BreakerTimeout 熔断后多久进入半开，0 表示 30s
	BreakerTimeout time.Duration
}

// Resilient 在 Provider 外层加上限速、熔断与固定间隔重试
type Resilient struct {
	inner   Provider
	policy  RetryPolicy
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Registry
	log     zerolog.Logger
}

var _ Provider = (*Resilient)(nil)
var _ BoardLister = (*Resilient)(nil)

// NewResilient 包装数据源
func NewResilient(p Provider, cfg ResilientConfig, reg *metrics.Registry, log zerolog.Logger) *Resilient {
	limit := rate.Inf
	if cfg.Pace > 0 {
		limit = rate.Every(cfg.Pace)
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := &Resilient{
		inner:   p,
		policy:  cfg.Retry,
		limiter: rate.NewLimiter(limit, 1),
		metrics: reg,
		log:     log.With().Str("component", "fetcher").Str("provider", p.Name()).Logger(),
	}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    p.Name(),
		Timeout: timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		// 格式错误、不存在属于数据问题，不代表上游不可用
		IsSuccessful: func(err error) bool {
			return err == nil || Permanent(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			reg.Breaker(name, int(to))
			r.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("熔断器状态变化")
		},
	})
	return r
}

func (r *Resilient) Name() string   { return r.inner.Name() }
func (r *Resilient) Source() string { return r.inner.Source() }

// Unwrap 返回被包装的数据源
func (r *Resilient) Unwrap() Provider { return r.inner }

func (r *Resilient) FetchQuote(ctx context.Context, code string) (*model.Quote, error) {
	return call(ctx, r, "quote", code, func(ctx context.Context) (*model.Quote, error) {
		return r.inner.FetchQuote(ctx, code)
	})
}

func (r *Resilient) FetchDailyBars(ctx context.Context, code string, req BarRequest) ([]model.DailyBar, error) {
	return call(ctx, r, "bars", code, func(ctx context.Context) ([]model.DailyBar, error) {
		return r.inner.FetchDailyBars(ctx, code, req)
	})
}

func (r *Resilient) ListBoards(ctx context.Context, kind BoardKind) ([]model.Entity, error) {
	bl, err := r.lister()
	if err != nil {
		return nil, err
	}
	return call(ctx, r, "boards", string(kind), func(ctx context.Context) ([]model.Entity, error) {
		return bl.ListBoards(ctx, kind)
	})
}

func (r *Resilient) ListConstituents(ctx context.Context, board string, limit int) ([]model.Entity, error) {
	bl, err := r.lister()
	if err != nil {
		return nil, err
	}
	return call(ctx, r, "constituents", board, func(ctx context.Context) ([]model.Entity, error) {
		return bl.ListConstituents(ctx, board, limit)
	})
}

func (r *Resilient) ListActiveStocks(ctx context.Context, limit int) ([]model.Entity, error) {
	bl, err := r.lister()
	if err != nil {
		return nil, err
	}
	return call(ctx, r, "active", "", func(ctx context.Context) ([]model.Entity, error) {
		return bl.ListActiveStocks(ctx, limit)
	})
}

func (r *Resilient) lister() (BoardLister, error) {
	bl, ok := r.inner.(BoardLister)
	if !ok {
		return nil, fmt.Errorf("数据源 %s 不支持板块列表: %w", r.inner.Name(), errors.ErrUnsupported)
	}
	return bl, nil
}

func call[T any](ctx context.Context, r *Resilient, op, key string, fn func(context.Context) (T, error)) (T, error) {
	attempt := func(ctx context.Context) (T, error) {
		var zero T
		if err := r.limiter.Wait(ctx); err != nil {
			return zero, err
		}
		start := time.Now()
		v, err := r.breaker.Execute(func() (any, error) { return fn(ctx) })
		r.metrics.ObserveFetch(r.inner.Name(), op, err, time.Since(start))
		if err != nil {
			return zero, err
		}
		return v.(T), nil
	}
	onRetry := func(n int, err error) {
		r.metrics.Retry(r.inner.Name(), op)
		r.log.Debug().Err(err).Str("op", op).Str("key", key).Int("attempt", n).Msg("请求失败，稍后重试")
	}

	v, err := Retry(ctx, r.policy, attempt, onRetry)
	if err != nil {
		return v, fmt.Errorf("%s %s %s: %w", r.inner.Name(), op, key, err)
	}
	return v, nil
}
