package rankd

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"stockrank/pipeline"
	"stockrank/trading"
)

// JobRunner 运行单个任务
type JobRunner interface {
	Run(ctx context.Context, name string) (*pipeline.Result, error)
}

// Refresher 定时重算产物。交易时段内当日K线尚未收定，跳过本轮
type Refresher struct {
	runner  JobRunner
	jobs    []string
	log     zerolog.Logger
	now     func() time.Time
	running atomic.Bool
}

// NewRefresher 创建刷新器
func NewRefresher(runner JobRunner, jobs []string, log zerolog.Logger) *Refresher {
	return &Refresher{
		runner: runner,
		jobs:   append([]string(nil), jobs...),
		log:    log.With().Str("component", "refresh").Logger(),
		now:    trading.Now,
	}
}

// Refresh 依次运行全部任务，单个任务失败不影响后续任务。返回成功的任务数
func (r *Refresher) Refresh(ctx context.Context) int {
	if now := r.now(); trading.IsStockTradingTimeAt(now) {
		r.log.Info().Str("at", trading.Timestamp(now)).Msg("交易时段，跳过刷新")
		return 0
	}
	if !r.running.CompareAndSwap(false, true) {
		r.log.Warn().Msg("上一轮刷新尚未结束，跳过")
		return 0
	}
	defer r.running.Store(false)

	ok := 0
	for _, job := range r.jobs {
		if ctx.Err() != nil {
			break
		}
		res, err := r.runner.Run(ctx, job)
		if err != nil {
			r.log.Error().Err(err).Str("job", job).Msg("刷新失败")
			continue
		}
		ok++
		r.log.Info().Str("job", job).Str("path", res.Path).Int("entities", res.Entities).Msg("刷新完成")
	}
	return ok
}

// Schedule 按 cron 表达式（中国时区）注册刷新，调用方负责 Start/Stop
func Schedule(ctx context.Context, spec string, r *Refresher) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(trading.CST))
	if _, err := c.AddFunc(spec, func() { r.Refresh(ctx) }); err != nil {
		return nil, fmt.Errorf("注册定时刷新失败 %q: %w", spec, err)
	}
	return c, nil
}
