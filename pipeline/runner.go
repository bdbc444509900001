// Package pipeline 把抓取、月度收益、排名、主题与产物写入串成可运行的任务
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"stockrank/artifact"
	"stockrank/fetcher"
	"stockrank/kline"
	"stockrank/metrics"
	"stockrank/model"
	"stockrank/ranking"
	"stockrank/theme"
	"stockrank/trading"
)

// ErrNoData 没有任何标的取得数据，不写产物
var ErrNoData = errors.New("没有获取到任何数据")

// Boards 板块类任务需要的数据源
type Boards interface {
	fetcher.Provider
	fetcher.BoardLister
}

// Deps 外部依赖
type Deps struct {
	// Stocks 个股日K数据源
	Stocks fetcher.Provider
	// Boards 板块列表与板块日K数据源
	Boards   Boards
	Themes   *theme.Classifier
	Metrics  *metrics.Registry
	Observer Observer
	Log      zerolog.Logger
	Now      func() time.Time
}

// Settings 运行参数
type Settings struct {
	OutputDir string
	Workers   int
	TopK      int
	// KlineDays 个股日K条数
	KlineDays int
	Basis     kline.Basis
	MinBars   int
	// Months 统计区间 [StartMonth, EndMonth]
	StartMonth string
	EndMonth   string
	// IncludeEmpty 区间内无数据的月份也输出空榜单
	IncludeEmpty bool
	// TieBreakByCode 收益相同时按代码升序
	TieBreakByCode bool

	Stocks          []model.Entity
	HotBoards       []string
	ActiveStocks    int
	MaxConstituents int
	Outlier         kline.OutlierFilter
}

// Job 一个产出独立产物的任务
type Job interface {
	Name() string
	// Output 产物文件名（相对输出目录）
	Output() string
	Build(ctx context.Context) (*artifact.Document, int, error)
}

// Result 任务运行结果
type Result struct {
	RunID    string
	Job      string
	Path     string
	Entities int
	Document *artifact.Document
}

// Runner 任务执行器
type Runner struct {
	deps   Deps
	set    Settings
	months []string
	calc   kline.Options
	jobs   map[string]Job
	order  []string
}

// NewRunner 校验参数并注册全部任务
func NewRunner(deps Deps, set Settings) (*Runner, error) {
	months, err := trading.MonthRange(set.StartMonth, set.EndMonth)
	if err != nil {
		return nil, err
	}
	if set.Workers < 1 {
		set.Workers = 1
	}
	if set.TopK < 1 {
		set.TopK = ranking.DefaultK
	}
	if set.Outlier == (kline.OutlierFilter{}) {
		set.Outlier = kline.DefaultOutlierFilter
	}
	if deps.Observer == nil {
		deps.Observer = Nop{}
	}
	if deps.Themes == nil {
		deps.Themes = theme.Default()
	}
	if deps.Now == nil {
		deps.Now = trading.Now
	}

	r := &Runner{
		deps:   deps,
		set:    set,
		months: months,
		calc: kline.Options{
			Basis:     set.Basis,
			MinBars:   set.MinBars,
			FromMonth: set.StartMonth,
			ToMonth:   set.EndMonth,
		},
		jobs: make(map[string]Job),
	}
	r.register(&monstersJob{r: r})
	r.register(&sectorsJob{r: r})
	r.register(&industryAvgJob{r: r})
	r.register(&conceptsJob{r: r})
	return r, nil
}

func (r *Runner) register(j Job) {
	r.jobs[j.Name()] = j
	r.order = append(r.order, j.Name())
}

// Jobs 已注册的任务名
func (r *Runner) Jobs() []string {
	return append([]string(nil), r.order...)
}

// Job 按名称查找任务
func (r *Runner) Job(name string) (Job, error) {
	j, ok := r.jobs[name]
	if !ok {
		return nil, fmt.Errorf("未知的任务: %s", name)
	}
	return j, nil
}

// Run 运行任务并整体覆盖写入产物。没有任何数据时返回 ErrNoData，不触碰已有产物
func (r *Runner) Run(ctx context.Context, name string) (*Result, error) {
	job, err := r.Job(name)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := r.deps.Log.With().Str("job", name).Str("run_id", runID).Logger()
	start := time.Now()
	log.Info().Msg("任务开始")

	doc, n, err := job.Build(ctx)
	r.deps.Metrics.Job(name, n, err)
	if err != nil {
		log.Error().Err(err).Int("entities", n).Msg("任务失败")
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	path := filepath.Join(r.set.OutputDir, job.Output())
	if err := artifact.Write(path, doc); err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("entities", n).Dur("took", time.Since(start)).Msg("任务完成")

	return &Result{RunID: runID, Job: name, Path: path, Entities: n, Document: doc}, nil
}

type fetchFunc func(ctx context.Context, e model.Entity) ([]model.DailyBar, error)

// collect 用有界 worker 池并发抓取，每个 worker 只写自己的下标，
// 结束后按标的原始顺序合并，结果与完成顺序无关。单个标的失败只记录不终止。
func (r *Runner) collect(ctx context.Context, job string, entities []model.Entity, fetch fetchFunc) (*ranking.Table, error) {
	results := make([][]kline.MonthlyReturn, len(entities))

	var g errgroup.Group
	g.SetLimit(r.set.Workers)
	for i, e := range entities {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			bars, err := fetch(ctx, e)
			if err == nil && len(bars) == 0 {
				err = fetcher.ErrNotFound
			}
			if err != nil {
				r.deps.Observer.EntityFetched(job, e, 0, err)
				return nil
			}
			results[i] = kline.MonthlyReturns(bars, r.calc)
			r.deps.Observer.EntityFetched(job, e, len(results[i]), nil)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := ranking.NewTable()
	for i, e := range entities {
		table.Add(e, results[i])
	}
	return table, nil
}

// rank 按配置逐月排名并通知观察者
func (r *Runner) rank(job string, table *ranking.Table, opt ranking.Options) *artifact.Monthly {
	opt.K = r.set.TopK
	opt.Months = r.months
	opt.IncludeEmpty = r.set.IncludeEmpty
	opt.TieBreakByCode = r.set.TieBreakByCode
	ranked := ranking.Rank(table, opt)
	ranked.Range(func(month string, entries []model.RankedEntry) bool {
		r.deps.Observer.MonthRanked(job, month, entries)
		return true
	})
	return ranked
}

// boardRange 板块日K按统计区间请求
func (r *Runner) boardRange() fetcher.BarRequest {
	first, _, _ := trading.MonthBounds(r.set.StartMonth)
	_, last, _ := trading.MonthBounds(r.set.EndMonth)
	return fetcher.BarRequest{Start: first, End: last, Adjust: fetcher.AdjustForward}
}

func (r *Runner) stockRequest() fetcher.BarRequest {
	return fetcher.BarRequest{Count: r.set.KlineDays, Adjust: fetcher.AdjustForward}
}
