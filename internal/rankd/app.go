package rankd

import (
	"fmt"

	"github.com/rs/zerolog"

	"stockrank/config"
	"stockrank/fetcher"
	"stockrank/kline"
	"stockrank/logger"
	"stockrank/metrics"
	"stockrank/pipeline"
	"stockrank/query"
	"stockrank/theme"
)

// App 按配置装配好的数据源、任务执行器与查询服务，命令行与常驻服务共用
type App struct {
	Config  *config.Config
	Log     zerolog.Logger
	Metrics *metrics.Registry
	Runner  *pipeline.Runner
	Query   *query.Service
}

// NewApp 装配组件，不发起任何网络请求
func NewApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	basis, err := kline.ParseBasis(cfg.Basis)
	if err != nil {
		return nil, err
	}
	themes, err := theme.Load(cfg.ThemesFile)
	if err != nil {
		return nil, err
	}

	reg := metrics.New()
	rc := fetcher.ResilientConfig{
		Retry:           fetcher.RetryPolicy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay},
		Pace:            cfg.Pace,
		BreakerFailures: uint32(cfg.BreakerFailures),
	}

	raw, err := fetcher.New(cfg.Provider, cfg.Timeout, reg)
	if err != nil {
		return nil, err
	}
	stocks := fetcher.NewResilient(raw, rc, reg, log)

	// 板块列表与板块日K只有东方财富提供
	em := fetcher.NewEastmoney(cfg.Timeout)
	em.Metrics = reg
	boards := fetcher.NewResilient(em, rc, reg, log)

	runner, err := pipeline.NewRunner(pipeline.Deps{
		Stocks:   stocks,
		Boards:   boards,
		Themes:   themes,
		Metrics:  reg,
		Observer: pipeline.LogObserver{Log: logger.Component(log, "pipeline")},
		Log:      logger.Component(log, "pipeline"),
	}, pipeline.Settings{
		OutputDir:       cfg.OutputDir,
		Workers:         cfg.Workers,
		TopK:            cfg.TopK,
		KlineDays:       cfg.KlineDays,
		Basis:           basis,
		MinBars:         cfg.MinBars,
		StartMonth:      cfg.StartMonth,
		EndMonth:        cfg.EndMonth,
		IncludeEmpty:    cfg.IncludeEmptyMonths,
		TieBreakByCode:  cfg.TieBreak == "code",
		Stocks:          cfg.Stocks,
		HotBoards:       cfg.HotBoards,
		ActiveStocks:    cfg.ActiveStocks,
		MaxConstituents: cfg.MaxConstituents,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化任务失败: %w", err)
	}

	return &App{
		Config:  cfg,
		Log:     log,
		Metrics: reg,
		Runner:  runner,
		Query:   query.NewService(stocks, cfg.QueryBars, log),
	}, nil
}
