// Package rankd 常驻服务：K线查询接口加上产物定时刷新
package rankd

import (
	"context"
	"errors"
	"io/fs"

	"stockrank"
	"stockrank/api"
)

// Serve 启动 HTTP 服务，ctx 结束后优雅关闭
func (a *App) Serve(ctx context.Context) error {
	var staticFS fs.FS
	if a.Config.StaticDir == "" {
		sub, err := stockrank.GetStaticFS()
		if err != nil {
			a.Log.Warn().Err(err).Msg("无法加载前端资源，仅提供API")
		} else {
			staticFS = sub
		}
	}

	if a.Config.RefreshCron != "" {
		for _, job := range a.Config.RefreshJobs {
			if _, err := a.Runner.Job(job); err != nil {
				return err
			}
		}
		c, err := Schedule(ctx, a.Config.RefreshCron, NewRefresher(a.Runner, a.Config.RefreshJobs, a.Log))
		if err != nil {
			return err
		}
		c.Start()
		a.Log.Info().Str("cron", a.Config.RefreshCron).Strs("jobs", a.Config.RefreshJobs).Msg("定时刷新已启用")
		defer func() { <-c.Stop().Done() }()
	}

	server := api.NewServer(api.Options{
		Port:      a.Config.Port,
		StaticDir: a.Config.StaticDir,
		StaticFS:  staticFS,
	}, a.Query, a.Metrics, a.Log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return errors.New("HTTP服务意外退出")
	case <-ctx.Done():
	}

	a.Log.Info().Msg("正在关闭服务...")
	if err := server.Shutdown(context.Background()); err != nil {
		return err
	}
	a.Log.Info().Msg("服务已关闭")
	return nil
}
