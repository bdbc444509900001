package rankctl

import (
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		port        int
		refreshCron string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动K线查询服务（可选定时刷新产物）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load()
			if err != nil {
				return err
			}
			if port > 0 {
				app.Config.Port = port
			}
			if refreshCron != "" {
				app.Config.RefreshCron = refreshCron
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return app.Serve(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "监听端口（覆盖配置）")
	cmd.Flags().StringVar(&refreshCron, "refresh-cron", "", "定时刷新 cron 表达式（中国时区），如 \"30 15 * * 1-5\"")
	return cmd
}
