// Package rankctl 命令行：生成排行产物、查询K线、启动服务
package rankctl

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stockrank/config"
	"stockrank/internal/rankd"
	"stockrank/logger"
)

// Version 版本号，由 main 注入
var Version = "dev"

// Run 执行命令行，返回进程退出码
func Run(args []string) int {
	cmd := NewRootCommand(os.Stdout)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	configPath string
	outputDir  string
	provider   string
	workers    int
	start      string
	end        string
	logLevel   string
}

// NewRootCommand 构造根命令，结果输出到 out
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "stockrank",
		Version:       Version,
		Short:         "A股月度涨幅排行",
		Long:          "按月统计个股与板块的涨幅，输出每月 Top-K 排行 JSON，并提供K线查询接口。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "配置文件路径(YAML格式)，默认优先使用 ./config.yaml")
	pf.StringVar(&opts.outputDir, "output", "", "产物输出目录（覆盖配置）")
	pf.StringVar(&opts.provider, "provider", "", "个股数据源 tencent / eastmoney / sina（覆盖配置）")
	pf.IntVar(&opts.workers, "workers", 0, "并发抓取数（覆盖配置）")
	pf.StringVar(&opts.start, "start", "", "起始月份 YYYY-MM（覆盖配置）")
	pf.StringVar(&opts.end, "end", "", "结束月份 YYYY-MM（覆盖配置）")
	pf.StringVar(&opts.logLevel, "log-level", "", "日志级别 debug / info / warn / error")

	root.AddCommand(jobCommands(opts)...)
	root.AddCommand(newKlineCommand(opts), newServeCommand(opts))
	return root
}

// load 读取配置、套用命令行覆盖并装配组件
func (o *rootOptions) load() (*rankd.App, error) {
	cfg, err := config.GetConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.provider != "" {
		cfg.Provider = o.provider
	}
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.start != "" {
		cfg.StartMonth = o.start
	}
	if o.end != "" {
		cfg.EndMonth = o.end
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return rankd.NewApp(cfg, logger.New(cfg.LogLevel, cfg.LogFormat))
}

// signalContext Ctrl+C / SIGTERM 时取消
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
