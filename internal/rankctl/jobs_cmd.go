package rankctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockrank/internal/terminalui"
)

type jobSpec struct {
	name  string
	short string
	title string
}

var jobSpecs = []jobSpec{
	{"monsters", "个股月度涨幅榜（妖股）", "月度妖股排行"},
	{"sectors", "行业板块月度表现与历史月份统计", "行业板块排行"},
	{"industry-avg", "行业成分股平均涨幅", "行业成分股均值排行"},
	{"concepts", "热门概念板块月度表现", "热门概念排行"},
}

type jobOptions struct {
	noPreview bool
	months    int
}

func jobCommands(opts *rootOptions) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(jobSpecs)+1)
	for _, spec := range jobSpecs {
		cmds = append(cmds, newJobCommand(opts, spec.name, spec.short, []jobSpec{spec}))
	}
	cmds = append(cmds, newJobCommand(opts, "all", "依次运行全部任务", jobSpecs))
	return cmds
}

func newJobCommand(opts *rootOptions, use, short string, specs []jobSpec) *cobra.Command {
	jo := &jobOptions{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			var failed []string
			for _, spec := range specs {
				res, err := app.Runner.Run(ctx, spec.name)
				if err != nil {
					if len(specs) == 1 {
						return err
					}
					app.Log.Error().Err(err).Str("job", spec.name).Msg("任务失败")
					failed = append(failed, spec.name)
					continue
				}
				fmt.Fprintf(out, "已写入 %s（%d 个标的，run_id=%s）\n", res.Path, res.Entities, res.RunID)
				if !jo.noPreview {
					terminalui.Render(out, terminalui.Preview{Title: spec.title, Document: res.Document, Months: jo.months})
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d 个任务失败: %v", len(failed), failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jo.noPreview, "no-preview", false, "不打印终端预览")
	cmd.Flags().IntVar(&jo.months, "preview-months", terminalui.DefaultMonths, "预览最近 N 个月")
	return cmd
}
