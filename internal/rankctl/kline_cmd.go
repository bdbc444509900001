package rankctl

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newKlineCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kline <代码>",
		Short: "查询单只股票的报价与日K（JSON）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			res, err := app.Query.Kline(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(res)
		},
	}
}
