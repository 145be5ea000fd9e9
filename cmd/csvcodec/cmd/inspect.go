package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oleg578/streamcsv/internal/transcode"
)

func newInspectCmd(a *app) *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect [input]",
		Short: "Report row count, field widths, and the header",
		Long: `Report row count, field widths, and the header of a CSV stream.

The first row is shown as the header; --head prints that many following
rows as header: value pairs.

Example:
  csvcodec inspect products.csv --head 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			defer in.Close()

			logger := a.logger.With(zap.String("input", inputArg(args)))
			sum, err := transcode.Inspect(cmd.Context(), in, a.options(), a.cfg.Inspect.Head, logger)
			if err != nil {
				logger.Error("inspect failed", zap.Error(err))
				return err
			}
			return transcode.WriteReport(cmd.OutOrStdout(), sum)
		},
	}

	inspectCmd.Flags().Int("head", 0, "number of data rows to print after the header")
	return inspectCmd
}
