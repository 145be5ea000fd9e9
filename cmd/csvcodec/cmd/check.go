package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oleg578/streamcsv/internal/transcode"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [input]",
		Short: "Report whether CSV is already normalized",
		Long: `Report whether CSV is already normalized.

Prints a line diff against the normalized form and exits non-zero when
they differ. The whole input is held in memory.

Example:
  csvcodec check export.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			defer in.Close()

			logger := a.logger.With(zap.String("input", inputArg(args)))
			res, err := transcode.Check(cmd.Context(), in, a.options(), logger)
			if err != nil {
				logger.Error("check failed", zap.Error(err))
				return err
			}
			if !res.Changed() {
				return nil
			}

			out := cmd.OutOrStdout()
			if err := transcode.WriteDiff(out, res.Diffs, isTerminal(out)); err != nil {
				return err
			}
			return transcode.ErrNotNormalized
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
