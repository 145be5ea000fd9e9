package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oleg578/streamcsv/internal/transcode"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var output string

	normalizeCmd := &cobra.Command{
		Use:   "normalize [input]",
		Short: "Rewrite CSV with minimal quoting and \\n line endings",
		Long: `Rewrite CSV with minimal quoting and \n line endings.

Reads from the named file or stdin and writes to --output or stdout.

Example:
  csvcodec normalize data.csv -o clean.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			in, err := openInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			defer in.Close()

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = fmt.Errorf("close output: %w", cerr)
					}
				}()
				out = f
			}

			logger := a.logger.With(zap.String("input", inputArg(args)), zap.String("output", output))
			_, err = transcode.Normalize(cmd.Context(), in, out, a.options(), logger)
			if err != nil {
				logger.Error("normalize failed", zap.Error(err))
			}
			return err
		},
	}

	normalizeCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return normalizeCmd
}
