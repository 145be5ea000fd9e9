// Package cmd implements the csvcodec command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oleg578/streamcsv/internal/config"
	"github.com/oleg578/streamcsv/internal/logging"
	"github.com/oleg578/streamcsv/internal/transcode"
)

// app carries state shared by subcommands once the root pre-run has loaded it.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) options() transcode.Options {
	return transcode.Options{
		Strict:      a.cfg.Reader.Strict,
		ReuseRecord: a.cfg.Reader.ReuseRecord,
	}
}

// NewRootCmd builds the csvcodec root command with its subcommands.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "csvcodec",
		Short: "Streaming CSV normalizer and inspector",
		Long: `csvcodec reads CSV row by row and either rewrites it with minimal
quoting or reports its shape. Input accepts \n, \r\n and \r line endings;
output always uses \n.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().WithConfigPath(configPath).Load()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.Bool("strict", false, "fail on a quoted field left open at end of input")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: json or console")

	rootCmd.AddCommand(newNormalizeCmd(a), newInspectCmd(a), newCheckCmd(a))
	return rootCmd
}

// applyFlags overrides cfg with flags set explicitly on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("strict") {
		strict, err := flags.GetBool("strict")
		if err != nil {
			return err
		}
		cfg.Reader.Strict = strict
	}
	if flags.Changed("log-level") {
		level, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.Log.Level = level
	}
	if flags.Changed("log-format") {
		format, err := flags.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.Log.Format = format
	}
	if flags.Changed("head") {
		head, err := flags.GetInt("head")
		if err != nil {
			return err
		}
		cfg.Inspect.Head = head
	}
	return cfg.Validate()
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// openInput returns the named file, or the command's stdin for "" and "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
