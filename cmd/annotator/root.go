package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/annotator/internal/config"
	"github.com/mkoziy/genome/annotator/internal/logging"
)

// rootOptions is shared by all subcommands. cfg and logger are ready once
// the persistent pre-run hook has completed.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

// RootCommand creates and returns the root command.
func RootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "annotator",
		Short:         "Annotate genomic intervals with overlapping and nearby features",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: console, json")

	rootCmd.AddCommand(
		annotateCommand(opts),
		validateCommand(opts),
		historyCommand(opts),
	)
	return rootCmd
}

// initialize loads the configuration and builds the logger. Flags set on
// the command line take precedence over the file.
func (o *rootOptions) initialize(cmd *cobra.Command) error {
	if o.configPath != "" {
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		o.cfg = cfg
	} else {
		cfg := config.DefaultConfig()
		o.cfg = &cfg
	}

	if cmd.Flags().Changed("log-level") {
		o.cfg.Logging.Level = o.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		o.cfg.Logging.Format = o.logFormat
	}

	logger, err := logging.New(o.cfg.Logging)
	if err != nil {
		return err
	}
	o.logger = logger
	return nil
}
