package main

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/annotator/internal/annotator"
	"github.com/mkoziy/genome/annotator/internal/config"
	"github.com/mkoziy/genome/annotator/internal/database"
	"github.com/mkoziy/genome/annotator/internal/metrics"
	"github.com/mkoziy/genome/annotator/internal/migrations"
)

type annotateFlags struct {
	base        string
	database    string
	output      string
	unset       string
	ledger      string
	metricsFile string
	checkFiles  bool
}

func annotateCommand(opts *rootOptions) *cobra.Command {
	flags := &annotateFlags{}

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate a base table with the entries of a database table",
		Long: `Annotate runs every entry of the database table against the base table
and writes the base table with one column per region type. Entries whose
results are already present in the base table are skipped, so the output
can be fed back in as the base table to resume an interrupted run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(cmd, opts.cfg)
			if err := opts.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runAnnotate(cmd, opts.cfg, opts.logger)
		},
	}

	cmd.Flags().StringVarP(&flags.base, "base", "b", "", "Path to the base interval table")
	cmd.Flags().StringVarP(&flags.database, "database", "d", "", "Path to the database table")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Path of the annotated output table")
	cmd.Flags().StringVar(&flags.unset, "unset", "", "Sentinel written for cells without hits")
	cmd.Flags().StringVar(&flags.ledger, "ledger", "", "SQLite DSN of the run ledger")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&flags.checkFiles, "check-files", false, "Check that all reference files exist before annotating")

	return cmd
}

func (f *annotateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("base", &cfg.Base, f.base)
	set("database", &cfg.Database, f.database)
	set("output", &cfg.Output, f.output)
	set("unset", &cfg.UnsetValue, f.unset)
	set("ledger", &cfg.Ledger.DSN, f.ledger)
	set("metrics-file", &cfg.Metrics.Textfile, f.metricsFile)
	if cmd.Flags().Changed("check-files") {
		cfg.CheckFiles = f.checkFiles
	}
}

func runAnnotate(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) error {
	ctx := cmd.Context()

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	options := []annotator.Option{
		annotator.WithLogger(logger),
		annotator.WithMetrics(m),
		annotator.WithUnset(cfg.UnsetValue),
		annotator.WithCheckFiles(cfg.CheckFiles),
	}

	if cfg.Ledger.DSN != "" {
		ledger, err := openLedger(cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer ledger.Close()
		options = append(options, annotator.WithLedger(ledger))
	}

	a := annotator.New(options...)
	if err := a.LoadBase(cfg.Base); err != nil {
		return err
	}
	if err := a.LoadDatabase(cfg.Database); err != nil {
		return err
	}

	summary, annotateErr := a.Annotate(ctx)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics textfile", zap.String("file", cfg.Metrics.Textfile), zap.Error(err))
		}
	}
	if annotateErr != nil {
		return annotateErr
	}

	if err := a.Table().WriteFile(cfg.Output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Annotated %s: %d entries completed, %d skipped, %d hits in %s\n",
		cfg.Output, summary.Completed, summary.Skipped, summary.Hits, summary.Elapsed.Round(time.Millisecond))
	if summary.RunID != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", summary.RunID)
	}
	return nil
}

// openLedger opens and migrates the run ledger.
func openLedger(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (*bun.DB, error) {
	db, err := database.NewDB(cfg.Ledger.DSN, cfg.Ledger.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	if err := migrations.RunMigrations(cmd.Context(), db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return db, nil
}
