package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkoziy/genome/annotator/internal/repositories"
)

func historyCommand(opts *rootOptions) *cobra.Command {
	var (
		dsn     string
		limit   int
		entries bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent annotation runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("ledger") {
				opts.cfg.Ledger.DSN = dsn
			}
			if opts.cfg.Ledger.DSN == "" {
				return fmt.Errorf("no ledger configured")
			}

			db, err := openLedger(cmd, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := repositories.ListRuns(cmd.Context(), db, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSTARTED\tSTATUS\tCOMPLETED\tSKIPPED\tHITS\tDURATION\tBASE")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
					run.RunID, run.StartTime.Format(time.DateTime), run.Status,
					run.EntriesCompleted, run.EntriesSkipped, run.HitsTotal,
					run.Duration().Round(time.Millisecond), run.BaseFile)
				if run.ErrorLog != nil {
					fmt.Fprintf(w, "\terror: %s\n", *run.ErrorLog)
				}
				if entries {
					for _, e := range run.Entries {
						fmt.Fprintf(w, "\t  row %d\t%s\t%d\t%s/%s\t\t%dms\t%s\n",
							e.Row, e.State, e.Hits, e.RegionType, e.Source, e.DurationMS, e.Filename)
					}
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dsn, "ledger", "", "SQLite DSN of the run ledger")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVar(&entries, "entries", false, "Also show the entries of each run")
	return cmd
}
