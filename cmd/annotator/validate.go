package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkoziy/genome/annotator/internal/catalog"
)

func validateCommand(opts *rootOptions) *cobra.Command {
	var checkFiles bool

	cmd := &cobra.Command{
		Use:   "validate [database.tsv]",
		Short: "Validate a database table without annotating",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfg.Database
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no database table given")
			}
			if cmd.Flags().Changed("check-files") {
				opts.cfg.CheckFiles = checkFiles
			}

			entries, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}
			if err := catalog.Validate(entries); err != nil {
				return err
			}
			if opts.cfg.CheckFiles {
				if err := catalog.CheckFiles(entries); err != nil {
					return err
				}
			}

			regionTypes := make(map[string]int)
			var order []string
			for _, e := range entries {
				if _, ok := regionTypes[e.RegionType]; !ok {
					order = append(order, e.RegionType)
				}
				regionTypes[e.RegionType]++
			}
			opts.logger.Debug("Database table is valid", zap.String("file", path), zap.Int("entries", len(entries)))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d entries, %d region types\n", path, len(entries), len(order))
			for _, rt := range order {
				fmt.Fprintf(out, "  %s: %d entries\n", rt, regionTypes[rt])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkFiles, "check-files", false, "Also check that all reference files exist")
	return cmd
}
