package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_runs_start_time ON annotation_runs(start_time DESC)",
			"CREATE INDEX IF NOT EXISTS idx_entries_run_id ON annotation_entries(run_id)",
			"CREATE INDEX IF NOT EXISTS idx_entries_region_source ON annotation_entries(region_type, source)",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"DROP INDEX IF EXISTS idx_runs_start_time",
			"DROP INDEX IF EXISTS idx_entries_run_id",
			"DROP INDEX IF EXISTS idx_entries_region_source",
		}

		for _, idx := range indexes {
			if _, err := db.ExecContext(ctx, idx); err != nil {
				return err
			}
		}

		return nil
	})
}
