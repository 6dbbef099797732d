package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mkoziy/genome/annotator/internal/models"
)

// StartRun inserts a new run in the running state.
func StartRun(ctx context.Context, db bun.IDB, baseFile, databaseFile string) (*models.AnnotationRun, error) {
	run := &models.AnnotationRun{
		RunID:        uuid.NewString(),
		BaseFile:     baseFile,
		DatabaseFile: databaseFile,
		StartTime:    time.Now(),
		Status:       models.RunRunning,
	}
	if _, err := db.NewInsert().Model(run).Exec(ctx); err != nil {
		return nil, err
	}
	return run, nil
}

// RecordEntry stores the current state of one entry and rolls completed
// and skipped entries up into the run, in a single transaction. A record
// that was stored before is updated in place, so an entry can be recorded
// as running and later as completed or failed.
func RecordEntry(ctx context.Context, db *bun.DB, run *models.AnnotationRun, rec *models.EntryRecord) error {
	rec.RunID = run.RunID
	totals := *run
	switch rec.State {
	case models.EntryCompleted:
		totals.EntriesCompleted++
		totals.HitsTotal += rec.Hits
	case models.EntrySkipped:
		totals.EntriesSkipped++
	}

	insert := rec.ID == 0
	err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if insert {
			if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
				return err
			}
		} else {
			if _, err := tx.NewUpdate().
				Model(rec).
				Column("state", "hits", "bases", "duration_ms").
				WherePK().
				Exec(ctx); err != nil {
				return err
			}
		}

		if totals.EntriesCompleted == run.EntriesCompleted && totals.EntriesSkipped == run.EntriesSkipped {
			return nil
		}
		_, err := tx.NewUpdate().
			Model(&totals).
			Column("entries_completed", "entries_skipped", "hits_total").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		if insert {
			rec.ID = 0
		}
		return err
	}

	run.EntriesCompleted = totals.EntriesCompleted
	run.EntriesSkipped = totals.EntriesSkipped
	run.HitsTotal = totals.HitsTotal
	return nil
}

// FinishRun moves a run to its final status. A non-nil cause is kept in
// the run's error log.
func FinishRun(ctx context.Context, db bun.IDB, run *models.AnnotationRun, status models.RunStatus, cause error) error {
	run.Status = status
	if run.EndTime == nil {
		now := time.Now()
		run.EndTime = &now
	}
	if cause != nil {
		msg := cause.Error()
		run.ErrorLog = &msg
	}
	_, err := db.NewUpdate().
		Model(run).
		Column("status", "end_time", "error_log").
		WherePK().
		Exec(ctx)
	return err
}

// GetRun fetches a run with its entries by run ID.
func GetRun(ctx context.Context, db bun.IDB, runID string) (*models.AnnotationRun, error) {
	run := new(models.AnnotationRun)
	err := db.NewSelect().
		Model(run).
		Where("ar.run_id = ?", runID).
		Relation("Entries", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ae.row_num ASC")
		}).
		Scan(ctx)
	return run, err
}

// ListRuns returns the most recent runs, newest first, with their entries.
func ListRuns(ctx context.Context, db bun.IDB, limit int) ([]*models.AnnotationRun, error) {
	var runs []*models.AnnotationRun
	err := db.NewSelect().
		Model(&runs).
		Relation("Entries", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("ae.row_num ASC")
		}).
		OrderExpr("ar.start_time DESC, ar.id DESC").
		Limit(limit).
		Scan(ctx)
	return runs, err
}
