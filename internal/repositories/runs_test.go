package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/mkoziy/genome/annotator/internal/database"
	"github.com/mkoziy/genome/annotator/internal/migrations"
	"github.com/mkoziy/genome/annotator/internal/models"
)

func newLedger(t *testing.T) *bun.DB {
	t.Helper()
	db, err := database.NewDB(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.RunMigrations(context.Background(), db, nil))
	return db
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newLedger(t)

	run, err := StartRun(ctx, db, "base.tsv", "db.tsv")
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, models.RunRunning, run.Status)
	assert.False(t, run.Finished())

	require.NoError(t, RecordEntry(ctx, db, run, &models.EntryRecord{
		Row: 1, Filename: "genes.bed", RegionType: "genes", Source: "refseq",
		AnnotationBy: models.AnnotateByName, State: models.EntryCompleted, Hits: 4, Bases: 2,
	}))
	require.NoError(t, RecordEntry(ctx, db, run, &models.EntryRecord{
		Row: 2, Filename: "genes2.bed", RegionType: "genes", Source: "ensembl",
		AnnotationBy: models.AnnotateByName, State: models.EntrySkipped,
	}))
	require.NoError(t, FinishRun(ctx, db, run, models.RunCompleted, nil))

	got, err := GetRun(ctx, db, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, got.Status)
	assert.Equal(t, 1, got.EntriesCompleted)
	assert.Equal(t, 1, got.EntriesSkipped)
	assert.Equal(t, 4, got.HitsTotal)
	require.NotNil(t, got.EndTime)
	assert.Nil(t, got.ErrorLog)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "genes.bed", got.Entries[0].Filename)
	assert.Equal(t, models.EntrySkipped, got.Entries[1].State)
}

func TestFinishRunKeepsError(t *testing.T) {
	ctx := context.Background()
	db := newLedger(t)

	run, err := StartRun(ctx, db, "base.tsv", "db.tsv")
	require.NoError(t, err)
	require.NoError(t, FinishRun(ctx, db, run, models.RunFailed, errors.New("missing file")))

	got, err := GetRun(ctx, db, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, got.Status)
	require.NotNil(t, got.ErrorLog)
	assert.Equal(t, "missing file", *got.ErrorLog)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	db := newLedger(t)

	for i := 0; i < 3; i++ {
		run, err := StartRun(ctx, db, "base.tsv", "db.tsv")
		require.NoError(t, err)
		require.NoError(t, FinishRun(ctx, db, run, models.RunCompleted, nil))
	}

	runs, err := ListRuns(ctx, db, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.True(t, runs[0].ID > runs[1].ID)
}

func TestRecordEntryUpdatesRunningEntry(t *testing.T) {
	ctx := context.Background()
	db := newLedger(t)

	run, err := StartRun(ctx, db, "base.tsv", "db.tsv")
	require.NoError(t, err)

	rec := &models.EntryRecord{
		Row: 1, Filename: "genes.bed", RegionType: "genes", Source: "refseq",
		AnnotationBy: models.AnnotateByName, State: models.EntryRunning,
	}
	require.NoError(t, RecordEntry(ctx, db, run, rec))
	require.NotZero(t, rec.ID)
	assert.Equal(t, 0, run.EntriesCompleted)

	rec.State = models.EntryCompleted
	rec.Hits = 3
	rec.Bases = 2
	rec.DurationMS = 12
	require.NoError(t, RecordEntry(ctx, db, run, rec))

	got, err := GetRun(ctx, db, run.RunID)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, models.EntryCompleted, got.Entries[0].State)
	assert.Equal(t, 3, got.Entries[0].Hits)
	assert.Equal(t, int64(12), got.Entries[0].DurationMS)
	assert.Equal(t, 1, got.EntriesCompleted)
	assert.Equal(t, 3, got.HitsTotal)
}

func TestRecordEntryRollbackLeavesRunUnchanged(t *testing.T) {
	ctx := context.Background()
	db := newLedger(t)

	run, err := StartRun(ctx, db, "base.tsv", "db.tsv")
	require.NoError(t, err)

	// Without the runs table the roll-up fails after the entry insert.
	_, err = db.NewDropTable().Model((*models.AnnotationRun)(nil)).Exec(ctx)
	require.NoError(t, err)

	rec := &models.EntryRecord{
		Row: 1, Filename: "genes.bed", RegionType: "genes",
		AnnotationBy: models.AnnotateByName, State: models.EntryCompleted, Hits: 5,
	}
	require.Error(t, RecordEntry(ctx, db, run, rec))
	assert.Equal(t, 0, run.EntriesCompleted)
	assert.Equal(t, 0, run.HitsTotal)
	assert.Zero(t, rec.ID)

	count, err := db.NewSelect().Model((*models.EntryRecord)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
