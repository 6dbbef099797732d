package annotator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoziy/genome/annotator/internal/database"
	apperrors "github.com/mkoziy/genome/annotator/internal/errors"
	"github.com/mkoziy/genome/annotator/internal/metrics"
	"github.com/mkoziy/genome/annotator/internal/migrations"
	"github.com/mkoziy/genome/annotator/internal/models"
	"github.com/mkoziy/genome/annotator/internal/repositories"
)

const catalogHeader = "FILENAME\tREGION.TYPE\tSOURCE\tANNOTATION.BY\tMAX.DISTANCE\tDISTANCE.TO\tN.HITS\tNAME.COL\n"

type fixture struct {
	dir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{dir: t.TempDir()}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, basePath, dbPath string, opts ...Option) (*Annotator, Summary) {
	t.Helper()
	a := New(opts...)
	require.NoError(t, a.LoadBase(basePath))
	require.NoError(t, a.LoadDatabase(dbPath))
	summary, err := a.Annotate(context.Background())
	require.NoError(t, err)
	return a, summary
}

func render(t *testing.T, a *Annotator) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, a.Table().Write(&buf))
	return buf.String()
}

func TestAnnotateOverlapScenario(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	f.write(t, "ref.bed", "chr1\t150\t160\tfoo\t0\t+\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "ref.bed")+"\tgenes\tgeneA\tSOURCE\t0\tREGION\tALL\t\n")

	a, summary := run(t, base, db)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 1, summary.Hits)

	v, ok := a.Table().Annotation("chr1_100_200", "genes")
	require.True(t, ok)
	assert.Equal(t, "geneA(0)", v)
}

func TestAnnotateMidAnchorUpstreamDistanceIsNegative(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	f.write(t, "ref.bed", "chr1\t300\t310\tfoo\t0\t+\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "ref.bed")+"\tgenes\tgenes\tNAME\t200\tMID\tALL\t3\n")

	a, _ := run(t, base, db)
	v, ok := a.Table().Annotation("chr1_100_200", "genes")
	require.True(t, ok)
	// The base lies on the low side of a forward reference, so it is
	// upstream and the distance is negative, not foo(100).
	assert.Equal(t, "foo(-100)", v, "upstream of a forward reference must be negative")
}

func TestAnnotateAppendsSourcesAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\n"+
		"chr1\t100\t200\n"+
		"chr1\t1000\t1100\n"+
		"chr2\t100\t200\n")
	f.write(t, "liver.bed", "chr1\t150\t160\n")
	f.write(t, "heart.bed", "chr1\t120\t130\nchr1\t1050\t1060\n")
	f.write(t, "genes.bed", "chr1\t210\t260\tgeneB\t0\t+\nchr1\t90\t95\tgeneA\t0\t-\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "liver.bed")+"\tenhancers\tliver\tSOURCE\t0\tREGION\tALL\t\n"+
		filepath.Join(f.dir, "heart.bed")+"\tenhancers\theart\tSOURCE\t0\tREGION\tALL\t\n"+
		filepath.Join(f.dir, "genes.bed")+"\tgenes\tgencode\tNAME\t20\tREGION\tCLOSEST\t3\n")

	a, summary := run(t, base, db)
	assert.Equal(t, 3, summary.Completed)

	v, _ := a.Table().Annotation("chr1_100_200", "enhancers")
	assert.Equal(t, "liver(0);heart(0)", v)
	v, _ = a.Table().Annotation("chr1_1000_1100", "enhancers")
	assert.Equal(t, "heart(0)", v)
	_, ok := a.Table().Annotation("chr2_100_200", "enhancers")
	assert.False(t, ok)

	// geneA ends 5bp before the base on the reverse strand; geneB starts
	// 10bp after it on the forward strand.
	v, _ = a.Table().Annotation("chr1_100_200", "genes")
	assert.Equal(t, "geneA(-5)", v)

	first := render(t, a)
	out := f.write(t, "out.tsv", first)

	again, summary := run(t, out, db)
	assert.Equal(t, 0, summary.Completed)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, first, render(t, again))
}

func TestAnnotateZeroHitColumnIsRecomputed(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	f.write(t, "far.bed", "chr9\t100\t200\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "far.bed")+"\tenhancers\tliver\tSOURCE\t0\tREGION\tALL\t\n")

	a, summary := run(t, base, db)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 0, summary.Hits)
	assert.True(t, a.Table().RegionTypePresent("enhancers"))

	out := f.write(t, "out.tsv", render(t, a))
	_, summary = run(t, out, db)
	assert.Equal(t, 1, summary.Completed, "a column without hits is never done")
	assert.Equal(t, 0, summary.Skipped)
}

func TestAnnotateRequiresInputs(t *testing.T) {
	a := New()
	_, err := a.Annotate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrState)

	f := newFixture(t)
	require.NoError(t, a.LoadBase(f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t1\t2\n")))
	_, err = a.Annotate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrState)
}

func TestAnnotateRejectsInvalidCatalog(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	db := f.write(t, "db.tsv", catalogHeader+
		"a.bed\tgenes\tx\tNAME\t0\tREGION\tALL\t\n"+
		"b.bed\tgenes\ty\tNAME\t0\tREGION\tALL\t\n")

	a := New()
	require.NoError(t, a.LoadBase(base))
	require.NoError(t, a.LoadDatabase(db))
	_, err := a.Annotate(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.False(t, a.Table().RegionTypePresent("genes"))
}

func TestAnnotateMissingReferenceFile(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "missing.bed")+"\tgenes\tx\tSOURCE\t0\tREGION\tALL\t\n")

	for _, check := range []bool{false, true} {
		a := New(WithCheckFiles(check))
		require.NoError(t, a.LoadBase(base))
		require.NoError(t, a.LoadDatabase(db))
		_, err := a.Annotate(context.Background())
		assert.ErrorIs(t, err, apperrors.ErrResource)
	}
}

func TestAnnotateStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	f.write(t, "ref.bed", "chr1\t150\t160\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "ref.bed")+"\tgenes\tx\tSOURCE\t0\tREGION\tALL\t\n")

	a := New()
	require.NoError(t, a.LoadBase(base))
	require.NoError(t, a.LoadDatabase(db))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Annotate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, a.Table().RegionTypePresent("genes"))
}

func TestAnnotateRecordsMetricsAndLedger(t *testing.T) {
	ctx := context.Background()
	ledger, err := database.NewDB(":memory:", false)
	require.NoError(t, err)
	defer ledger.Close()
	require.NoError(t, migrations.RunMigrations(ctx, ledger, nil))

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\tgenes\nchr1\t100\t200\tgeneZ(0)\n")
	f.write(t, "genes.bed", "chr1\t150\t160\tgeneA\n")
	f.write(t, "enh.bed", "chr1\t150\t160\nchr1\t170\t180\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "genes.bed")+"\tgenes\tgencode\tNAME\t0\tREGION\tALL\t\n"+
		filepath.Join(f.dir, "enh.bed")+"\tenhancers\tliver\tSOURCE\t0\tREGION\tALL\t\n")

	_, summary := run(t, base, db, WithMetrics(m), WithLedger(ledger))
	require.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Completed)
	assert.Equal(t, 2, summary.Hits)

	series, err := testutil.GatherAndCount(m.Registry(), "annotator_entries_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series, "one series per entry state")

	stored, err := repositories.GetRun(ctx, ledger, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, stored.Status)
	assert.Equal(t, 1, stored.EntriesSkipped)
	assert.Equal(t, 1, stored.EntriesCompleted)
	assert.Equal(t, 2, stored.HitsTotal)
	assert.Equal(t, base, stored.BaseFile)
	require.Len(t, stored.Entries, 2)
	assert.Equal(t, models.EntrySkipped, stored.Entries[0].State)
	assert.Equal(t, models.EntryCompleted, stored.Entries[1].State)
	assert.Equal(t, 1, stored.Entries[1].Bases)
}

func TestAnnotateRecordsFailedEntry(t *testing.T) {
	ctx := context.Background()
	ledger, err := database.NewDB(":memory:", false)
	require.NoError(t, err)
	defer ledger.Close()
	require.NoError(t, migrations.RunMigrations(ctx, ledger, nil))

	f := newFixture(t)
	base := f.write(t, "base.tsv", "#chrom\tstart\tend\nchr1\t100\t200\n")
	db := f.write(t, "db.tsv", catalogHeader+
		filepath.Join(f.dir, "missing.bed")+"\tgenes\tx\tSOURCE\t0\tREGION\tALL\t\n")

	a := New(WithLedger(ledger))
	require.NoError(t, a.LoadBase(base))
	require.NoError(t, a.LoadDatabase(db))
	summary, err := a.Annotate(ctx)
	require.Error(t, err)

	stored, err := repositories.GetRun(ctx, ledger, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, stored.Status)
	require.NotNil(t, stored.ErrorLog)
	require.Len(t, stored.Entries, 1, "the running record is updated in place")
	assert.Equal(t, models.EntryFailed, stored.Entries[0].State)
}
