package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoziy/genome/annotator/internal/database"
)

func TestRunMigrationsIsRepeatable(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db, nil))
	require.NoError(t, RunMigrations(ctx, db, nil))

	var tables []string
	err = db.NewSelect().
		ColumnExpr("name").
		TableExpr("sqlite_master").
		Where("type = 'table'").
		Where("name LIKE 'annotation_%'").
		OrderExpr("name").
		Scan(ctx, &tables)
	require.NoError(t, err)
	assert.Equal(t, []string{"annotation_entries", "annotation_runs"}, tables)
}
