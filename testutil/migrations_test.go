package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/book-rental/backend/migrations"
	"github.com/pkordes/book-rental/backend/testutil"
)

var tables = []string{"users", "books", "reservations"}

// TestMigrations applies every migration, checks the tables exist, rolls the
// schema all the way back and checks they are gone.
// Skipped when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	provider, err := migrations.NewProvider(db)
	require.NoError(t, err)
	ctx := context.Background()

	// Another package's TestMain may already have migrated this shared
	// database, so start from version 0.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 3)
	for _, table := range tables {
		assert.True(t, tableExists(t, db, table), "expected table %q to exist", table)
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range tables {
		assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
	}

	// Leave the schema migrated for whoever runs next.
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)
}

// TestMigrations_AvailabilityCheck verifies the books table refuses an
// available count above stock.
func TestMigrations_AvailabilityCheck(t *testing.T) {
	db := testutil.NewSQLDB(t)
	_, err := migrations.Up(context.Background(), db)
	require.NoError(t, err)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(context.Background(),
		`INSERT INTO books (external_id, title, stock_quantity, available_quantity) VALUES (900001, 'Overfull', 1, 2)`)
	assert.Error(t, err)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}
