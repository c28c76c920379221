package repository

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rollbackSchema = "kanso_rollback_test"

// setupScratchSchema returns a connection whose search_path points at an
// empty schema, so migrations can be rolled back without touching the
// tables the other integration tests use.
func setupScratchSchema(t *testing.T) *sqlx.DB {
	t.Helper()

	admin := setupTestDB(t)
	_, err := admin.Exec("DROP SCHEMA IF EXISTS " + rollbackSchema + " CASCADE")
	require.NoError(t, err)
	_, err = admin.Exec("CREATE SCHEMA " + rollbackSchema)
	require.NoError(t, err)

	db, err := sqlx.Connect(testDriver(), testDSN()+"&search_path="+rollbackSchema)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
		admin.Exec("DROP SCHEMA IF EXISTS " + rollbackSchema + " CASCADE")
	})
	return db
}

func tableExists(t *testing.T, db *sqlx.DB, table string) bool {
	t.Helper()

	var exists bool
	err := db.Get(&exists, `SELECT to_regclass($1) IS NOT NULL`, rollbackSchema+"."+table)
	require.NoError(t, err)
	return exists
}

func TestMigrateDown(t *testing.T) {
	db := setupScratchSchema(t)
	driver := testDriver()

	require.NoError(t, RunMigrations(db.DB, driver))
	assert.True(t, tableExists(t, db, "users"))
	assert.True(t, tableExists(t, db, "goals"))

	t.Run("Rolls back one migration at a time", func(t *testing.T) {
		require.NoError(t, MigrateDown(db.DB, driver))
		assert.True(t, tableExists(t, db, "users"))
		assert.False(t, tableExists(t, db, "goals"))

		require.NoError(t, MigrateDown(db.DB, driver))
		assert.False(t, tableExists(t, db, "users"))
	})

	t.Run("Up again restores the schema", func(t *testing.T) {
		require.NoError(t, RunMigrations(db.DB, driver))
		assert.True(t, tableExists(t, db, "users"))
		assert.True(t, tableExists(t, db, "goals"))
	})
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, "postgres", dialectFor("pgx"))
	assert.Equal(t, "postgres", dialectFor("postgres"))
	assert.Equal(t, "sqlite3", dialectFor("sqlite3"))
}
