package repository

import (
	"fmt"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDriver() string {
	return getEnv("DB_DRIVER", "pgx")
}

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)
}

// setupTestDB connects to the integration database and migrates it. The
// test is skipped when no database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	driver := testDriver()
	db, err := sqlx.Connect(driver, testDSN())
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}

	if err := RunMigrations(db.DB, driver); err != nil {
		db.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func insertUserFixture(t *testing.T, db *sqlx.DB, id, email string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'hash')`, id, email)
	if err != nil {
		t.Fatalf("Failed to create user fixture: %v", err)
	}
}
