package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/butecobot/challenge-api/src/utils"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var migrationPath = "file://" + filepath.Join(utils.FindProjectRoot(), "migrations")

// SetupTestDB opens the database named by TEST_DB_URL and migrates it up.
// Tests are skipped when no test database is configured.
func SetupTestDB(t *testing.T) *gorm.DB {
	// .env is optional; CI provides TEST_DB_URL directly.
	_ = godotenv.Load(filepath.Join(utils.FindProjectRoot(), ".env"))

	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	migration, err := migrate.New(migrationPath, dsn)
	if err != nil {
		t.Fatalf("failed to create migrate: %v", err)
	}
	if err := migration.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("failed to run migration up: %v", err)
	}

	return db
}

// CleanupTestDB removes all rows written by the test.
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	if err := db.Exec("DELETE FROM challenge").Error; err != nil {
		t.Logf("Warning: Failed to clean up test data: %v", err)
	}
}
