package app

import (
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationUp applies the challenge schema migrations. The service cannot
// run against a partially migrated database, so failure is fatal.
func MigrationUp(databaseDSN string, migrationPath string) {
	migration, err := migrate.New(migrationPath, databaseDSN)
	if err != nil {
		log.Fatalf("failed to initialize challenge schema migration: %v", err)
	}

	if err := migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("failed to apply challenge schema migrations: %v", err)
	}
}

// MigrationDown rolls the challenge schema all the way back; used by
// operational tooling, never at boot.
func MigrationDown(databaseDSN string, migrationPath string) {
	migration, err := migrate.New(migrationPath, databaseDSN)
	if err != nil {
		log.Fatalf("failed to initialize challenge schema migration: %v", err)
	}

	if err := migration.Down(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("failed to roll back challenge schema migrations: %v", err)
	}
}
