package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"pocketbook/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// CollectionsMigrations is the embedded schema of the collections table.
func CollectionsMigrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// RunMigrations applies every pending migration in source to the database at
// dbPath on its own connection and returns the resulting schema version.
func RunMigrations(dbPath string, source fs.FS, logger *log.Logger) (uint, error) {
	if logger == nil {
		logger = log.Discard()
	}

	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(source, ".")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	from, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("Schema up to date", log.FieldOperation, log.OpMigrate, log.FieldVersion, from)
			return from, nil
		}
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	to, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return to, fmt.Errorf("schema version %d left dirty", to)
	}
	logger.Info("Schema migrated",
		log.FieldOperation, log.OpMigrate,
		"from_version", from,
		log.FieldVersion, to)
	return to, nil
}
