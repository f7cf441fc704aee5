package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"pocketbook/internal/core"
	"pocketbook/internal/log"

	_ "modernc.org/sqlite"
)

// SQLitePersister stores each persistence key as one row of the
// collections table. Saves run in a single transaction.
type SQLitePersister struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLitePersister(dbPath string, logger *log.Logger) (*SQLitePersister, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger = logger.WithComponent(log.ComponentStorage)
	if _, err := RunMigrations(dbPath, CollectionsMigrations(), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLitePersister{
		db:     db,
		logger: logger,
	}, nil
}

func (p *SQLitePersister) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *SQLitePersister) Load(ctx context.Context) (core.Snapshot, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT name, payload FROM collections`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	payloads := make(map[string][]byte)
	for rows.Next() {
		var name, payload string
		if err := rows.Scan(&name, &payload); err != nil {
			return core.Snapshot{}, fmt.Errorf("scan collection: %w", err)
		}
		payloads[name] = []byte(payload)
	}
	if err := rows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("iterate collections: %w", err)
	}

	p.logger.DebugContext(ctx, "Collections loaded", log.FieldCount, len(payloads))
	return Decode(payloads, p.logger), nil
}

func (p *SQLitePersister) Save(ctx context.Context, snap core.Snapshot) error {
	payloads, err := Encode(snap)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, key := range Keys {
		if _, err := stmt.ExecContext(ctx, key, string(payloads[key])); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetRaw overwrites one key's payload directly.
func (p *SQLitePersister) SetRaw(ctx context.Context, key string, payload []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO collections (name, payload) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
