// Package migrate applies the embedded SQL migrations over database/sql.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrator applies migrations found in an fs.FS.
type Migrator struct {
	db     *sql.DB
	files  fs.FS
	logger *slog.Logger
}

// Open connects to PostgreSQL through lib/pq.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// New creates a Migrator.
func New(db *sql.DB, files fs.FS, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, files: files, logger: logger}
}

// Versions lists migration versions in apply order.
func (m *Migrator) Versions() ([]string, error) {
	entries, err := fs.ReadDir(m.files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var versions []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, upSuffix) {
			versions = append(versions, strings.TrimSuffix(name, upSuffix))
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// Up applies every pending migration and returns the versions applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	versions, err := m.Versions()
	if err != nil {
		return nil, err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, v := range versions {
		if applied[v] {
			continue
		}
		if err := m.run(ctx, v+upSuffix, `INSERT INTO schema_migrations (version) VALUES ($1)`, v); err != nil {
			return done, err
		}
		m.logger.Info("migration applied", slog.String("version", v))
		done = append(done, v)
	}
	return done, nil
}

// Down reverts up to steps applied migrations, newest first.
func (m *Migrator) Down(ctx context.Context, steps int) ([]string, error) {
	versions, err := m.Versions()
	if err != nil {
		return nil, err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var done []string
	for i := len(versions) - 1; i >= 0 && len(done) < steps; i-- {
		v := versions[i]
		if !applied[v] {
			continue
		}
		if err := m.run(ctx, v+downSuffix, `DELETE FROM schema_migrations WHERE version = $1`, v); err != nil {
			return done, err
		}
		m.logger.Info("migration reverted", slog.String("version", v))
		done = append(done, v)
	}
	return done, nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]bool, error) {
	if _, err := m.db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// run executes one migration file and its bookkeeping statement in a transaction.
func (m *Migrator) run(ctx context.Context, file, bookkeeping, version string) error {
	body, err := fs.ReadFile(m.files, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", file, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("apply %s: %w", file, err)
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		return fmt.Errorf("record %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", file, err)
	}
	return nil
}
