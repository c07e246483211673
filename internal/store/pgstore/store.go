// Package pgstore is a store.Backend on PostgreSQL. Each key is one row of
// circle_sequences; Update locks the row for the duration of a transaction.
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/safetrip/travel-circle/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a PostgreSQL-backed store.Backend.
type Store struct {
	db *sql.DB
}

var _ store.Backend = (*Store)(nil)

// Open connects to dsn, verifies the connection and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// applyMigrations brings the schema up to date. The migrate instance is not
// closed because that would close db as well.
func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("pgstore: migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("pgstore: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("pgstore: migrate up: %w", err)
	}

	version, _, _ := m.Version()
	log.Printf("[store] postgres schema at version %d", version)
	return nil
}

// Get returns the value for key, or nil.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM circle_sequences WHERE key = $1`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: get %s: %w", key, err)
	}
	return value, nil
}

// Update inserts a placeholder row if needed, locks it with
// SELECT ... FOR UPDATE, applies fn and writes the result before commit.
func (s *Store) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgstore: begin: %w", err)
	}
	defer tx.Rollback()

	const ensure = `
		INSERT INTO circle_sequences (key, value)
		VALUES ($1, NULL)
		ON CONFLICT (key) DO NOTHING`
	if _, err := tx.ExecContext(ctx, ensure, key); err != nil {
		return fmt.Errorf("pgstore: ensure %s: %w", key, err)
	}

	var current []byte
	const lock = `SELECT value FROM circle_sequences WHERE key = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lock, key).Scan(&current); err != nil {
		return fmt.Errorf("pgstore: lock %s: %w", key, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	const write = `UPDATE circle_sequences SET value = $2, updated_at = NOW() WHERE key = $1`
	if _, err := tx.ExecContext(ctx, write, key, next); err != nil {
		return fmt.Errorf("pgstore: write %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgstore: commit %s: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
