// Package pg implements store.Directory backed by Postgres (managed mode).
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Artemis43/telegram-support-bot/internal/store"
)

// pgUniqueViolation is the Postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// PGDirectory implements store.Directory backed by Postgres.
type PGDirectory struct {
	db *sql.DB
}

// OpenDB opens a Postgres connection pool via the pgx stdlib driver.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPGDirectory creates the directory and applies pending migrations.
func NewPGDirectory(dsn string) (*PGDirectory, error) {
	db, err := OpenDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &PGDirectory{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := store.MigrationSource("postgres")
	if err != nil {
		return nil, err
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("init postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// NewMigrator connects to dsn and returns a migrator for manual migration
// control (the migrate CLI subcommand).
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	db, err := OpenDB(dsn)
	if err != nil {
		return nil, err
	}
	return newMigrator(db)
}

func (d *PGDirectory) Create(ctx context.Context, m store.Mapping) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_threads (chat_id, display_name, thread_id) VALUES ($1, $2, $3)`,
		m.ChatID, m.DisplayName, m.ThreadID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert mapping for chat %d: %w", m.ChatID, err)
	}
	return nil
}

func (d *PGDirectory) ThreadByChat(ctx context.Context, chatID int64) (int64, bool, error) {
	var threadID int64
	err := d.db.QueryRowContext(ctx,
		`SELECT thread_id FROM user_threads WHERE chat_id = $1`, chatID,
	).Scan(&threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup thread for chat %d: %w", chatID, err)
	}
	return threadID, true, nil
}

func (d *PGDirectory) ChatByThread(ctx context.Context, threadID int64) (int64, bool, error) {
	var chatID int64
	err := d.db.QueryRowContext(ctx,
		`SELECT chat_id FROM user_threads WHERE thread_id = $1`, threadID,
	).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup chat for thread %d: %w", threadID, err)
	}
	return chatID, true, nil
}

func (d *PGDirectory) Close() error {
	return d.db.Close()
}
