// Package sqlite implements store.Directory on a local SQLite file
// (standalone mode, the default).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"github.com/Artemis43/telegram-support-bot/internal/store"
)

// Directory implements store.Directory backed by SQLite.
type Directory struct {
	db *sql.DB
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
}

// Open opens (creating if needed) the SQLite database at path and applies
// pending migrations. busy_timeout keeps concurrent webhook writers from
// failing immediately on the file lock.
func Open(path string) (*Directory, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer; a pool of connections just trades the
	// file lock around. One connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Directory{db: db}, nil
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
	src, err := store.MigrationSource("sqlite")
	if err != nil {
		return nil, err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("init sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// NewMigrator opens the database at path and returns a migrator for manual
// migration control (the migrate CLI subcommand).
func NewMigrator(path string) (*migrate.Migrate, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return newMigrator(db)
}

func (d *Directory) Create(ctx context.Context, m store.Mapping) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO user_threads (chat_id, display_name, thread_id) VALUES (?, ?, ?)`,
		m.ChatID, m.DisplayName, m.ThreadID,
	)
	if isConstraintViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert mapping for chat %d: %w", m.ChatID, err)
	}
	return nil
}

func (d *Directory) ThreadByChat(ctx context.Context, chatID int64) (int64, bool, error) {
	var threadID int64
	err := d.db.QueryRowContext(ctx,
		`SELECT thread_id FROM user_threads WHERE chat_id = ?`, chatID,
	).Scan(&threadID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup thread for chat %d: %w", chatID, err)
	}
	return threadID, true, nil
}

func (d *Directory) ChatByThread(ctx context.Context, threadID int64) (int64, bool, error) {
	var chatID int64
	err := d.db.QueryRowContext(ctx,
		`SELECT chat_id FROM user_threads WHERE thread_id = ?`, threadID,
	).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup chat for thread %d: %w", threadID, err)
	}
	return chatID, true, nil
}

func (d *Directory) Close() error {
	return d.db.Close()
}

// isConstraintViolation reports whether err is a unique/primary key conflict.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlitelib.SQLITE_CONSTRAINT,
		sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
