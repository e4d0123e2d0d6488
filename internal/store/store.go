// Package store defines the chat↔thread directory that backs message routing.
// Concrete backends live in the sqlite and pg subpackages.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by Create when a row for the chat or thread
// already exists. Callers treat this as "someone else won the insert race".
var ErrDuplicate = errors.New("mapping already exists")

// Mapping links one private chat to its forum topic in the operator group.
// Rows are written once at bootstrap and never updated or deleted.
type Mapping struct {
	ChatID      int64
	DisplayName string
	ThreadID    int64
	CreatedAt   time.Time
}

// Directory is the bidirectional chat↔thread lookup table.
// Lookup misses are reported as ok=false, not as errors.
// Implementations must be safe for concurrent use; duplicate detection on
// Create comes from the database's unique keys, not from a read-then-write.
type Directory interface {
	Create(ctx context.Context, m Mapping) error
	ThreadByChat(ctx context.Context, chatID int64) (threadID int64, ok bool, err error)
	ChatByThread(ctx context.Context, threadID int64) (chatID int64, ok bool, err error)
	Close() error
}

// Config selects and parameterizes the storage backend.
// PostgresDSN comes from the environment only (secret, never in config.json).
type Config struct {
	SQLitePath  string
	PostgresDSN string
}

// Backend returns "postgres" when a DSN is configured, "sqlite" otherwise.
func (c Config) Backend() string {
	if c.PostgresDSN != "" {
		return "postgres"
	}
	return "sqlite"
}
