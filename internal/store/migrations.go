package store

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// MigrationSource returns the embedded migration files for a backend
// ("sqlite" or "postgres") as a golang-migrate source driver.
func MigrationSource(backend string) (source.Driver, error) {
	switch backend {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
	return iofs.New(migrationFS, "migrations/"+backend)
}
