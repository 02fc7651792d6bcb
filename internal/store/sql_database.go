package store

import (
	"database/sql"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
	"github.com/khsolheim/tms-mobile-sync/migrations"
)

// DB wraps the raw *sql.DB handle together with the application logger so
// repositories can log at the query level.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies all pending schema migrations embedded in the migrations
// package to the underlying database.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
