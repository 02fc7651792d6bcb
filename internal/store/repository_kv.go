// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TMS AS

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/khsolheim/tms-mobile-sync/internal/logger"
)

type kvRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewKeyValueRepository constructs the sqlite-backed [KeyValueRepository]
// over the kv_blobs table.
func NewKeyValueRepository(db *DB, log *logger.Logger) KeyValueRepository {
	return &kvRepository{db: db, logger: log}
}

// Get implements [KeyValueRepository].
func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := sq.
		Select("value").
		From("kv_blobs").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, nil
}

// Put implements [KeyValueRepository] as an upsert keyed on the storage key.
func (r *kvRepository) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := sq.
		Insert("kv_blobs").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("key", key).Msg("kv put failed")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}

// Delete implements [KeyValueRepository]. Missing keys are not an error.
func (r *kvRepository) Delete(ctx context.Context, key string) error {
	query, args, err := sq.
		Delete("kv_blobs").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}
