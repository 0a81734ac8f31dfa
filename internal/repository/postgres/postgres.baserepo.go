package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/itsatony/senser/internal/database"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/repository"
)

type PostgresBaseRepo struct {
	db      database.DB
	timeout time.Duration
}

func (r *PostgresBaseRepo) Name() string {
	return repository.StorePostgres
}

func (r *PostgresBaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()
	result, err := r.db.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to execute query", err)
	}
	return result, nil
}

func (r *PostgresBaseRepo) Ping(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to ping database", err)
	}
	return nil
}

func (r *PostgresBaseRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to close database", err)
	}
	return nil
}
