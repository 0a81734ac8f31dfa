package timescale

import (
	"context"
	"database/sql"
	"time"

	"github.com/itsatony/senser/internal/database"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/repository"
)

type TimeScaleBaseRepo struct {
	db      database.DB
	timeout time.Duration
}

func (r *TimeScaleBaseRepo) Name() string {
	return repository.StoreTimescale
}

func (r *TimeScaleBaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()
	result, err := r.db.GetDB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to execute query", err)
	}
	return result, nil
}

func (r *TimeScaleBaseRepo) Ping(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to ping database", err)
	}
	return nil
}

func (r *TimeScaleBaseRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to close database", err)
	}
	return nil
}
