// FilePath: internal/repository/postgres/postgres.sensor.go
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/itsatony/senser/internal/database"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	"github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

const uniqueViolation = "23505"

type SensorRepo struct {
	PostgresBaseRepo
}

var _ repository.SensorRepository = (*SensorRepo)(nil)

func NewSensorRepository(db database.DB, timeout time.Duration) *SensorRepo {
	return &SensorRepo{PostgresBaseRepo: PostgresBaseRepo{db: db, timeout: timeout}}
}

// InitializeSchema creates the sensors table when it does not exist yet.
func (r *SensorRepo) InitializeSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS sensors (
			id SERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := r.ExecContext(ctx, query); err != nil {
		return err
	}
	nuts.L.Infof("[PostgresDB] Schema ready")
	return nil
}

func (r *SensorRepo) Create(ctx context.Context, name string) (*models.SensorRecord, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	record := &models.SensorRecord{}
	query := `
		INSERT INTO sensors (name)
		VALUES ($1)
		RETURNING id, name, joined_at`

	err := r.db.GetDB().GetContext(ctx, record, query, name)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, errors.NewConflictError("Sensor with same name already registered", err)
		}
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to create sensor", err)
	}
	return record, nil
}

func (r *SensorRepo) Get(ctx context.Context, id int64) (*models.SensorRecord, error) {
	return r.getOne(ctx, `SELECT id, name, joined_at FROM sensors WHERE id = $1`, id)
}

func (r *SensorRepo) GetByName(ctx context.Context, name string) (*models.SensorRecord, error) {
	return r.getOne(ctx, `SELECT id, name, joined_at FROM sensors WHERE name = $1`, name)
}

func (r *SensorRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.SensorRecord, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	record := &models.SensorRecord{}
	err := r.db.GetDB().GetContext(ctx, record, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("Sensor not found", err)
		}
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to get sensor", err)
	}
	return record, nil
}

func (r *SensorRepo) List(ctx context.Context, offset, limit int) ([]*models.SensorRecord, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	records := []*models.SensorRecord{}
	query := `SELECT id, name, joined_at FROM sensors ORDER BY id LIMIT $1 OFFSET $2`

	err := r.db.GetDB().SelectContext(ctx, &records, query, limit, offset)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to list sensors", err)
	}
	return records, nil
}

func (r *SensorRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM sensors WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to get rows affected", err)
	}
	if rows == 0 {
		return errors.NewNotFoundError("Sensor not found", nil)
	}
	return nil
}
