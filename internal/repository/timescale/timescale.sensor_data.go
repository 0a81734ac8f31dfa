// FilePath: internal/repository/timescale/timescale.sensor_data.go
package timescale

import (
	"context"
	"time"

	"github.com/itsatony/senser/internal/database"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

type SensorDataRepo struct {
	TimeScaleBaseRepo
}

var _ repository.SensorDataRepository = (*SensorDataRepo)(nil)

func NewSensorDataRepository(db database.DB, timeout time.Duration) *SensorDataRepo {
	return &SensorDataRepo{TimeScaleBaseRepo: TimeScaleBaseRepo{db: db, timeout: timeout}}
}

// InitializeSchema creates the readings hypertable.
func (r *SensorDataRepo) InitializeSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sensor_data (
			sensor_id INTEGER NOT NULL,
			temperature DOUBLE PRECISION,
			humidity DOUBLE PRECISION,
			velocity DOUBLE PRECISION,
			battery_level DOUBLE PRECISION,
			last_seen TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (sensor_id, last_seen)
		)`,
		`SELECT create_hypertable('sensor_data', 'last_seen', if_not_exists => TRUE)`,
	}

	for _, query := range queries {
		if _, err := r.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	nuts.L.Infof("[TimescaleDB] Schema ready")
	return nil
}

// UpsertReading stores a reading under (sensor_id, last_seen). A second reading
// at the same instant replaces every metric of the first.
func (r *SensorDataRepo) UpsertReading(ctx context.Context, sensorID int64, reading *models.Reading) error {
	query := `
		INSERT INTO sensor_data (sensor_id, temperature, humidity, velocity, battery_level, last_seen)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sensor_id, last_seen) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			humidity = EXCLUDED.humidity,
			velocity = EXCLUDED.velocity,
			battery_level = EXCLUDED.battery_level`

	_, err := r.ExecContext(ctx, query,
		sensorID,
		reading.Temperature,
		reading.Humidity,
		reading.Velocity,
		reading.BatteryLevel,
		reading.LastSeen.Time,
	)
	return err
}

func (r *SensorDataRepo) GetAggregates(ctx context.Context, sensorID int64, from, to time.Time, bucket models.Bucket) ([]models.SensorAggregate, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	aggregates := []models.SensorAggregate{}
	query := `
		SELECT
			sensor_id,
			time_bucket($2::interval, last_seen) AS bucket,
			AVG(velocity) AS velocity,
			AVG(temperature) AS temperature,
			AVG(humidity) AS humidity
		FROM sensor_data
		WHERE sensor_id = $1 AND last_seen >= $3 AND last_seen <= $4
		GROUP BY sensor_id, bucket
		ORDER BY bucket`

	err := r.db.GetDB().SelectContext(ctx, &aggregates, query, sensorID, bucket.Interval(), from, to)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to get sensor aggregates", err)
	}
	for i := range aggregates {
		aggregates[i].Interval = bucket
	}
	return aggregates, nil
}

func (r *SensorDataRepo) DeleteBySensorID(ctx context.Context, sensorID int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM sensor_data WHERE sensor_id = $1`, sensorID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err == nil {
		nuts.L.Infof("[TimescaleDB] Deleted %d readings of sensor %d", rows, sensorID)
	}
	return nil
}
