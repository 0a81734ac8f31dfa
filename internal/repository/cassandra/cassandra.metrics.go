// FilePath: internal/repository/cassandra/cassandra.metrics.go
package cassandra

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	temperatureTable = "temperature_values"
	batteryTable     = "battery_levels"
	typesTable       = "sensor_types"
)

// MetricsRepo appends per-metric facts. Every fact carries its own timeuuid so
// nothing is ever overwritten.
type MetricsRepo struct {
	session  *gocql.Session
	keyspace string
	timeout  time.Duration
}

var _ repository.MetricsRepository = (*MetricsRepo)(nil)

// NewSession opens a session without binding a keyspace, so the keyspace can be
// created by InitializeSchema.
func NewSession(cfg config.CassandraConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	consistency, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
	if err != nil {
		return nil, fmt.Errorf("invalid cassandra consistency: %w", err)
	}
	cluster.Consistency = consistency
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
		cluster.ConnectTimeout = cfg.Timeout
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("error connecting to Cassandra: %w", err)
	}
	nuts.L.Infof("[Cassandra] Connected to %v", cfg.Hosts)
	return session, nil
}

func NewMetricsRepository(session *gocql.Session, keyspace string, timeout time.Duration) *MetricsRepo {
	return &MetricsRepo{session: session, keyspace: keyspace, timeout: timeout}
}

func (r *MetricsRepo) Name() string {
	return repository.StoreCassandra
}

func (r *MetricsRepo) table(name string) string {
	return qualify(r.keyspace, name)
}

func qualify(keyspace, table string) string {
	return keyspace + "." + table
}

// InitializeSchema creates the keyspace and fact tables.
func (r *MetricsRepo) InitializeSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
			WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`, r.keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sensor_id int,
			recorded_at timeuuid,
			temperature double,
			PRIMARY KEY (sensor_id, recorded_at)
		)`, r.table(temperatureTable)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sensor_id int,
			recorded_at timeuuid,
			battery double,
			PRIMARY KEY (sensor_id, recorded_at)
		) WITH CLUSTERING ORDER BY (recorded_at DESC)`, r.table(batteryTable)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			sensor_type text,
			sensor_id int,
			PRIMARY KEY (sensor_type, sensor_id)
		)`, r.table(typesTable)),
	}
	for _, stmt := range statements {
		if err := r.exec(ctx, "failed to initialize schema", stmt); err != nil {
			return err
		}
	}
	nuts.L.Infof("[Cassandra] Keyspace %s ready", r.keyspace)
	return nil
}

func (r *MetricsRepo) exec(ctx context.Context, msg, stmt string, values ...interface{}) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.session.Query(stmt, values...).WithContext(ctx).Exec(); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), msg, err)
	}
	return nil
}

func (r *MetricsRepo) AppendTemperature(ctx context.Context, sensorID int64, temperature float64) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (sensor_id, recorded_at, temperature) VALUES (?, ?, ?)`, r.table(temperatureTable))
	return r.exec(ctx, "failed to append temperature", stmt, sensorID, gocql.TimeUUID(), temperature)
}

func (r *MetricsRepo) AppendBattery(ctx context.Context, sensorID int64, battery float64) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (sensor_id, recorded_at, battery) VALUES (?, ?, ?)`, r.table(batteryTable))
	return r.exec(ctx, "failed to append battery level", stmt, sensorID, gocql.TimeUUID(), battery)
}

func (r *MetricsRepo) AddTypeMembership(ctx context.Context, sensorType string, sensorID int64) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (sensor_type, sensor_id) VALUES (?, ?)`, r.table(typesTable))
	return r.exec(ctx, "failed to record sensor type", stmt, sensorType, sensorID)
}

func (r *MetricsRepo) TemperatureStats(ctx context.Context) ([]models.TemperatureStats, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	stmt := fmt.Sprintf(`SELECT sensor_id, MIN(temperature), MAX(temperature), AVG(temperature)
		FROM %s GROUP BY sensor_id`, r.table(temperatureTable))
	iter := r.session.Query(stmt).WithContext(ctx).Iter()

	stats := []models.TemperatureStats{}
	var row models.TemperatureStats
	for iter.Scan(&row.SensorID, &row.Min, &row.Max, &row.Avg) {
		stats = append(stats, row)
	}
	if err := iter.Close(); err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to aggregate temperatures", err)
	}
	return stats, nil
}

// LatestBatteryLevels returns the most recent battery fact of every sensor.
func (r *MetricsRepo) LatestBatteryLevels(ctx context.Context) ([]models.BatteryFact, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	stmt := fmt.Sprintf(`SELECT sensor_id, battery, recorded_at FROM %s PER PARTITION LIMIT 1`, r.table(batteryTable))
	iter := r.session.Query(stmt).WithContext(ctx).Iter()

	facts := []models.BatteryFact{}
	var (
		sensorID   int64
		battery    float64
		recordedAt gocql.UUID
	)
	for iter.Scan(&sensorID, &battery, &recordedAt) {
		facts = append(facts, models.BatteryFact{SensorID: sensorID, Battery: battery, RecordedAt: recordedAt.Time()})
	}
	if err := iter.Close(); err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to read battery levels", err)
	}
	return facts, nil
}

func (r *MetricsRepo) CountByType(ctx context.Context) ([]models.TypeQuantity, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	stmt := fmt.Sprintf(`SELECT sensor_type, COUNT(*) FROM %s GROUP BY sensor_type`, r.table(typesTable))
	iter := r.session.Query(stmt).WithContext(ctx).Iter()

	counts := []models.TypeQuantity{}
	var row models.TypeQuantity
	for iter.Scan(&row.Type, &row.Quantity) {
		counts = append(counts, row)
	}
	if err := iter.Close(); err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to count sensor types", err)
	}
	return counts, nil
}

func (r *MetricsRepo) Ping(ctx context.Context) error {
	return r.exec(ctx, "failed to ping cluster", `SELECT release_version FROM system.local`)
}

func (r *MetricsRepo) Close() error {
	r.session.Close()
	return nil
}
