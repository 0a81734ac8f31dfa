// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/itsatony/senser/internal/models"
)

// Store names, used in errors, logs and the health report.
const (
	StorePostgres      = "postgres"
	StoreTimescale     = "timescaledb"
	StoreMongo         = "mongodb"
	StoreCassandra     = "cassandra"
	StoreRedis         = "redis"
	StoreElasticsearch = "elasticsearch"
)

// Store is the part every backing store adapter shares.
type Store interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// SensorRepository is the relational identity store. It owns ids and name uniqueness.
type SensorRepository interface {
	Store
	Create(ctx context.Context, name string) (*models.SensorRecord, error)
	Get(ctx context.Context, id int64) (*models.SensorRecord, error)
	GetByName(ctx context.Context, name string) (*models.SensorRecord, error)
	List(ctx context.Context, offset, limit int) ([]*models.SensorRecord, error)
	Delete(ctx context.Context, id int64) error
}

// SensorDocumentRepository holds the full descriptive record of each sensor, keyed by id.
type SensorDocumentRepository interface {
	Store
	Insert(ctx context.Context, sensor *models.Sensor) error
	Get(ctx context.Context, id int64) (*models.Sensor, error)
	GetByName(ctx context.Context, name string) (*models.Sensor, error)
	Delete(ctx context.Context, id int64) error
	Near(ctx context.Context, latitude, longitude, radius float64) ([]*models.Sensor, error)
}

// SensorDataRepository is the durable reading history.
type SensorDataRepository interface {
	Store
	UpsertReading(ctx context.Context, sensorID int64, reading *models.Reading) error
	GetAggregates(ctx context.Context, sensorID int64, from, to time.Time, bucket models.Bucket) ([]models.SensorAggregate, error)
	DeleteBySensorID(ctx context.Context, sensorID int64) error
}

// ReadingCache keeps only the latest reading per sensor.
type ReadingCache interface {
	Store
	SetLatest(ctx context.Context, sensorID int64, reading *models.Reading) error
	GetLatest(ctx context.Context, sensorID int64) (*models.Reading, error)
	DeleteLatest(ctx context.Context, sensorID int64) error
}

// MetricsRepository is the append-only per-metric fact store.
type MetricsRepository interface {
	Store
	AppendTemperature(ctx context.Context, sensorID int64, temperature float64) error
	AppendBattery(ctx context.Context, sensorID int64, battery float64) error
	AddTypeMembership(ctx context.Context, sensorType string, sensorID int64) error
	TemperatureStats(ctx context.Context) ([]models.TemperatureStats, error)
	LatestBatteryLevels(ctx context.Context) ([]models.BatteryFact, error)
	CountByType(ctx context.Context) ([]models.TypeQuantity, error)
}

// SearchIndex is the full-text index over descriptive fields.
type SearchIndex interface {
	Store
	IndexSensor(ctx context.Context, doc models.SearchDocument) error
	// Search returns the name of every hit, in engine order.
	Search(ctx context.Context, query map[string]any, searchType models.SearchType, size int) ([]string, error)
}

// WithTimeout bounds a single store call. A non-positive timeout only adds cancellation.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
