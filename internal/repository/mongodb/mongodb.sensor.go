// FilePath: internal/repository/mongodb/mongodb.sensor.go
package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// SensorDocumentRepo keeps full sensor records in a collection keyed by the integer id field.
type SensorDocumentRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

var _ repository.SensorDocumentRepository = (*SensorDocumentRepo)(nil)

// Connect opens a client for cfg and verifies it against the primary.
func Connect(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	nuts.L.Infof("[MongoDB] Connected to database %s", cfg.Database)
	return client, nil
}

func NewSensorDocumentRepository(client *mongo.Client, database, collection string, timeout time.Duration) *SensorDocumentRepo {
	return &SensorDocumentRepo{
		client:     client,
		collection: client.Database(database).Collection(collection),
		timeout:    timeout,
	}
}

func (r *SensorDocumentRepo) Name() string {
	return repository.StoreMongo
}

// InitializeSchema creates the unique id and name indexes and the geo index.
func (r *SensorDocumentRepo) InitializeSchema(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to create indexes", err)
	}
	nuts.L.Infof("[MongoDB] Indexes ready")
	return nil
}

func (r *SensorDocumentRepo) Insert(ctx context.Context, sensor *models.Sensor) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, sensor); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.NewConflictError("Sensor with same name already registered", err)
		}
		return errors.NewStoreUnavailableError(r.Name(), "failed to insert sensor", err)
	}
	return nil
}

func (r *SensorDocumentRepo) Get(ctx context.Context, id int64) (*models.Sensor, error) {
	return r.findOne(ctx, idFilter(id))
}

func (r *SensorDocumentRepo) GetByName(ctx context.Context, name string) (*models.Sensor, error) {
	return r.findOne(ctx, bson.D{{Key: "name", Value: name}})
}

func (r *SensorDocumentRepo) findOne(ctx context.Context, filter bson.D) (*models.Sensor, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	sensor := &models.Sensor{}
	opts := options.FindOne().SetProjection(hideObjectID())
	err := r.collection.FindOne(ctx, filter, opts).Decode(sensor)
	if err != nil {
		if stderrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NewNotFoundError("Sensor not found", err)
		}
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to get sensor", err)
	}
	return sensor, nil
}

// Delete removes the record with the given id. A missing record is not an error.
func (r *SensorDocumentRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to delete sensor", err)
	}
	if result.DeletedCount == 0 {
		nuts.L.Warnf("[MongoDB] No document for sensor %d to delete", id)
	}
	return nil
}

// Near returns every sensor inside the box of half-width radius degrees around the point.
func (r *SensorDocumentRepo) Near(ctx context.Context, latitude, longitude, radius float64) ([]*models.Sensor, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(hideObjectID()).
		SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := r.collection.Find(ctx, nearFilter(latitude, longitude, radius), opts)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to query nearby sensors", err)
	}
	defer cursor.Close(ctx)

	sensors := []*models.Sensor{}
	if err := cursor.All(ctx, &sensors); err != nil {
		return nil, errors.NewStoreUnavailableError(r.Name(), "failed to decode nearby sensors", err)
	}
	return sensors, nil
}

func (r *SensorDocumentRepo) Ping(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.NewStoreUnavailableError(r.Name(), "failed to ping database", err)
	}
	return nil
}

func (r *SensorDocumentRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func idFilter(id int64) bson.D {
	return bson.D{{Key: "id", Value: id}}
}

func hideObjectID() bson.D {
	return bson.D{{Key: "_id", Value: 0}}
}

func nearFilter(latitude, longitude, radius float64) bson.M {
	return bson.M{
		"latitude":  bson.M{"$gte": latitude - radius, "$lte": latitude + radius},
		"longitude": bson.M{"$gte": longitude - radius, "$lte": longitude + radius},
	}
}
