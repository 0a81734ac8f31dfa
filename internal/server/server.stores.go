// FilePath: internal/server/server.stores.go
package server

import (
	"context"
	"fmt"

	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/database"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/itsatony/senser/internal/repository"
	"github.com/itsatony/senser/internal/repository/cassandra"
	"github.com/itsatony/senser/internal/repository/elastic"
	"github.com/itsatony/senser/internal/repository/mongodb"
	"github.com/itsatony/senser/internal/repository/postgres"
	"github.com/itsatony/senser/internal/repository/redis"
	"github.com/itsatony/senser/internal/repository/timescale"
	nuts "github.com/vaudience/go-nuts"
)

type schemaInitializer interface {
	repository.Store
	InitializeSchema(ctx context.Context) error
}

// InitializeHubService connects every store and creates the hub service. On
// failure every store opened so far is closed again.
func InitializeHubService(ctx context.Context, cfg *config.Config) (svc *hubservice.HubService, err error) {
	var opened []repository.Store
	defer func() {
		if err != nil {
			closeStores(opened)
		}
	}()
	timeout := cfg.Stores.Timeout

	appDB, err := database.NewPostgresDB(cfg.Database.Postgres)
	if err != nil {
		return nil, err
	}
	sensors := postgres.NewSensorRepository(appDB, timeout)
	opened = append(opened, sensors)

	tsdb, err := database.NewTimescaleDB(cfg.Database.TimescaleDB)
	if err != nil {
		return nil, err
	}
	sensorData := timescale.NewSensorDataRepository(tsdb, timeout)
	opened = append(opened, sensorData)

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoDB)
	if err != nil {
		return nil, err
	}
	documents := mongodb.NewSensorDocumentRepository(mongoClient, cfg.MongoDB.Database, cfg.MongoDB.Collection, timeout)
	opened = append(opened, documents)

	session, err := cassandra.NewSession(cfg.Cassandra)
	if err != nil {
		return nil, err
	}
	metrics := cassandra.NewMetricsRepository(session, cfg.Cassandra.Keyspace, timeout)
	opened = append(opened, metrics)

	cache := redis.NewReadingCache(redis.NewClient(cfg.Redis), timeout)
	opened = append(opened, cache)

	esClient, err := elastic.NewClient(cfg.Elasticsearch)
	if err != nil {
		return nil, err
	}
	search := elastic.NewSensorIndex(esClient, cfg.Elasticsearch.Index, timeout)
	opened = append(opened, search)

	if cfg.Stores.BootstrapSchema {
		for _, store := range []schemaInitializer{sensors, sensorData, documents, metrics, search} {
			if err := store.InitializeSchema(ctx); err != nil {
				return nil, fmt.Errorf("initializing %s schema: %w", store.Name(), err)
			}
			nuts.L.Infof("[Server] Schema ready on %s", store.Name())
		}
	}

	svc = hubservice.New(sensors, documents, sensorData, cache, metrics, search)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	return svc, nil
}

// CloseStores closes every store of svc, logging failures.
func CloseStores(svc *hubservice.HubService) {
	closeStores(svc.Stores())
}

func closeStores(stores []repository.Store) {
	for _, store := range stores {
		if err := store.Close(); err != nil {
			nuts.L.Warnf("[Server] Failed to close %s: %v", store.Name(), err)
		}
	}
}
