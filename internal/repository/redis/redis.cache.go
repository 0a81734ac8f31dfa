// FilePath: internal/repository/redis/redis.cache.go
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

// ReadingCache holds the latest reading of each sensor as JSON, with no expiry.
type ReadingCache struct {
	client  *goredis.Client
	timeout time.Duration
}

var _ repository.ReadingCache = (*ReadingCache)(nil)

func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewReadingCache(client *goredis.Client, timeout time.Duration) *ReadingCache {
	return &ReadingCache{client: client, timeout: timeout}
}

// LatestKey is the cache key of a sensor's latest reading.
func LatestKey(sensorID int64) string {
	return fmt.Sprintf("sensor:%d:latest", sensorID)
}

func (c *ReadingCache) Name() string {
	return repository.StoreRedis
}

func (c *ReadingCache) SetLatest(ctx context.Context, sensorID int64, reading *models.Reading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return errors.NewInternalError("failed to encode reading", err)
	}

	ctx, cancel := repository.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Set(ctx, LatestKey(sensorID), payload, 0).Err(); err != nil {
		return errors.NewStoreUnavailableError(c.Name(), "failed to cache reading", err)
	}
	return nil
}

func (c *ReadingCache) GetLatest(ctx context.Context, sensorID int64) (*models.Reading, error) {
	ctx, cancel := repository.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := c.client.Get(ctx, LatestKey(sensorID)).Bytes()
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			return nil, errors.NewNotFoundError("Sensor not found", err)
		}
		return nil, errors.NewStoreUnavailableError(c.Name(), "failed to read cached reading", err)
	}

	reading := &models.Reading{}
	if err := json.Unmarshal(payload, reading); err != nil {
		return nil, errors.NewInternalError("failed to decode cached reading", err)
	}
	return reading, nil
}

func (c *ReadingCache) DeleteLatest(ctx context.Context, sensorID int64) error {
	ctx, cancel := repository.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Del(ctx, LatestKey(sensorID)).Err(); err != nil {
		return errors.NewStoreUnavailableError(c.Name(), "failed to evict cached reading", err)
	}
	return nil
}

func (c *ReadingCache) Ping(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.NewStoreUnavailableError(c.Name(), "failed to ping cache", err)
	}
	return nil
}

func (c *ReadingCache) Close() error {
	return c.client.Close()
}
