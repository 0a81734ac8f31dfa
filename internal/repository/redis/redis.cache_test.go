package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	apierrors "github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	goredis "github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*ReadingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := NewReadingCache(client, time.Second)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func ptr(v float64) *float64 { return &v }

func TestReadingCache_LastWriteWins(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	seen := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &models.Reading{Temperature: ptr(1), Humidity: ptr(2), LastSeen: models.NewTime(seen)}
	second := &models.Reading{Temperature: ptr(5), LastSeen: models.NewTime(seen.Add(time.Minute))}
	if err := cache.SetLatest(ctx, 1, first); err != nil {
		t.Fatal(err)
	}
	if err := cache.SetLatest(ctx, 1, second); err != nil {
		t.Fatal(err)
	}

	got, err := cache.GetLatest(ctx, 1)
	if err != nil {
		t.Fatalf("GetLatest: %v", err)
	}
	if *got.Temperature != 5 || got.Humidity != nil {
		t.Errorf("got = %+v, want the second reading with its nulls", got)
	}
	if !got.LastSeen.Equal(seen.Add(time.Minute)) {
		t.Errorf("last_seen = %v", got.LastSeen)
	}
	if !mr.Exists("sensor:1:latest") {
		t.Error("expected key sensor:1:latest")
	}
	if ttl := mr.TTL("sensor:1:latest"); ttl != 0 {
		t.Errorf("ttl = %v, want none", ttl)
	}
}

func TestReadingCache_MissIsNotFound(t *testing.T) {
	cache, _ := newTestCache(t)
	if _, err := cache.GetLatest(context.Background(), 9); !apierrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestReadingCache_DeleteLatest(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	if err := cache.SetLatest(ctx, 2, &models.Reading{LastSeen: models.NewTime(time.Now())}); err != nil {
		t.Fatal(err)
	}
	if err := cache.DeleteLatest(ctx, 2); err != nil {
		t.Fatalf("DeleteLatest: %v", err)
	}
	if mr.Exists(LatestKey(2)) {
		t.Error("key still present")
	}
}

func TestReadingCache_Unavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	err := cache.SetLatest(context.Background(), 1, &models.Reading{LastSeen: models.NewTime(time.Now())})
	if !apierrors.IsStoreUnavailable(err) {
		t.Fatalf("err = %v, want store_unavailable", err)
	}
	if err := cache.Ping(context.Background()); !apierrors.IsStoreUnavailable(err) {
		t.Fatalf("ping err = %v, want store_unavailable", err)
	}
}
