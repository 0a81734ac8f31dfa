package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/itsatony/senser/internal/config"
	apierrors "github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNearFilter(t *testing.T) {
	f := nearFilter(10, 20, 1.5)
	lat, ok := f["latitude"].(bson.M)
	if !ok {
		t.Fatalf("latitude filter = %#v", f["latitude"])
	}
	if lat["$gte"] != 8.5 || lat["$lte"] != 11.5 {
		t.Errorf("latitude bounds = %v", lat)
	}
	lon := f["longitude"].(bson.M)
	if lon["$gte"] != 18.5 || lon["$lte"] != 21.5 {
		t.Errorf("longitude bounds = %v", lon)
	}
}

func TestIDFilterUsesIntegerIDField(t *testing.T) {
	f := idFilter(7)
	if len(f) != 1 || f[0].Key != "id" || f[0].Value != int64(7) {
		t.Errorf("filter = %v", f)
	}
}

// newLiveRepo connects to the server named by SENSER_TEST_MONGO_URI.
func newLiveRepo(t *testing.T) *SensorDocumentRepo {
	t.Helper()
	uri := os.Getenv("SENSER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SENSER_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, config.MongoDBConfig{URI: uri, Database: "senser_test"})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	collection := fmt.Sprintf("sensors_%d", time.Now().UnixNano())
	repo := NewSensorDocumentRepository(client, "senser_test", collection, 5*time.Second)
	t.Cleanup(func() {
		_ = repo.collection.Drop(context.Background())
		_ = repo.Close()
	})
	if err := repo.InitializeSchema(ctx); err != nil {
		t.Fatalf("InitializeSchema: %v", err)
	}
	return repo
}

func TestSensorDocumentRepo_Live(t *testing.T) {
	repo := newLiveRepo(t)
	ctx := context.Background()

	doc := models.NewSensorDocument(1, models.SensorCreate{Name: "Sensor 1", Latitude: 1, Longitude: 2, Type: "temperature"})
	if err := repo.Insert(ctx, doc); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := repo.Insert(ctx, models.NewSensorDocument(2, models.SensorCreate{Name: "Sensor 1"})); !apierrors.IsConflict(err) {
		t.Errorf("duplicate name err = %v, want conflict", err)
	}

	got, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Sensor 1" || got.Type != "temperature" || got.Location.Coordinates[0] != 2 {
		t.Errorf("got = %+v", got)
	}
	if byName, err := repo.GetByName(ctx, "Sensor 1"); err != nil || byName.ID != 1 {
		t.Errorf("GetByName = %+v, %v", byName, err)
	}

	near, err := repo.Near(ctx, 1.2, 2.2, 0.5)
	if err != nil || len(near) != 1 {
		t.Errorf("Near = %v, %v", near, err)
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, 1); !apierrors.IsNotFound(err) {
		t.Errorf("Get after delete err = %v, want not_found", err)
	}
}
