package cleanup

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	apierrors "github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository/repotest"
)

func seed(t *testing.T, stores *repotest.Stores, name string) int64 {
	t.Helper()
	ctx := context.Background()
	rec, err := stores.Sensors.Create(ctx, name)
	if err != nil {
		t.Fatal(err)
	}
	if err := stores.Documents.Insert(ctx, models.NewSensorDocument(rec.ID, models.SensorCreate{Name: name})); err != nil {
		t.Fatal(err)
	}
	if err := stores.Cache.SetLatest(ctx, rec.ID, &models.Reading{LastSeen: models.NewTime(time.Now())}); err != nil {
		t.Fatal(err)
	}
	stores.Reset()
	return rec.ID
}

func newService(stores *repotest.Stores) *CleanupService {
	return New(stores.Sensors, stores.Documents, stores.Cache, stores.Data)
}

func TestDeleteSensor_CascadesInOrder(t *testing.T) {
	stores := repotest.NewStores()
	id := seed(t, stores, "Sensor 1")
	svc := newService(stores)

	deleted := make(chan string, 1)
	svc.OnCleanup(EventSensorDeleted, func(id string) { deleted <- id })

	sensor, err := svc.DeleteSensor(context.Background(), id)
	if err != nil {
		t.Fatalf("DeleteSensor: %v", err)
	}
	if sensor.Name != "Sensor 1" {
		t.Errorf("returned sensor = %+v", sensor)
	}

	want := []string{
		"postgres.Get",
		"mongodb.Get",
		"postgres.Delete",
		"mongodb.Delete",
		"redis.DeleteLatest",
		"timescaledb.DeleteBySensorID",
	}
	if got := stores.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if stores.Sensors.Count() != 0 || stores.Documents.Has(id) || stores.Cache.Has(id) {
		t.Error("sensor state left behind")
	}

	select {
	case got := <-deleted:
		if got != "1" {
			t.Errorf("event id = %q, want 1", got)
		}
	case <-time.After(time.Second):
		t.Error("sensor.deleted not emitted")
	}
}

func TestDeleteSensor_UnknownIsNotFound(t *testing.T) {
	stores := repotest.NewStores()
	svc := newService(stores)

	_, err := svc.DeleteSensor(context.Background(), 2)
	if !apierrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not_found", err)
	}
	if calls := stores.Calls(); len(calls) != 1 {
		t.Errorf("calls = %v, want only the existence check", calls)
	}
}

func TestDeleteSensor_MissingDocumentFallsBackToIdentity(t *testing.T) {
	stores := repotest.NewStores()
	id := seed(t, stores, "Sensor 1")
	stores.Documents.Remove(id)

	sensor, err := newService(stores).DeleteSensor(context.Background(), id)
	if err != nil {
		t.Fatalf("DeleteSensor: %v", err)
	}
	if sensor.ID != id || sensor.Name != "Sensor 1" {
		t.Errorf("sensor = %+v", sensor)
	}
}

func TestDeleteSensor_PartialFailureNamesStep(t *testing.T) {
	stores := repotest.NewStores()
	id := seed(t, stores, "Sensor 1")
	stores.FailOn("redis.DeleteLatest", errors.New("connection refused"))

	_, err := newService(stores).DeleteSensor(context.Background(), id)
	if !apierrors.IsStoreUnavailable(err) {
		t.Fatalf("err = %v, want store_unavailable", err)
	}
	apiErr, _ := apierrors.AsAPIError(err)
	if apiErr.Step != StepDeleteCache {
		t.Errorf("step = %q, want %q", apiErr.Step, StepDeleteCache)
	}
	// Earlier steps stay applied.
	if stores.Sensors.Count() != 0 || stores.Documents.Has(id) {
		t.Error("earlier steps were rolled back")
	}
	if !stores.Cache.Has(id) {
		t.Error("cache entry should survive the failed step")
	}
}
