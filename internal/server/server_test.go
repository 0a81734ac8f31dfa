package server

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/monitoring"
	"github.com/itsatony/senser/internal/repository/repotest"
)

func newTestServer(t *testing.T) (*Server, *hubservice.HubService, *repotest.Stores, *monitoring.Service) {
	t.Helper()
	stores := repotest.NewStores()
	svc := hubservice.New(stores.Sensors, stores.Documents, stores.Data, stores.Cache, stores.Metrics, stores.Search)
	mon := monitoring.NewService()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
	}
	return New(cfg, svc, mon), svc, stores, mon
}

// waitForMetric scrapes the exposition until line shows up; event handlers run asynchronously.
func waitForMetric(t *testing.T, mon *monitoring.Service, line string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		mon.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
		body, _ := io.ReadAll(rec.Body)
		if strings.Contains(string(body), line) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("metric %q never appeared:\n%s", line, body)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDeletionIsCounted(t *testing.T) {
	_, svc, _, mon := newTestServer(t)
	ctx := context.Background()
	if _, err := svc.CreateSensor(ctx, models.SensorCreate{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DeleteSensor(ctx, 1); err != nil {
		t.Fatal(err)
	}
	waitForMetric(t, mon, `senser_events_total{event="sensor_deletion"} 1`)
}

func TestStepFailureIsCounted(t *testing.T) {
	_, svc, stores, mon := newTestServer(t)
	ctx := context.Background()
	if _, err := svc.CreateSensor(ctx, models.SensorCreate{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	stores.FailOn("timescaledb.UpsertReading", errors.New("down"))

	reading := &models.Reading{LastSeen: models.NewTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))}
	if _, err := svc.RecordReading(ctx, 1, reading); err == nil {
		t.Fatal("expected failure")
	}
	waitForMetric(t, mon, `senser_fanout_step_failures_total{step="record.timeseries"} 1`)
}

func TestStartStopsWithContext(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
