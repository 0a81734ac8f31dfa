package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/itsatony/senser/internal/config"
	apierrors "github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
)

type fakeRecorder struct {
	calls []int64
	last  *models.Reading
	err   error
}

func (f *fakeRecorder) RecordReading(ctx context.Context, sensorID int64, reading *models.Reading) (*models.Reading, error) {
	f.calls = append(f.calls, sensorID)
	f.last = reading
	if f.err != nil {
		return nil, f.err
	}
	return reading, nil
}

type fakeCounter map[string]int

func (f fakeCounter) RecordIngest(result string) { f[result]++ }

func TestSensorIDFromTopic(t *testing.T) {
	tests := []struct {
		filter  string
		topic   string
		want    int64
		wantErr bool
	}{
		{"sensors/+/data", "sensors/12/data", 12, false},
		{"site/a/sensors/+/data", "site/a/sensors/3/data", 3, false},
		{"sensors/+/data", "sensors/abc/data", 0, true},
		{"sensors/+/data", "sensors/0/data", 0, true},
		{"sensors/+/data", "sensors/1/status", 0, true},
		{"sensors/+/data", "sensors/1/data/extra", 0, true},
		{"sensors/all/data", "sensors/all/data", 0, true},
	}
	for _, tt := range tests {
		got, err := SensorIDFromTopic(tt.filter, tt.topic)
		if (err != nil) != tt.wantErr {
			t.Errorf("SensorIDFromTopic(%q, %q) err = %v, wantErr %v", tt.filter, tt.topic, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SensorIDFromTopic(%q, %q) = %d, want %d", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func newTestSubscriber(rec *fakeRecorder, counter fakeCounter) *Subscriber {
	return New(config.MQTTConfig{Topic: "sensors/+/data"}, rec, counter, time.Second)
}

func TestHandleMessageRecordsReading(t *testing.T) {
	rec := &fakeRecorder{}
	counter := fakeCounter{}
	s := newTestSubscriber(rec, counter)

	payload := []byte(`{"temperature":1.5,"battery_level":0.5,"last_seen":"2020-01-01T00:00:00.000Z"}`)
	if err := s.HandleMessage(context.Background(), "sensors/7/data", payload); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0] != 7 {
		t.Fatalf("calls = %v", rec.calls)
	}
	if *rec.last.Temperature != 1.5 || rec.last.Humidity != nil {
		t.Errorf("reading = %+v", rec.last)
	}
	if counter["ok"] != 1 {
		t.Errorf("counter = %v", counter)
	}
}

func TestHandleMessageDropsBadInput(t *testing.T) {
	rec := &fakeRecorder{}
	counter := fakeCounter{}
	s := newTestSubscriber(rec, counter)

	if err := s.HandleMessage(context.Background(), "sensors/x/data", []byte(`{}`)); !apierrors.IsValidation(err) {
		t.Errorf("bad topic err = %v", err)
	}
	if err := s.HandleMessage(context.Background(), "sensors/1/data", []byte(`not json`)); !apierrors.IsValidation(err) {
		t.Errorf("bad payload err = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("recorder called: %v", rec.calls)
	}
	if counter["error"] != 2 {
		t.Errorf("counter = %v", counter)
	}
}

func TestHandleMessageUnknownSensorIsNotRetried(t *testing.T) {
	rec := &fakeRecorder{err: apierrors.NewNotFoundError("Sensor not found", nil)}
	counter := fakeCounter{}
	s := newTestSubscriber(rec, counter)

	err := s.HandleMessage(context.Background(), "sensors/2/data", []byte(`{"last_seen":"2020-01-01T00:00:00Z"}`))
	if !apierrors.IsNotFound(err) {
		t.Fatalf("err = %v, want not_found", err)
	}
	if len(rec.calls) != 1 {
		t.Errorf("calls = %v, want exactly one attempt", rec.calls)
	}
}
