package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestTimeRoundTripKeepsMilliseconds(t *testing.T) {
	var r Reading
	if err := json.Unmarshal([]byte(`{"temperature":1.0,"last_seen":"2020-01-01T00:00:00.000Z"}`), &r); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"last_seen":"2020-01-01T00:00:00.000Z"`) {
		t.Errorf("marshaled = %s", out)
	}
	if !strings.Contains(string(out), `"humidity":null`) {
		t.Errorf("null metric not kept: %s", out)
	}
}

func TestTimeRejectsGarbage(t *testing.T) {
	var r Reading
	if err := json.Unmarshal([]byte(`{"last_seen":"yesterday"}`), &r); err == nil {
		t.Error("expected error for invalid timestamp")
	}
}

func TestCurrentReadingFlattens(t *testing.T) {
	temp := 1.0
	cur := CurrentReading{
		ID:   1,
		Name: "Sensor 1",
		Reading: Reading{
			Temperature: &temp,
			LastSeen:    NewTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
	out, err := json.Marshal(cur)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatal(err)
	}
	if m["id"] != float64(1) || m["name"] != "Sensor 1" || m["temperature"] != 1.0 {
		t.Errorf("unexpected body: %s", out)
	}
	if m["last_seen"] != "2020-01-01T00:00:00.000Z" {
		t.Errorf("last_seen = %v", m["last_seen"])
	}
}

func TestParseBucket(t *testing.T) {
	tests := []struct {
		in      string
		want    Bucket
		wantErr bool
	}{
		{"", BucketDay, false},
		{"hour", BucketHour, false},
		{"WEEK", BucketWeek, false},
		{"month", BucketMonth, false},
		{"year", BucketYear, false},
		{"minute", "", true},
		{"decade", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBucket(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBucket(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBucket(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if BucketMonth.Interval() != "1 month" {
		t.Errorf("Interval = %q", BucketMonth.Interval())
	}
}

func TestParseSearchType(t *testing.T) {
	tests := []struct {
		in      string
		want    SearchType
		wantErr bool
	}{
		{"", SearchMatch, false},
		{"match", SearchMatch, false},
		{"similar", SearchFuzzy, false},
		{"fuzzy", SearchFuzzy, false},
		{"prefix", SearchPrefix, false},
		{"script", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSearchType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSearchType(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSearchType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadingsParamsRange(t *testing.T) {
	tests := []struct {
		name      string
		params    ReadingsParams
		wantRange bool
		wantErr   bool
		bucket    Bucket
	}{
		{"no params is a current read", ReadingsParams{}, false, false, ""},
		{"full range", ReadingsParams{From: "2020-01-01T00:00:00Z", To: "2020-02-01T00:00:00Z", Bucket: "week"}, true, false, BucketWeek},
		{"bucket defaults to day", ReadingsParams{From: "2020-01-01", To: "2020-01-02"}, true, false, BucketDay},
		{"from without to", ReadingsParams{From: "2020-01-01T00:00:00Z"}, false, true, ""},
		{"to without from", ReadingsParams{To: "2020-01-01T00:00:00Z"}, false, true, ""},
		{"bucket alone", ReadingsParams{Bucket: "day"}, false, true, ""},
		{"invalid bucket", ReadingsParams{From: "2020-01-01", To: "2020-01-02", Bucket: "minute"}, false, true, ""},
		{"inverted range", ReadingsParams{From: "2020-01-02", To: "2020-01-01"}, false, true, ""},
		{"unparseable from", ReadingsParams{From: "soon", To: "2020-01-01"}, false, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq, err := tt.params.Range()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if (rq != nil) != tt.wantRange {
				t.Fatalf("range = %+v, wantRange %v", rq, tt.wantRange)
			}
			if rq != nil && rq.Bucket != tt.bucket {
				t.Errorf("bucket = %q, want %q", rq.Bucket, tt.bucket)
			}
		})
	}
}

func TestListFiltersValidate(t *testing.T) {
	f := ListFilters{}
	if err := f.Validate(); err != nil {
		t.Fatal(err)
	}
	if f.Limit != DefaultListLimit {
		t.Errorf("limit = %d, want default", f.Limit)
	}
	bad := ListFilters{Limit: MaxListLimit + 1}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for oversized limit")
	}
	neg := ListFilters{Offset: -1}
	if err := neg.Validate(); err == nil {
		t.Error("expected error for negative offset")
	}
}

func TestNearParamsValidate(t *testing.T) {
	lat, lon := 10.0, 20.0
	p := NearParams{Latitude: &lat, Longitude: &lon}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Radius != DefaultNearRadius {
		t.Errorf("radius = %v, want default", p.Radius)
	}
	if err := (&NearParams{Latitude: &lat}).Validate(); err == nil {
		t.Error("expected error without longitude")
	}
}

func TestNewSensorDocument(t *testing.T) {
	doc := NewSensorDocument(7, SensorCreate{Name: "s", Latitude: 1.5, Longitude: 2.5})
	if doc.Location.Type != "Point" {
		t.Errorf("location type = %q", doc.Location.Type)
	}
	if doc.Location.Coordinates[0] != 2.5 || doc.Location.Coordinates[1] != 1.5 {
		t.Errorf("coordinates = %v, want [lon, lat]", doc.Location.Coordinates)
	}
	if doc.TypeKey() != UnknownSensorType {
		t.Errorf("TypeKey = %q, want unknown", doc.TypeKey())
	}
}
