package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itsatony/senser/internal/config"
	apierrors "github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type fakeCluster struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
	f.mu.Unlock()
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.respond(w, r)
}

func newTestIndex(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*SensorIndex, *fakeCluster) {
	t.Helper()
	cluster := &fakeCluster{respond: respond}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return NewSensorIndex(client, "sensors", time.Second), cluster
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(map[string]any{"name": "Sensr"}, models.SearchFuzzy, 3)
	raw, _ := json.Marshal(q)
	want := `{"query":{"fuzzy":{"name":"Sensr"}},"size":3}`
	if string(raw) != want {
		t.Errorf("query = %s, want %s", raw, want)
	}
}

func TestIndexSensor(t *testing.T) {
	idx, cluster := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	doc := models.SearchDocument{Name: "Sensor 1", Type: "temperature", Description: "roof"}
	if err := idx.IndexSensor(context.Background(), doc); err != nil {
		t.Fatalf("IndexSensor: %v", err)
	}

	if len(cluster.requests) != 1 {
		t.Fatalf("requests = %d", len(cluster.requests))
	}
	req := cluster.requests[0]
	if req.Path != "/sensors/_doc" || !strings.Contains(req.Query, "refresh=true") {
		t.Errorf("request = %+v", req)
	}
	var sent models.SearchDocument
	if err := json.Unmarshal([]byte(req.Body), &sent); err != nil || sent != doc {
		t.Errorf("body = %s", req.Body)
	}
}

func TestSearchReturnsNamesInHitOrder(t *testing.T) {
	idx, cluster := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[
			{"_source":{"name":"Sensor 2","type":"","description":""}},
			{"_source":{"name":"Sensor 1","type":"","description":""}}
		]}}`))
	})

	names, err := idx.Search(context.Background(), map[string]any{"name": "Sensor"}, models.SearchMatch, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(names) != 2 || names[0] != "Sensor 2" || names[1] != "Sensor 1" {
		t.Errorf("names = %v", names)
	}
	req := cluster.requests[0]
	if req.Path != "/sensors/_search" || !strings.Contains(req.Body, `"match":{"name":"Sensor"}`) {
		t.Errorf("request = %+v", req)
	}
}

func TestSearchErrorStatusIsStoreUnavailable(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"parsing_exception"}}`))
	})

	_, err := idx.Search(context.Background(), map[string]any{"name": "x"}, models.SearchMatch, 10)
	if !apierrors.IsStoreUnavailable(err) {
		t.Fatalf("err = %v, want store_unavailable", err)
	}
	apiErr, _ := apierrors.AsAPIError(err)
	if strings.Contains(apiErr.Public().Message, "parsing_exception") {
		t.Error("engine output leaked into public message")
	}
}

func TestInitializeSchemaCreatesMissingIndex(t *testing.T) {
	idx, cluster := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	if err := idx.InitializeSchema(context.Background()); err != nil {
		t.Fatalf("InitializeSchema: %v", err)
	}
	if len(cluster.requests) != 2 || cluster.requests[1].Method != http.MethodPut {
		t.Errorf("requests = %+v", cluster.requests)
	}
}
