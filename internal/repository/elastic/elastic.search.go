// FilePath: internal/repository/elastic/elastic.search.go
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// SensorIndex stores the searchable projection of every sensor in one index.
type SensorIndex struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
}

var _ repository.SearchIndex = (*SensorIndex)(nil)

func NewClient(cfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}
	return client, nil
}

func NewSensorIndex(client *elasticsearch.Client, index string, timeout time.Duration) *SensorIndex {
	return &SensorIndex{client: client, index: index, timeout: timeout}
}

func (s *SensorIndex) Name() string {
	return repository.StoreElasticsearch
}

// InitializeSchema creates the index when it is missing.
func (s *SensorIndex) InitializeSchema(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return errors.NewStoreUnavailableError(s.Name(), "failed to check index", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = s.client.Indices.Create(s.index, s.client.Indices.Create.WithContext(ctx))
	if err := checkResponse(res, err); err != nil {
		return errors.NewStoreUnavailableError(s.Name(), "failed to create index", err)
	}
	nuts.L.Infof("[Elasticsearch] Created index %s", s.index)
	return nil
}

func (s *SensorIndex) IndexSensor(ctx context.Context, doc models.SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewInternalError("failed to encode search document", err)
	}

	ctx, cancel := repository.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithRefresh("true"),
	)
	if err := checkResponse(res, err); err != nil {
		return errors.NewStoreUnavailableError(s.Name(), "failed to index sensor", err)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.SearchDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildQuery wraps the caller's field query in the chosen match strategy.
func BuildQuery(query map[string]any, searchType models.SearchType, size int) map[string]any {
	return map[string]any{
		"size": size,
		"query": map[string]any{
			string(searchType): query,
		},
	}
}

func (s *SensorIndex) Search(ctx context.Context, query map[string]any, searchType models.SearchType, size int) ([]string, error) {
	body, err := json.Marshal(BuildQuery(query, searchType, size))
	if err != nil {
		return nil, errors.NewValidationError("invalid search query", err)
	}

	ctx, cancel := repository.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(s.Name(), "search request failed", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errors.NewStoreUnavailableError(s.Name(), "search request failed", responseError(res))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewStoreUnavailableError(s.Name(), "failed to decode search response", err)
	}

	names := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		names = append(names, hit.Source.Name)
	}
	return names, nil
}

func (s *SensorIndex) Ping(ctx context.Context) error {
	ctx, cancel := repository.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err := checkResponse(res, err); err != nil {
		return errors.NewStoreUnavailableError(s.Name(), "failed to ping cluster", err)
	}
	return nil
}

// Close is a no-op; the client holds only an HTTP transport.
func (s *SensorIndex) Close() error {
	return nil
}

// checkResponse closes the body and turns an error status into an error.
func checkResponse(res *esapi.Response, err error) error {
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res)
	}
	return nil
}

func responseError(res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("elasticsearch returned %s: %s", res.Status(), bytes.TrimSpace(msg))
}
