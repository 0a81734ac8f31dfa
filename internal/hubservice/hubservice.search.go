package hubservice

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// MaxSearchSize bounds the number of hits a search may ask for.
const MaxSearchSize = 100

// SearchSensors runs a query against the search index and resolves each hit by
// name through the document store, keeping the engine's order.
func (s *HubService) SearchSensors(ctx context.Context, params models.SearchParams) ([]*models.Sensor, error) {
	query, err := parseSearchQuery(params.Query)
	if err != nil {
		return nil, err
	}
	searchType, err := models.ParseSearchType(params.SearchType)
	if err != nil {
		return nil, errors.NewValidationError(err.Error(), err)
	}
	size := params.Size
	if size == 0 {
		size = models.DefaultSearchSize
	}
	if size < 0 || size > MaxSearchSize {
		return nil, errors.NewValidationError("size must be between 1 and 100", nil)
	}

	names, err := s.Search.Search(ctx, query, searchType, size)
	if err != nil {
		return nil, err
	}

	out := []*models.Sensor{}
	for _, name := range names {
		if len(out) == size {
			break
		}
		sensor, err := s.Documents.GetByName(ctx, name)
		if err != nil {
			if errors.IsNotFound(err) {
				nuts.L.Warnf("[Search] Skipping hit %q: no document", name)
				continue
			}
			return nil, err
		}
		out = append(out, sensor)
	}
	return out, nil
}

// parseSearchQuery decodes the query parameter, a JSON object of field to term.
func parseSearchQuery(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.NewValidationError("query is required", nil)
	}
	var query map[string]any
	if err := json.Unmarshal([]byte(raw), &query); err != nil {
		return nil, errors.NewValidationError("query must be a JSON object", err)
	}
	if len(query) == 0 {
		return nil, errors.NewValidationError("query must name at least one field", nil)
	}
	return query, nil
}
