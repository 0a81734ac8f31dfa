package hubservice

import (
	"context"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
)

// Readings is the answer of a readings request: exactly one field is set.
type Readings struct {
	Current    *models.CurrentReading
	Aggregates []models.SensorAggregate
}

// Body returns the value to render.
func (r *Readings) Body() any {
	if r.Current != nil {
		return r.Current
	}
	return r.Aggregates
}

// ReadReadings routes a readings request. A full range goes to the time-series
// store, no parameters at all go to the cache, anything in between is rejected.
func (s *HubService) ReadReadings(ctx context.Context, sensorID int64, params models.ReadingsParams) (*Readings, error) {
	rq, err := params.Range()
	if err != nil {
		return nil, errors.NewValidationError(err.Error(), err)
	}
	if rq == nil {
		current, err := s.ReadCurrent(ctx, sensorID)
		if err != nil {
			return nil, err
		}
		return &Readings{Current: current}, nil
	}
	aggregates, err := s.ReadRange(ctx, sensorID, *rq)
	if err != nil {
		return nil, err
	}
	return &Readings{Aggregates: aggregates}, nil
}

// ReadCurrent returns the cached latest reading merged with the relational id and name.
func (s *HubService) ReadCurrent(ctx context.Context, sensorID int64) (*models.CurrentReading, error) {
	record, err := s.ensureExists(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	reading, err := s.Cache.GetLatest(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	return &models.CurrentReading{ID: record.ID, Name: record.Name, Reading: *reading}, nil
}

// ReadRange returns bucketed averages between rq.From and rq.To, ordered by bucket.
func (s *HubService) ReadRange(ctx context.Context, sensorID int64, rq models.RangeQuery) ([]models.SensorAggregate, error) {
	if _, err := s.ensureExists(ctx, sensorID); err != nil {
		return nil, err
	}
	return s.SensorData.GetAggregates(ctx, sensorID, rq.From, rq.To, rq.Bucket)
}
