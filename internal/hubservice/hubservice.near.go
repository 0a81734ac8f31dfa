package hubservice

import (
	"context"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
)

// NearbySensors returns sensors inside the box around a point, each with its
// cached latest reading when there is one.
func (s *HubService) NearbySensors(ctx context.Context, params models.NearParams) ([]models.NearbySensor, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error(), err)
	}

	sensors, err := s.Documents.Near(ctx, *params.Latitude, *params.Longitude, params.Radius)
	if err != nil {
		return nil, err
	}

	out := make([]models.NearbySensor, 0, len(sensors))
	for _, sensor := range sensors {
		reading, err := s.Cache.GetLatest(ctx, sensor.ID)
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		out = append(out, models.NearbySensor{Sensor: sensor, Reading: reading})
	}
	return out, nil
}
