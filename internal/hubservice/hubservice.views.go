package hubservice

import (
	"context"
	"math"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// TemperatureSummary lists min, max and mean temperature per sensor.
func (s *HubService) TemperatureSummary(ctx context.Context) ([]models.TemperatureSummary, error) {
	stats, err := s.Metrics.TemperatureStats(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.TemperatureSummary, 0, len(stats))
	for _, st := range stats {
		sensor, err := s.describe(ctx, st.SensorID)
		if err != nil {
			return nil, err
		}
		if sensor == nil {
			continue
		}
		out = append(out, models.TemperatureSummary{
			Sensor: sensor,
			Values: models.TemperatureValues{
				MaxTemperature:     st.Max,
				MinTemperature:     st.Min,
				AverageTemperature: st.Avg,
			},
		})
	}
	return out, nil
}

// LowBatterySensors lists sensors whose latest battery fact is at or below the threshold.
func (s *HubService) LowBatterySensors(ctx context.Context) ([]models.LowBatterySensor, error) {
	facts, err := s.Metrics.LatestBatteryLevels(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.LowBatterySensor{}
	for _, fact := range facts {
		if fact.Battery > models.LowBatteryThreshold {
			continue
		}
		sensor, err := s.describe(ctx, fact.SensorID)
		if err != nil {
			return nil, err
		}
		if sensor == nil {
			continue
		}
		out = append(out, models.LowBatterySensor{Sensor: sensor, BatteryLevel: round2(fact.Battery)})
	}
	return out, nil
}

// CountsByType counts registered sensors per type.
func (s *HubService) CountsByType(ctx context.Context) ([]models.TypeQuantity, error) {
	return s.Metrics.CountByType(ctx)
}

// describe fetches the descriptive record for a view row. A sensor deleted since
// its facts were written yields nil and is skipped by the caller.
func (s *HubService) describe(ctx context.Context, id int64) (*models.Sensor, error) {
	sensor, err := s.Documents.Get(ctx, id)
	if err == nil {
		return sensor, nil
	}
	if errors.IsNotFound(err) {
		nuts.L.Warnf("[Views] Skipping sensor %d: no document", id)
		return nil, nil
	}
	return nil, err
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
