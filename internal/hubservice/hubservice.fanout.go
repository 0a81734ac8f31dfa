package hubservice

import (
	"context"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
)

// Record steps, in execution order.
const (
	StepRecordTimeSeries  = "record.timeseries"
	StepRecordTemperature = "record.widecolumn.temperature"
	StepRecordBattery     = "record.widecolumn.battery"
	StepRecordCache       = "record.cache"
)

// RecordReading checks that the sensor exists and fans the reading out.
func (s *HubService) RecordReading(ctx context.Context, sensorID int64, reading *models.Reading) (*models.Reading, error) {
	if reading == nil || reading.LastSeen.IsZero() {
		return nil, errors.NewValidationError("last_seen is required", nil)
	}
	if _, err := s.ensureExists(ctx, sensorID); err != nil {
		return nil, err
	}
	if err := s.record(ctx, sensorID, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// record writes the history row, the wide-column facts and the cache snapshot,
// in that order. The caller has already checked that the sensor exists.
func (s *HubService) record(ctx context.Context, sensorID int64, reading *models.Reading) error {
	if err := s.SensorData.UpsertReading(ctx, sensorID, reading); err != nil {
		return s.stepFailed("Fanout", StepRecordTimeSeries, sensorID, err)
	}
	if reading.Temperature != nil {
		if err := s.Metrics.AppendTemperature(ctx, sensorID, *reading.Temperature); err != nil {
			return s.stepFailed("Fanout", StepRecordTemperature, sensorID, err)
		}
	}
	// Every battery value is appended; the watchlist filters on read.
	if reading.BatteryLevel != nil {
		if err := s.Metrics.AppendBattery(ctx, sensorID, *reading.BatteryLevel); err != nil {
			return s.stepFailed("Fanout", StepRecordBattery, sensorID, err)
		}
	}
	if err := s.Cache.SetLatest(ctx, sensorID, reading); err != nil {
		return s.stepFailed("Fanout", StepRecordCache, sensorID, err)
	}
	return nil
}
