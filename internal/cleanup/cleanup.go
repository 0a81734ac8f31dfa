package cleanup

import (
	"context"
	"strconv"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// Events emitted by the cleanup service.
const (
	EventSensorDeleted = "sensor.deleted"
)

// Delete steps, in execution order.
const (
	StepDeleteRelational = "delete.relational"
	StepDeleteDocument   = "delete.document"
	StepDeleteCache      = "delete.cache"
	StepDeleteTimeSeries = "delete.timeseries"
)

// CleanupService removes a sensor from every store that holds per-sensor state.
// The wide-column facts are kept as history.
type CleanupService struct {
	sensors    repository.SensorRepository
	documents  repository.SensorDocumentRepository
	cache      repository.ReadingCache
	sensorData repository.SensorDataRepository
	events     *nuts.EventEmitter
}

// New creates a new CleanupService
func New(
	sensors repository.SensorRepository,
	documents repository.SensorDocumentRepository,
	cache repository.ReadingCache,
	sensorData repository.SensorDataRepository,
) *CleanupService {
	return &CleanupService{
		sensors:    sensors,
		documents:  documents,
		cache:      cache,
		sensorData: sensorData,
		events:     nuts.NewEventEmitter(),
	}
}

// DeleteSensor deletes a sensor and all its associated data. There is no
// transaction across stores: a failing step leaves the earlier steps applied
// and the returned error names the step.
func (s *CleanupService) DeleteSensor(ctx context.Context, sensorID int64) (*models.Sensor, error) {
	record, err := s.sensors.Get(ctx, sensorID)
	if err != nil {
		return nil, err
	}

	// The descriptive record is what the caller gets back; fall back to the
	// identity row when the document is already gone.
	sensor, err := s.documents.Get(ctx, sensorID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}
		nuts.L.Warnf("[Cleanup] Sensor %d has no document, deleting identity only", sensorID)
		sensor = &models.Sensor{ID: record.ID, Name: record.Name}
	}

	steps := []struct {
		name string
		run  func(context.Context, int64) error
	}{
		{StepDeleteRelational, s.sensors.Delete},
		{StepDeleteDocument, s.documents.Delete},
		{StepDeleteCache, s.cache.DeleteLatest},
		{StepDeleteTimeSeries, s.sensorData.DeleteBySensorID},
	}
	for _, step := range steps {
		if err := step.run(ctx, sensorID); err != nil {
			nuts.L.Errorf("[Cleanup] Step %s failed for sensor %d: %v", step.name, sensorID, err)
			return nil, errors.FromError(err).WithStep(step.name)
		}
	}

	// Emit event after successful deletion
	s.events.Emit(EventSensorDeleted, strconv.FormatInt(sensorID, 10))
	return sensor, nil
}

// OnCleanup registers a callback for cleanup events
func (s *CleanupService) OnCleanup(event string, handler func(id string)) {
	s.events.On(event, nuts.NID("ch", 8), func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}
