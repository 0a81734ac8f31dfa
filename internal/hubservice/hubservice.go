package hubservice

import (
	"github.com/itsatony/senser/internal/cleanup"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// EventStepFailed is emitted with the step name whenever a fanout step fails.
const EventStepFailed = "fanout.step_failed"

// HubService contains all repositories and service-wide dependencies
type HubService struct {
	Sensors    repository.SensorRepository
	Documents  repository.SensorDocumentRepository
	SensorData repository.SensorDataRepository
	Cache      repository.ReadingCache
	Metrics    repository.MetricsRepository
	Search     repository.SearchIndex
	Cleanup    *cleanup.CleanupService
	events     *nuts.EventEmitter
}

// Stores lists every backing store, in the order they are reported on.
func (s *HubService) Stores() []repository.Store {
	return []repository.Store{s.Sensors, s.Documents, s.SensorData, s.Cache, s.Metrics, s.Search}
}

// New creates a new HubService instance
func New(
	sensors repository.SensorRepository,
	documents repository.SensorDocumentRepository,
	sensorData repository.SensorDataRepository,
	cache repository.ReadingCache,
	metrics repository.MetricsRepository,
	search repository.SearchIndex,
) *HubService {
	svc := &HubService{
		Sensors:    sensors,
		Documents:  documents,
		SensorData: sensorData,
		Cache:      cache,
		Metrics:    metrics,
		Search:     search,
		events:     nuts.NewEventEmitter(),
	}
	svc.Cleanup = cleanup.New(sensors, documents, cache, sensorData)
	return svc
}

// Validate checks if all required repositories are initialized
func (s *HubService) Validate() error {
	if s.Sensors == nil {
		return ErrMissingRepository("sensors")
	}
	if s.Documents == nil {
		return ErrMissingRepository("documents")
	}
	if s.SensorData == nil {
		return ErrMissingRepository("sensorData")
	}
	if s.Cache == nil {
		return ErrMissingRepository("cache")
	}
	if s.Metrics == nil {
		return ErrMissingRepository("metrics")
	}
	if s.Search == nil {
		return ErrMissingRepository("search")
	}
	return nil
}

func ErrMissingRepository(name string) error {
	return errors.NewInternalError("missing repository: "+name, nil)
}

// OnStepFailure registers a callback receiving the name of every failed fanout step.
func (s *HubService) OnStepFailure(handler func(step string)) {
	s.events.On(EventStepFailed, nuts.NID("sf", 8), func(args ...interface{}) {
		if len(args) > 0 {
			if step, ok := args[0].(string); ok {
				handler(step)
			}
		}
	})
}

// stepFailed tags err with the fanout step it came from and reports it.
func (s *HubService) stepFailed(component, step string, sensorID int64, err error) error {
	apiErr := errors.FromError(err).WithStep(step)
	nuts.L.Errorf("[%s] Step %s failed for sensor %d: %v", component, step, sensorID, err)
	s.events.Emit(EventStepFailed, step)
	return apiErr
}

// reportStep emits a step failure for errors already tagged elsewhere.
func (s *HubService) reportStep(err error) error {
	if apiErr, ok := errors.AsAPIError(err); ok && apiErr.Step != "" {
		s.events.Emit(EventStepFailed, apiErr.Step)
	}
	return err
}
