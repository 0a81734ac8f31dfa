// FilePath: internal/hubservice/hubservice.registry.go
package hubservice

import (
	"context"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Create steps, in execution order.
const (
	StepCreateCheck      = "create.check"
	StepCreateRelational = "create.relational"
	StepCreateDocument   = "create.document"
	StepCreateWideColumn = "create.widecolumn"
	StepCreateSearch     = "create.search"
	StepCreateReadBack   = "create.readback"
)

// SensorRegistry owns sensor identity and existence.
type SensorRegistry interface {
	SensorExists(ctx context.Context, name string) (bool, error)
	CreateSensor(ctx context.Context, desc models.SensorCreate) (*models.Sensor, error)
	GetSensor(ctx context.Context, id int64) (*models.Sensor, error)
	ListSensors(ctx context.Context, filters models.ListFilters) ([]*models.SensorRecord, error)
	DeleteSensor(ctx context.Context, id int64) (*models.Sensor, error)
}

var _ SensorRegistry = (*HubService)(nil)

// SensorExists reports whether the relational store already holds name.
func (s *HubService) SensorExists(ctx context.Context, name string) (bool, error) {
	_, err := s.Sensors.GetByName(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// CreateSensor registers a sensor in the relational store, then fans the
// descriptive record out and returns it as read back from the document store.
// No step is rolled back when a later one fails.
func (s *HubService) CreateSensor(ctx context.Context, desc models.SensorCreate) (*models.Sensor, error) {
	desc.Normalize()
	if err := validateDescriptor(desc); err != nil {
		return nil, err
	}

	exists, err := s.SensorExists(ctx, desc.Name)
	if err != nil {
		return nil, s.stepFailed("Registry", StepCreateCheck, 0, err)
	}
	if exists {
		return nil, errors.NewConflictError("Sensor with same name already registered", nil)
	}

	record, err := s.Sensors.Create(ctx, desc.Name)
	if err != nil {
		if errors.IsConflict(err) {
			return nil, err
		}
		return nil, s.stepFailed("Registry", StepCreateRelational, 0, err)
	}

	doc := models.NewSensorDocument(record.ID, desc)
	if err := s.Documents.Insert(ctx, doc); err != nil {
		return nil, s.stepFailed("Registry", StepCreateDocument, record.ID, err)
	}
	if err := s.Metrics.AddTypeMembership(ctx, doc.TypeKey(), record.ID); err != nil {
		return nil, s.stepFailed("Registry", StepCreateWideColumn, record.ID, err)
	}
	if err := s.Search.IndexSensor(ctx, doc.SearchDocument()); err != nil {
		return nil, s.stepFailed("Registry", StepCreateSearch, record.ID, err)
	}

	created, err := s.Documents.Get(ctx, record.ID)
	if err != nil {
		return nil, s.stepFailed("Registry", StepCreateReadBack, record.ID, err)
	}
	nuts.L.Infof("[Registry] Created sensor %d (%s)", created.ID, created.Name)
	return created, nil
}

func validateDescriptor(desc models.SensorCreate) error {
	if desc.Name == "" {
		return errors.NewValidationError("name is required", nil)
	}
	if desc.Latitude < -90 || desc.Latitude > 90 {
		return errors.NewValidationError("latitude must be between -90 and 90", nil)
	}
	if desc.Longitude < -180 || desc.Longitude > 180 {
		return errors.NewValidationError("longitude must be between -180 and 180", nil)
	}
	return nil
}

// GetSensor reads the descriptive record. The relational store is not consulted.
func (s *HubService) GetSensor(ctx context.Context, id int64) (*models.Sensor, error) {
	return s.Documents.Get(ctx, id)
}

// ListSensors pages through the relational identity rows ordered by id.
func (s *HubService) ListSensors(ctx context.Context, filters models.ListFilters) ([]*models.SensorRecord, error) {
	if err := filters.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error(), err)
	}
	return s.Sensors.List(ctx, filters.Offset, filters.Limit)
}

// DeleteSensor removes the sensor from every store holding per-sensor state.
func (s *HubService) DeleteSensor(ctx context.Context, id int64) (*models.Sensor, error) {
	sensor, err := s.Cleanup.DeleteSensor(ctx, id)
	if err != nil {
		return nil, s.reportStep(err)
	}
	nuts.L.Infof("[Registry] Deleted sensor %d", id)
	return sensor, nil
}

// ensureExists is the existence check every write path runs first.
func (s *HubService) ensureExists(ctx context.Context, id int64) (*models.SensorRecord, error) {
	return s.Sensors.Get(ctx, id)
}
