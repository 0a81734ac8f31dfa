package resources

import (
	"encoding/json"
	"net/http"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/itsatony/senser/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// SensorHandlers encapsulates the sensor-related HTTP handlers
type SensorHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary List sensors
// @Description List registered sensors ordered by id
// @Tags sensors
// @Produce json
// @Param offset query int false "Offset"
// @Param limit query int false "Limit (max 1000)"
// @Success 200 {array} models.SensorRecord
// @Failure 400 {object} errors.APIError
// @Router /sensors [get]
func (h *SensorHandlers) ListSensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var filters models.ListFilters
	if apiErr := decodeQuery(r, &filters); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	sensors, err := h.hubservice.ListSensors(r.Context(), filters)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}
	if sensors == nil {
		sensors = []*models.SensorRecord{}
	}

	respondWithJSON(w, http.StatusOK, sensors)
}

// @Summary Create a new sensor
// @Description Register a sensor in every store
// @Tags sensors
// @Accept json
// @Produce json
// @Param sensor body models.SensorCreate true "Sensor details"
// @Success 201 {object} models.Sensor
// @Failure 400 {object} errors.APIError
// @Failure 409 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /sensors [post]
func (h *SensorHandlers) CreateSensor(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var desc models.SensorCreate
	if err := json.NewDecoder(r.Body).Decode(&desc); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	sensor, err := h.hubservice.CreateSensor(r.Context(), desc)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, sensor)
}

// @Summary Get a sensor by ID
// @Tags sensors
// @Produce json
// @Param id path int true "Sensor ID"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id} [get]
func (h *SensorHandlers) GetSensor(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := sensorID(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	sensor, err := h.hubservice.GetSensor(r.Context(), id)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Delete a sensor
// @Description Remove a sensor and its cached and historical readings
// @Tags sensors
// @Produce json
// @Param id path int true "Sensor ID"
// @Success 200 {object} models.Sensor
// @Failure 404 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /sensors/{id} [delete]
func (h *SensorHandlers) DeleteSensor(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := sensorID(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	sensor, err := h.hubservice.DeleteSensor(r.Context(), id)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensor)
}

// @Summary Record a reading
// @Tags readings
// @Accept json
// @Produce json
// @Param id path int true "Sensor ID"
// @Param reading body models.Reading true "Reading"
// @Success 200 {object} models.Reading
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /sensors/{id}/data [post]
func (h *SensorHandlers) RecordReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := sensorID(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var reading models.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	recorded, err := h.hubservice.RecordReading(r.Context(), id, &reading)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, recorded)
}

// @Summary Get sensor readings
// @Description Without parameters returns the latest reading. With from, to and an optional bucket returns bucketed averages.
// @Tags readings
// @Produce json
// @Param id path int true "Sensor ID"
// @Param from query string false "Start time (RFC3339)"
// @Param to query string false "End time (RFC3339)"
// @Param bucket query string false "Bucket width (hour, day, week, month, year)"
// @Success 200 {object} models.CurrentReading
// @Success 200 {array} models.SensorAggregate
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /sensors/{id}/data [get]
func (h *SensorHandlers) GetSensorReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)
	id, apiErr := sensorID(r)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	var params models.ReadingsParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.ReadReadings(r.Context(), id, params)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}
	if readings.Current == nil && readings.Aggregates == nil {
		readings.Aggregates = []models.SensorAggregate{}
	}

	respondWithJSON(w, http.StatusOK, readings.Body())
}

// @Summary Search sensors
// @Tags sensors
// @Produce json
// @Param query query string true "JSON object of field to text, e.g. {\"name\":\"Sensor\"}"
// @Param size query int false "Maximum hits (default 10)"
// @Param search_type query string false "match, match_phrase, fuzzy, similar, prefix, wildcard, term, regexp"
// @Success 200 {array} models.Sensor
// @Failure 400 {object} errors.APIError
// @Router /sensors/search [get]
func (h *SensorHandlers) SearchSensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var params models.SearchParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	sensors, err := h.hubservice.SearchSensors(r.Context(), params)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}
	if sensors == nil {
		sensors = []*models.Sensor{}
	}

	respondWithJSON(w, http.StatusOK, sensors)
}

// @Summary Sensors near a point
// @Tags sensors
// @Produce json
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param radius query number false "Half-width of the search box in degrees (default 1.0)"
// @Success 200 {array} models.NearbySensor
// @Failure 400 {object} errors.APIError
// @Router /sensors/near [get]
func (h *SensorHandlers) NearbySensors(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var params models.NearParams
	if apiErr := decodeQuery(r, &params); apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	sensors, err := h.hubservice.NearbySensors(r.Context(), params)
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, sensors)
}
