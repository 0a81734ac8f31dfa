package resources

import (
	"net/http"

	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/itsatony/senser/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ViewHandlers serves the cross-sensor summaries.
type ViewHandlers struct {
	hubservice *hubservice.HubService
}

// @Summary Temperature extremes and mean per sensor
// @Tags views
// @Produce json
// @Success 200 {object} models.SensorList[models.TemperatureSummary]
// @Failure 500 {object} errors.APIError
// @Router /sensors/temperature/values [get]
func (h *ViewHandlers) TemperatureValues(w http.ResponseWriter, r *http.Request) {
	rows, err := h.hubservice.TemperatureSummary(r.Context())
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(nuts.NID("req", 12)))
		return
	}
	respondWithJSON(w, http.StatusOK, listOf(rows))
}

// @Summary Sensors whose latest battery level is at most 0.2
// @Tags views
// @Produce json
// @Success 200 {object} models.SensorList[models.LowBatterySensor]
// @Failure 500 {object} errors.APIError
// @Router /sensors/low_battery [get]
func (h *ViewHandlers) LowBattery(w http.ResponseWriter, r *http.Request) {
	rows, err := h.hubservice.LowBatterySensors(r.Context())
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(nuts.NID("req", 12)))
		return
	}
	respondWithJSON(w, http.StatusOK, listOf(rows))
}

// @Summary Number of sensors per type
// @Tags views
// @Produce json
// @Success 200 {object} models.SensorList[models.TypeQuantity]
// @Failure 500 {object} errors.APIError
// @Router /sensors/quantity_by_type [get]
func (h *ViewHandlers) QuantityByType(w http.ResponseWriter, r *http.Request) {
	rows, err := h.hubservice.CountsByType(r.Context())
	if err != nil {
		respondWithError(w, errors.FromError(err).WithRequestID(nuts.NID("req", 12)))
		return
	}
	respondWithJSON(w, http.StatusOK, listOf(rows))
}

func listOf[T any](rows []T) models.SensorList[T] {
	if rows == nil {
		rows = []T{}
	}
	return models.SensorList[T]{Sensors: rows}
}
