// FilePath: api/resources/resources.go
package resources

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "Senser"

// Resources holds all HTTP resource handlers
type Resources struct {
	Sensors *SensorHandlers
	Views   *ViewHandlers
	Health  *HealthHandlers
	Metrics http.Handler
}

// NewResources creates a new Resources instance
func NewResources(svc *hubservice.HubService, metrics http.Handler) *Resources {
	return &Resources{
		Sensors: &SensorHandlers{hubservice: svc},
		Views:   &ViewHandlers{hubservice: svc},
		Health:  &HealthHandlers{stores: svc.Stores()},
		Metrics: metrics,
	}
}

// @Summary Service info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (r *Resources) Root(w http.ResponseWriter, req *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"name":    ServiceName,
		"version": nuts.GetVersion(),
	})
}

// SwaggerDoc serves the registered OpenAPI document.
func (r *Resources) SwaggerDoc(w http.ResponseWriter, req *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		respondWithError(w, errors.NewInternalError("api document not registered", err).WithRequestID(nuts.NID("req", 12)))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// decodeQuery fills dst from the request's query string.
func decodeQuery(r *http.Request, dst interface{}) *errors.APIError {
	if err := queryDecoder.Decode(dst, r.URL.Query()); err != nil {
		return errors.NewValidationError("invalid query parameters", err)
	}
	return nil
}

func sensorID(r *http.Request) (int64, *errors.APIError) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("invalid sensor id", err)
	}
	return id, nil
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	if err.Code >= http.StatusInternalServerError {
		nuts.L.Errorf("[API] %s", err.Error())
	} else {
		nuts.L.Warnf("[API] %s", err.Error())
	}
	respondWithJSON(w, err.Code, err.Public())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
