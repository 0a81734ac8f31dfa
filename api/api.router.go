package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/itsatony/senser/api/resources"
	_ "github.com/itsatony/senser/docs"
	"github.com/itsatony/senser/internal/hubservice"
)

// DefaultMetricsPath is used when no metrics path is configured.
const DefaultMetricsPath = "/metrics"

type Router struct {
	router      *mux.Router
	resources   *resources.Resources
	metricsPath string
}

func NewRouter(svc *hubservice.HubService, metrics http.Handler, metricsPath string) *Router {
	if metricsPath == "" {
		metricsPath = DefaultMetricsPath
	}
	r := &Router{
		router:      mux.NewRouter(),
		resources:   resources.NewResources(svc, metrics),
		metricsPath: metricsPath,
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.router.HandleFunc("/", r.resources.Root).Methods(http.MethodGet)
	r.router.HandleFunc("/health", r.resources.Health.Check).Methods(http.MethodGet)
	r.router.Handle(r.metricsPath, r.resources.Metrics).Methods(http.MethodGet)
	r.router.HandleFunc("/swagger/doc.json", r.resources.SwaggerDoc).Methods(http.MethodGet)

	// Sensors. Fixed paths first so they never reach the {id} routes.
	sensors := r.router.PathPrefix("/sensors").Subrouter()
	sensors.HandleFunc("", r.resources.Sensors.ListSensors).Methods(http.MethodGet)
	sensors.HandleFunc("", r.resources.Sensors.CreateSensor).Methods(http.MethodPost)
	sensors.HandleFunc("/search", r.resources.Sensors.SearchSensors).Methods(http.MethodGet)
	sensors.HandleFunc("/near", r.resources.Sensors.NearbySensors).Methods(http.MethodGet)
	sensors.HandleFunc("/temperature/values", r.resources.Views.TemperatureValues).Methods(http.MethodGet)
	sensors.HandleFunc("/low_battery", r.resources.Views.LowBattery).Methods(http.MethodGet)
	sensors.HandleFunc("/quantity_by_type", r.resources.Views.QuantityByType).Methods(http.MethodGet)

	sensors.HandleFunc("/{id:[0-9]+}", r.resources.Sensors.GetSensor).Methods(http.MethodGet)
	sensors.HandleFunc("/{id:[0-9]+}", r.resources.Sensors.DeleteSensor).Methods(http.MethodDelete)
	sensors.HandleFunc("/{id:[0-9]+}/data", r.resources.Sensors.GetSensorReadings).Methods(http.MethodGet)
	sensors.HandleFunc("/{id:[0-9]+}/data", r.resources.Sensors.RecordReading).Methods(http.MethodPost)
}

// Handler wraps the routes with panic recovery and an access log.
func (r *Router) Handler() http.Handler {
	recovered := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r.router)
	return handlers.CombinedLoggingHandler(os.Stdout, recovered)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
