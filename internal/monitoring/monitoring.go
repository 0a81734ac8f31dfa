package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

// Service provides monitoring functionality
type Service struct {
	registry    *prometheus.Registry
	events      *prometheus.CounterVec
	stepFailure *prometheus.CounterVec
	ingested    *prometheus.CounterVec
}

// NewService creates a new monitoring service with its own registry
func NewService() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "senser",
			Name:      "events_total",
			Help:      "Domain events, by event name.",
		}, []string{"event"}),
		stepFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "senser",
			Name:      "fanout_step_failures_total",
			Help:      "Failed multi-store steps, by step name.",
		}, []string{"step"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "senser",
			Name:      "ingest_messages_total",
			Help:      "MQTT readings handled, by result.",
		}, []string{"result"}),
	}
	s.registry.MustRegister(
		s.events,
		s.stepFailure,
		s.ingested,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return s
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	nuts.L.Infof("[Monitoring] Event %s recorded at %v with labels: %v", eventName, time.Now(), labels)
	s.events.WithLabelValues(eventName).Inc()
}

// RecordStepFailure counts a failed fanout step.
func (s *Service) RecordStepFailure(step string) {
	s.stepFailure.WithLabelValues(step).Inc()
}

// RecordIngest counts one handled MQTT message; result is "ok" or "error".
func (s *Service) RecordIngest(result string) {
	s.ingested.WithLabelValues(result).Inc()
}

// Registry exposes the collectors, e.g. for tests.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the Prometheus exposition format.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
