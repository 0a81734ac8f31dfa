// FilePath: internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/itsatony/senser/api"
	"github.com/itsatony/senser/internal/cleanup"
	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/hubservice"
	"github.com/itsatony/senser/internal/ingest"
	"github.com/itsatony/senser/internal/monitoring"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/sync/errgroup"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
}

// New creates a server around an initialized hub service
func New(cfg *config.Config, svc *hubservice.HubService, mon *monitoring.Service) *Server {
	s := &Server{
		config:     cfg,
		hubservice: svc,
		monitoring: mon,
	}
	s.setupCleanupHandlers()

	router := api.NewRouter(svc, mon.Handler(), cfg.Monitoring.MetricsPath)
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Start serves requests until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) setupCleanupHandlers() {
	setupEventHandlers(s.hubservice, s.monitoring)
}

// setupEventHandlers forwards hub events to monitoring.
func setupEventHandlers(svc *hubservice.HubService, mon *monitoring.Service) {
	svc.Cleanup.OnCleanup(cleanup.EventSensorDeleted, func(id string) {
		nuts.L.Infof("[Cleanup] Sensor %s and its readings deleted", id)
		mon.RecordEvent("sensor_deletion", map[string]string{
			"sensor_id": id,
		})
	})

	svc.OnStepFailure(func(step string) {
		mon.RecordStepFailure(step)
	})
}

// RunIngest feeds MQTT readings into svc until ctx is done, serving metrics on
// the configured address meanwhile.
func RunIngest(ctx context.Context, cfg *config.Config, svc *hubservice.HubService, mon *monitoring.Service) error {
	setupEventHandlers(svc, mon)
	subscriber := ingest.New(cfg.MQTT, svc, mon, cfg.Stores.Timeout)

	metricsPath := cfg.Monitoring.MetricsPath
	if metricsPath == "" {
		metricsPath = api.DefaultMetricsPath
	}
	mux := http.NewServeMux()
	mux.Handle(metricsPath, mon.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return subscriber.Run(ctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error serving metrics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
