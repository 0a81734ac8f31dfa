package resources

import (
	"context"
	"net/http"
	"sync"

	"github.com/itsatony/senser/internal/repository"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/sync/errgroup"
)

// HealthHandlers reports on every backing store.
type HealthHandlers struct {
	stores []repository.Store
}

// HealthStatus is the body of a health response.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Stores  map[string]string `json:"stores"`
}

// @Summary Health check
// @Description Pings every store concurrently
// @Tags meta
// @Produce json
// @Success 200 {object} HealthStatus
// @Failure 503 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandlers) Check(w http.ResponseWriter, r *http.Request) {
	status := h.probe(r.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	respondWithJSON(w, code, status)
}

func (h *HealthHandlers) probe(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "ok", Version: nuts.GetVersion(), Stores: make(map[string]string, len(h.stores))}
	var mu sync.Mutex

	var g errgroup.Group
	for _, store := range h.stores {
		store := store
		g.Go(func() error {
			state := "ok"
			if err := store.Ping(ctx); err != nil {
				nuts.L.Warnf("[Health] %s unavailable: %v", store.Name(), err)
				state = "unavailable"
			}
			mu.Lock()
			defer mu.Unlock()
			status.Stores[store.Name()] = state
			if state != "ok" {
				status.Status = "degraded"
			}
			return nil
		})
	}
	g.Wait()
	return status
}
