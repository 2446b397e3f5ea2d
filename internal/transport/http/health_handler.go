package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"mediadash/internal/infrastructure"
	"mediadash/internal/services"
)

// HealthHandler reports process liveness and snapshot readiness.
type HealthHandler struct {
	service *services.DashboardService
	started time.Time
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service *services.DashboardService, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		started: time.Now(),
		version: version,
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	r.Get("/ready", h.GetReadiness)
	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// GetHealth reports liveness.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, healthResponse{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

type readinessResponse struct {
	Ready      bool   `json:"ready"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	FetchedAt  string `json:"fetched_at,omitempty"`
}

// GetReadiness reports whether a data snapshot is available to serve.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Current()
	if err != nil {
		infrastructure.LoggerWithContext(r.Context()).Debug("readiness probe rejected, no snapshot yet")
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, readinessResponse{Ready: false})
		return
	}
	render.JSON(w, r, readinessResponse{
		Ready:      true,
		SnapshotID: snapshot.ID.String(),
		FetchedAt:  snapshot.FetchedAt.Format(time.RFC3339),
	})
}
