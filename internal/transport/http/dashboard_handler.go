// Package http exposes the report views over a JSON API. Handlers parse
// and validate the filter query parameters, call the dashboard service and
// render the resulting view; all computation lives below this layer.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"mediadash/internal/dataprocessing"
	apierrors "mediadash/internal/errors"
	"mediadash/internal/infrastructure"
	"mediadash/internal/services"
)

// DashboardHandler handles the report view HTTP requests.
type DashboardHandler struct {
	service  *services.DashboardService
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:  service,
		logger:   infrastructure.WithComponent(logger, "dashboard_handler"),
		validate: validator.New(),
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/reach", h.GetReach)
	r.Get("/video", h.GetVideo)
	r.Get("/traffic", h.GetTraffic)
	r.Get("/pacing", h.GetPacing)
	r.Get("/benchmarks", h.GetBenchmarks)
	r.Get("/filters", h.GetFilters)
	r.Post("/refresh", h.Refresh)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, apierrors.ErrViewNotFound.StatusCode)
		render.JSON(w, r, apierrors.NewErrorResponse(apierrors.ErrViewNotFound))
	})

	return r
}

// filterQuery mirrors the filter query parameters for validation.
type filterQuery struct {
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

// filterState parses the query string into a FilterState. Repeated
// dimension parameters accumulate into the inclusion sets.
func (h *DashboardHandler) filterState(values url.Values) (dataprocessing.FilterState, *apierrors.APIError) {
	q := filterQuery{
		Start: values.Get("start"),
		End:   values.Get("end"),
	}
	if err := h.validate.Struct(q); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]apierrors.ValidationError, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, apierrors.ValidationError{
					Field:   strings.ToLower(fe.Field()),
					Message: "must be formatted YYYY-MM-DD",
				})
			}
			return dataprocessing.FilterState{}, apierrors.NewValidationErrors(fields)
		}
		return dataprocessing.FilterState{}, apierrors.InvalidRequestWithError(err)
	}
	if q.Start != "" && q.End != "" && q.Start > q.End {
		return dataprocessing.FilterState{}, apierrors.ErrValidation("start", "start date is after end date")
	}

	return dataprocessing.FilterState{
		Start:     q.Start,
		End:       q.End,
		Platforms: values["platform"],
		Pracas:    values["praca"],
		BuyTypes:  values["buy_type"],
		Origins:   values["origin"],
	}, nil
}

// renderView writes the view or maps a service error to its API error.
func (h *DashboardHandler) renderView(w http.ResponseWriter, r *http.Request, view interface{}, err error) {
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, services.ErrNoSnapshot):
		apiErr = apierrors.ErrSnapshotNotReady
	case errors.Is(err, services.ErrRefreshInProgress):
		apiErr = apierrors.ErrRefreshInProgress
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		apiErr = apierrors.SourceFetchError(err)
	}
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apierrors.NewErrorResponse(apiErr))
}

// GetOverview returns the cross-platform summary view.
func (h *DashboardHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	state, apiErr := h.filterState(r.URL.Query())
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	view, err := h.service.Overview(state)
	h.renderView(w, r, view, err)
}

// GetReach returns the deduplicated reach view.
func (h *DashboardHandler) GetReach(w http.ResponseWriter, r *http.Request) {
	state, apiErr := h.filterState(r.URL.Query())
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	view, err := h.service.ReachBreakdown(state)
	h.renderView(w, r, view, err)
}

// GetVideo returns the video funnel view.
func (h *DashboardHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	state, apiErr := h.filterState(r.URL.Query())
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	view, err := h.service.Video(state)
	h.renderView(w, r, view, err)
}

// GetTraffic returns the site-traffic view.
func (h *DashboardHandler) GetTraffic(w http.ResponseWriter, r *http.Request) {
	state, apiErr := h.filterState(r.URL.Query())
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	view, err := h.service.Traffic(state)
	h.renderView(w, r, view, err)
}

// GetPacing returns the planned-versus-invested spend view.
func (h *DashboardHandler) GetPacing(w http.ResponseWriter, r *http.Request) {
	state, apiErr := h.filterState(r.URL.Query())
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	view, err := h.service.Pacing(state)
	h.renderView(w, r, view, err)
}

// GetBenchmarks returns the benchmark comparison view.
func (h *DashboardHandler) GetBenchmarks(w http.ResponseWriter, r *http.Request) {
	state, apiErr := h.filterState(r.URL.Query())
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	view, err := h.service.Benchmarks(state)
	h.renderView(w, r, view, err)
}

// GetFilters returns the distinct filterable values of the snapshot.
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Filters()
	h.renderView(w, r, opts, err)
}

// refreshResponse acknowledges a completed refresh.
type refreshResponse struct {
	SnapshotID string `json:"snapshot_id"`
	FetchedAt  string `json:"fetched_at"`
	Records    int    `json:"records"`
}

// Refresh fetches fresh source tables and swaps the snapshot.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Refresh(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, refreshResponse{
		SnapshotID: snapshot.ID.String(),
		FetchedAt:  snapshot.FetchedAt.Format("2006-01-02T15:04:05Z07:00"),
		Records:    len(snapshot.Delivery) + len(snapshot.Reach) + len(snapshot.Events) + len(snapshot.Plan),
	})
}
