package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadash/internal/config"
	"mediadash/internal/services"
	"mediadash/internal/sheets"
)

type stubProvider struct{}

func (stubProvider) FetchAll(ctx context.Context) (sheets.TableSet, error) {
	return sheets.TableSet{}, nil
}

func testApplication(t *testing.T) *Application {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	app := &Application{
		Config:    config.Default(),
		Dashboard: services.NewDashboardService(stubProvider{}, config.Default().Report, logger),
		Logger:    logger,
	}
	app.setupRouter()
	app.createServer()
	return app
}

func TestRouterHealthEndpoint(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRouterDashboardBeforeRefresh(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/overview", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterSetsRequestID(t *testing.T) {
	app := testApplication(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateServer(t *testing.T) {
	app := testApplication(t)
	require.NotNil(t, app.Server)
	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
}

func TestNewProviderUsesWorkbookWhenNoSpreadsheet(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfg := config.Default()
	cfg.Sheets.WorkbookPath = "data/export.xlsx"
	provider, err := newProvider(cfg, logger)
	require.NoError(t, err)
	_, isWorkbook := provider.(*sheets.Workbook)
	assert.True(t, isWorkbook)
}
