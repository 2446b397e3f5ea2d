package sheets

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mediadash/internal/config"
)

func writeFixtureWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Consolidado Nacional"))
	require.NoError(t, f.SetSheetRow("Consolidado Nacional", "A1",
		&[]string{"Date", "Veículo", "Impressions", "Total spent"}))
	require.NoError(t, f.SetSheetRow("Consolidado Nacional", "A2",
		&[]string{"15/03/2025", "Meta", "10.000", "R$ 1.500,00"}))

	_, err := f.NewSheet("Alcance TikTok")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Alcance TikTok", "A1",
		&[]string{"Advertiser name", "Impressions", "Reach", "Frequency", "Praça"}))
	require.NoError(t, f.SetSheetRow("Alcance TikTok", "A2",
		&[]string{"Acme", "5.000", "4.000", "1,25", "Nacional"}))

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestWorkbookFetchAll(t *testing.T) {
	cfg := config.Default().Sheets
	cfg.WorkbookPath = writeFixtureWorkbook(t)
	cfg.ReachRanges = map[string]string{"TikTok": "Alcance TikTok!A:E"}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	wb, err := NewWorkbook(cfg, logger)
	require.NoError(t, err)

	set, err := wb.FetchAll(context.Background())
	require.NoError(t, err)

	require.False(t, set.Delivery.Empty())
	assert.Equal(t, "Consolidado Nacional", set.Delivery.Name)
	assert.Equal(t, []string{"Date", "Veículo", "Impressions", "Total spent"}, set.Delivery.Header)
	require.Len(t, set.Delivery.Rows, 1)

	reach, ok := set.Reach["TikTok"]
	require.True(t, ok)
	require.Len(t, reach.Rows, 1)
	assert.Equal(t, "Acme", reach.Rows[0][0])

	// Tabs absent from the workbook come back empty, not as errors.
	assert.True(t, set.Benchmark.Empty())
	assert.True(t, set.Events.Empty())
	assert.True(t, set.Plan.Empty())
}

func TestWorkbookMissingFile(t *testing.T) {
	cfg := config.Default().Sheets
	cfg.WorkbookPath = "does/not/exist.xlsx"

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	wb, err := NewWorkbook(cfg, logger)
	require.NoError(t, err)

	_, err = wb.FetchAll(context.Background())
	assert.Error(t, err)
}

func TestNewWorkbookRequiresPath(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	_, err := NewWorkbook(config.SheetsConfig{}, logger)
	assert.Error(t, err)
}
