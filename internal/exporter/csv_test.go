package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadash/internal/dataprocessing"
	"mediadash/internal/services"
)

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	err := w.WriteCSV("out/report.csv", WriteOptions{
		Headers:   []string{"key", "value"},
		Records:   [][]string{{"Meta", "1500"}},
		BOMPrefix: true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "report.csv"))
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"key", "value"}, rows[0])
	assert.Equal(t, []string{"Meta", "1500"}, rows[1])
}

func TestWriteMetricGroups(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	groups := []dataprocessing.MetricGroup{
		{Key: "Meta", Totals: dataprocessing.Totals{Impressions: 1500, Cost: 150}, CPM: 100, ShareOfTotal: 42.86},
	}
	total := dataprocessing.MetricGroup{Key: "total", Totals: dataprocessing.Totals{Impressions: 3500, Cost: 350}, CPM: 100, ShareOfTotal: 100}

	require.NoError(t, w.WriteMetricGroups("platforms.csv", groups, total))

	data, err := os.ReadFile(filepath.Join(dir, "platforms.csv"))
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "key", rows[0][0])
	assert.Equal(t, "Meta", rows[1][0])
	assert.Equal(t, "1500", rows[1][1])
	assert.Equal(t, "100.00", rows[1][7])
	assert.Equal(t, "total", rows[2][0])
}

func TestWriteBenchmarks(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	comparisons := []services.BenchmarkComparison{
		{
			Platform: "TikTok", MediaType: "VIDEO",
			CPM: 15, BenchmarkCPM: 12.5, DeltaCPM: -2.5,
			CTR: 1.2, BenchmarkCTR: 1.0, DeltaCTR: 0.2,
		},
	}

	require.NoError(t, w.WriteBenchmarks("benchmarks.csv", comparisons))

	data, err := os.ReadFile(filepath.Join(dir, "benchmarks.csv"))
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "platform", rows[0][0])
	assert.Equal(t, "delta_cpm", rows[0][4])
	assert.Equal(t, "TikTok", rows[1][0])
	assert.Equal(t, "-2.50", rows[1][4])
	assert.Equal(t, "0.20", rows[1][10])
}
