// Package exporter writes report views to CSV for offline analysis. The
// files carry a UTF-8 BOM so Excel renders the pt-BR labels correctly.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mediadash/internal/dataprocessing"
	"mediadash/internal/services"
)

// CSVWriter provides CSV export functionality.
type CSVWriter struct {
	outputDir string
}

// NewCSVWriter creates a new CSV writer rooted at outputDir.
func NewCSVWriter(outputDir string) *CSVWriter {
	return &CSVWriter{outputDir: outputDir}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options.
func (w *CSVWriter) WriteCSV(fileName string, options WriteOptions) error {
	fullPath := w.resolvePath(fileName)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// metricGroupHeaders is the column layout of an exported MetricGroup table.
var metricGroupHeaders = []string{
	"key", "impressions", "reach", "clicks", "sessions",
	"cost", "frequency", "cpm", "cpc", "ctr", "vtr", "pacing", "share_of_total",
}

// WriteMetricGroups exports aggregated groups plus the grand total as the
// last row.
func (w *CSVWriter) WriteMetricGroups(fileName string, groups []dataprocessing.MetricGroup, total dataprocessing.MetricGroup) error {
	records := make([][]string, 0, len(groups)+1)
	for _, g := range groups {
		records = append(records, metricGroupRow(g))
	}
	records = append(records, metricGroupRow(total))

	return w.WriteCSV(fileName, WriteOptions{
		Headers:   metricGroupHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

func metricGroupRow(g dataprocessing.MetricGroup) []string {
	return []string{
		g.Key,
		strconv.FormatInt(g.Impressions, 10),
		strconv.FormatInt(g.Reach, 10),
		strconv.FormatInt(g.Clicks, 10),
		strconv.FormatInt(g.Sessions, 10),
		formatFloat(g.Cost),
		formatFloat(g.Frequency),
		formatFloat(g.CPM),
		formatFloat(g.CPC),
		formatFloat(g.CTR),
		formatFloat(g.VTR),
		formatFloat(g.Pacing),
		formatFloat(g.ShareOfTotal),
	}
}

// benchmarkHeaders is the column layout of the benchmark comparison export.
var benchmarkHeaders = []string{
	"platform", "media_type",
	"cpm", "benchmark_cpm", "delta_cpm",
	"cpc", "benchmark_cpc", "delta_cpc",
	"ctr", "benchmark_ctr", "delta_ctr",
	"vtr", "benchmark_vtr", "delta_vtr",
}

// WriteBenchmarks exports the benchmark comparison table.
func (w *CSVWriter) WriteBenchmarks(fileName string, comparisons []services.BenchmarkComparison) error {
	records := make([][]string, 0, len(comparisons))
	for _, c := range comparisons {
		records = append(records, []string{
			c.Platform, c.MediaType,
			formatFloat(c.CPM), formatFloat(c.BenchmarkCPM), formatFloat(c.DeltaCPM),
			formatFloat(c.CPC), formatFloat(c.BenchmarkCPC), formatFloat(c.DeltaCPC),
			formatFloat(c.CTR), formatFloat(c.BenchmarkCTR), formatFloat(c.DeltaCTR),
			formatFloat(c.VTR), formatFloat(c.BenchmarkVTR), formatFloat(c.DeltaVTR),
		})
	}

	return w.WriteCSV(fileName, WriteOptions{
		Headers:   benchmarkHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}

// formatFloat keeps two decimals, enough for currency and rate columns.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (w *CSVWriter) resolvePath(fileName string) string {
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(w.outputDir, fileName)
}
