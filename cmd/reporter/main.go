// The reporter command runs the reporting pipeline once and writes the
// aggregated views to CSV files. It reads a local workbook export when
// -workbook is given, otherwise the spreadsheet configured through the
// environment. Useful for checking a sheet without starting the web server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"mediadash/internal/config"
	"mediadash/internal/dataprocessing"
	"mediadash/internal/exporter"
	"mediadash/internal/infrastructure"
	"mediadash/internal/services"
	"mediadash/internal/sheets"
)

func main() {
	workbook := flag.String("workbook", "", "path to an xlsx export; omit to use the configured spreadsheet")
	out := flag.String("out", "reports", "output directory for the csv files")
	start := flag.String("start", "", "inclusive start date (YYYY-MM-DD)")
	end := flag.String("end", "", "inclusive end date (YYYY-MM-DD)")
	platforms := flag.String("platforms", "", "comma-separated platform filter")
	pracas := flag.String("pracas", "", "comma-separated praça filter")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		if *workbook == "" {
			slog.Error("failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		// A workbook on the command line needs no source configuration.
		cfg = config.Default()
	}
	if *workbook != "" {
		cfg.Sheets.WorkbookPath = *workbook
		cfg.Sheets.SpreadsheetID = ""
	}
	cfg.Logging.Output = "console"

	logger := infrastructure.MustInitializeLogger(cfg.Logging)

	provider, err := newProvider(cfg, logger)
	if err != nil {
		logger.Error("failed to create table provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := services.NewDashboardService(provider, cfg.Report, logger)

	ctx, cancel := context.WithTimeout(infrastructure.EnsureTraceID(context.Background()), time.Minute)
	defer cancel()
	if _, err := svc.Refresh(ctx); err != nil {
		logger.Error("refresh failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	state := dataprocessing.FilterState{
		Start:     *start,
		End:       *end,
		Platforms: splitList(*platforms),
		Pracas:    splitList(*pracas),
	}

	writer := exporter.NewCSVWriter(*out)
	if err := writeReports(svc, writer, state); err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("reports written", slog.String("dir", *out))
}

func newProvider(cfg *config.Config, logger *slog.Logger) (services.TableProvider, error) {
	if cfg.Sheets.SpreadsheetID != "" {
		client, err := sheets.NewClient(context.Background(), cfg.Sheets, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	wb, err := sheets.NewWorkbook(cfg.Sheets, logger)
	if err != nil {
		return nil, err
	}
	return wb, nil
}

func writeReports(svc *services.DashboardService, writer *exporter.CSVWriter, state dataprocessing.FilterState) error {
	overview, err := svc.Overview(state)
	if err != nil {
		return err
	}
	if err := writer.WriteMetricGroups("overview.csv", overview.Pracas, overview.Totals); err != nil {
		return err
	}

	reach, err := svc.ReachBreakdown(state)
	if err != nil {
		return err
	}
	if err := writer.WriteMetricGroups("reach.csv", reach.Platforms, reach.Totals); err != nil {
		return err
	}

	video, err := svc.Video(state)
	if err != nil {
		return err
	}
	if err := writer.WriteMetricGroups("video.csv", video.Platforms, video.Totals); err != nil {
		return err
	}

	traffic, err := svc.Traffic(state)
	if err != nil {
		return err
	}
	if err := writer.WriteMetricGroups("traffic.csv", traffic.Sources, traffic.Totals); err != nil {
		return err
	}

	pacing, err := svc.Pacing(state)
	if err != nil {
		return err
	}
	if err := writer.WriteMetricGroups("pacing.csv", pacing.Vehicles, pacing.Totals); err != nil {
		return err
	}

	benchmarks, err := svc.Benchmarks(state)
	if err != nil {
		return err
	}
	return writer.WriteBenchmarks("benchmarks.csv", benchmarks.Comparisons)
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
