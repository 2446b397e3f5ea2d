package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"mediadash/internal/config"
	"mediadash/internal/dataprocessing"
)

// Workbook reads the same source tables from a local Excel export. It
// implements the same FetchAll contract as Client so offline runs and tests
// can use a downloaded copy of the spreadsheet.
type Workbook struct {
	path   string
	cfg    config.SheetsConfig
	logger *slog.Logger
}

// NewWorkbook creates a workbook provider for the configured file path.
func NewWorkbook(cfg config.SheetsConfig, logger *slog.Logger) (*Workbook, error) {
	if cfg.WorkbookPath == "" {
		return nil, fmt.Errorf("workbook path is required")
	}
	return &Workbook{
		path:   cfg.WorkbookPath,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "workbook")),
	}, nil
}

// FetchAll opens the workbook once and reads every configured tab. A tab
// missing from the file yields an empty table rather than an error, matching
// the missing-source policy of the reporting core.
func (w *Workbook) FetchAll(ctx context.Context) (TableSet, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return TableSet{}, fmt.Errorf("failed to open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	var set TableSet
	set.Delivery = w.readTab(ctx, f, tabName(w.cfg.DeliveryRange))
	set.Benchmark = w.readTab(ctx, f, tabName(w.cfg.BenchmarkRange))
	set.Events = w.readTab(ctx, f, tabName(w.cfg.EventsRange))
	set.Plan = w.readTab(ctx, f, tabName(w.cfg.PlanRange))

	set.Reach = make(map[string]dataprocessing.RawTable, len(w.cfg.ReachRanges))
	for platform, rangeRef := range w.cfg.ReachRanges {
		set.Reach[platform] = w.readTab(ctx, f, tabName(rangeRef))
	}
	return set, nil
}

func (w *Workbook) readTab(ctx context.Context, f *excelize.File, name string) dataprocessing.RawTable {
	rows, err := f.GetRows(name)
	if err != nil || len(rows) == 0 {
		w.logger.WarnContext(ctx, "tab not readable",
			slog.String("tab", name))
		return dataprocessing.RawTable{Name: name}
	}
	return dataprocessing.RawTable{
		Name:   name,
		Header: rows[0],
		Rows:   rows[1:],
	}
}
