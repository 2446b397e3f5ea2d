// Package sheets fetches the raw source tables, either from a Google
// spreadsheet through the Sheets API or from a local workbook file. Both
// providers return the same TableSet so the reporting service does not care
// where the data came from.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"mediadash/internal/config"
	"mediadash/internal/dataprocessing"
)

// TableSet is one consistent snapshot of every source table. Reach maps a
// platform name to its dedicated-reach tab.
type TableSet struct {
	Delivery  dataprocessing.RawTable
	Benchmark dataprocessing.RawTable
	Events    dataprocessing.RawTable
	Plan      dataprocessing.RawTable
	Reach     map[string]dataprocessing.RawTable
}

// Client reads tables from a Google spreadsheet. Requests are rate limited
// to stay inside the Sheets API quota.
type Client struct {
	svc     *sheetsapi.Service
	cfg     config.SheetsConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a Sheets API client using API-key authentication. The
// spreadsheet must be readable by anyone with the link.
func NewClient(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	svc, err := sheetsapi.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		svc:     svc,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger.With(slog.String("component", "sheets_client")),
	}, nil
}

// FetchTable reads one A1-notation range and converts the response envelope
// into a RawTable. An empty range result yields an empty table, not an
// error; missing tabs are a data-quality condition handled downstream.
func (c *Client) FetchTable(ctx context.Context, rangeRef string) (dataprocessing.RawTable, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return dataprocessing.RawTable{}, err
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, rangeRef).Context(ctx).Do()
	if err != nil {
		return dataprocessing.RawTable{}, fmt.Errorf("failed to read range %q: %w", rangeRef, err)
	}

	table := tableFromValues(tabName(rangeRef), resp.Values)
	c.logger.DebugContext(ctx, "range fetched",
		slog.String("range", rangeRef),
		slog.Int("rows", len(table.Rows)))
	return table, nil
}

// FetchAll reads every configured range concurrently and returns a complete
// snapshot. Any single failure aborts the whole fetch; reconciliation needs
// all tables from the same moment.
func (c *Client) FetchAll(ctx context.Context) (TableSet, error) {
	var set TableSet
	set.Reach = make(map[string]dataprocessing.RawTable, len(c.cfg.ReachRanges))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		set.Delivery, err = c.FetchTable(gctx, c.cfg.DeliveryRange)
		return err
	})
	g.Go(func() error {
		var err error
		set.Benchmark, err = c.FetchTable(gctx, c.cfg.BenchmarkRange)
		return err
	})
	g.Go(func() error {
		var err error
		set.Events, err = c.FetchTable(gctx, c.cfg.EventsRange)
		return err
	})
	g.Go(func() error {
		var err error
		set.Plan, err = c.FetchTable(gctx, c.cfg.PlanRange)
		return err
	})

	reach := make([]dataprocessing.RawTable, len(c.cfg.ReachRanges))
	platforms := make([]string, 0, len(c.cfg.ReachRanges))
	for platform := range c.cfg.ReachRanges {
		platforms = append(platforms, platform)
	}
	for i, platform := range platforms {
		i, platform := i, platform
		g.Go(func() error {
			var err error
			reach[i], err = c.FetchTable(gctx, c.cfg.ReachRanges[platform])
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return TableSet{}, err
	}

	for i, platform := range platforms {
		set.Reach[platform] = reach[i]
	}
	return set, nil
}

// tableFromValues unwraps the Sheets API value envelope. The first row is
// the header; trailing shape differences between rows are preserved as-is.
func tableFromValues(name string, values [][]interface{}) dataprocessing.RawTable {
	if len(values) == 0 {
		return dataprocessing.RawTable{Name: name}
	}

	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = cellString(cell)
	}

	rows := make([][]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = cellString(cell)
		}
		rows = append(rows, row)
	}

	return dataprocessing.RawTable{Name: name, Header: header, Rows: rows}
}

// cellString renders an untyped API cell as text. Floats drop the trailing
// zeros Go would otherwise print so counts stay parseable as integers.
func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// tabName extracts the tab portion of an A1-notation range reference.
func tabName(rangeRef string) string {
	name, _, found := strings.Cut(rangeRef, "!")
	if !found {
		return rangeRef
	}
	return strings.Trim(name, "'")
}
