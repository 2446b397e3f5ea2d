package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediadash/internal/config"
	"mediadash/internal/dataprocessing"
	"mediadash/internal/sheets"
)

type fakeProvider struct {
	set sheets.TableSet
	err error
}

func (p *fakeProvider) FetchAll(ctx context.Context) (sheets.TableSet, error) {
	return p.set, p.err
}

func testService(t *testing.T, provider TableProvider) *DashboardService {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewDashboardService(provider, config.Default().Report, logger)
}

func fixtureTableSet() sheets.TableSet {
	return sheets.TableSet{
		Delivery: dataprocessing.RawTable{
			Name:   "Consolidado Nacional",
			Header: []string{"Date", "Veículo", "Impressions", "Total spent", "Reach", "Clicks"},
			Rows: [][]string{
				{"15/03/2025", "TikTok", "9.000", "R$ 300,00", "7.000", "50"},
				{"15/03/2025", "Google", "2.000", "R$ 120,00", "1.500", "30"},
			},
		},
		Reach: map[string]dataprocessing.RawTable{
			"TikTok": {
				Name:   "Alcance TikTok",
				Header: []string{"Advertiser name", "Impressions", "Reach", "Frequency", "Praça"},
				Rows: [][]string{
					{"Acme", "5.000", "4.000", "1,25", "Nacional"},
				},
			},
		},
	}
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	svc := testService(t, &fakeProvider{set: fixtureTableSet()})

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, snapshot.ID)
	assert.WithinDuration(t, time.Now().UTC(), snapshot.FetchedAt, time.Minute)
	assert.Len(t, snapshot.Delivery, 2)
	assert.Len(t, snapshot.Reach, 1)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, current.ID)
}

func TestRefreshPropagatesFetchFailure(t *testing.T) {
	svc := testService(t, &fakeProvider{err: errors.New("range not found")})

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "range not found")

	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestViewsBeforeRefresh(t *testing.T) {
	svc := testService(t, &fakeProvider{})

	_, err := svc.Overview(dataprocessing.FilterState{})
	assert.ErrorIs(t, err, ErrNoSnapshot)
	_, err = svc.Filters()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestOverviewReconcilesDedicatedReach(t *testing.T) {
	svc := testService(t, &fakeProvider{set: fixtureTableSet()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	view, err := svc.Overview(dataprocessing.FilterState{})
	require.NoError(t, err)
	require.Len(t, view.Platforms, 2)

	byName := make(map[string]dataprocessing.ReconciledPlatformRecord)
	for _, p := range view.Platforms {
		byName[p.Platform] = p
	}

	tiktok := byName["TikTok"]
	assert.Equal(t, int64(5000), tiktok.Impressions)
	assert.Equal(t, int64(4000), tiktok.Reach)
	assert.InDelta(t, 300.0, tiktok.Cost, 1e-9)
	assert.Equal(t, int64(50), tiktok.Clicks)
	assert.True(t, tiktok.DedicatedSource)

	google := byName["Google"]
	assert.Equal(t, int64(2000), google.Impressions)
	assert.False(t, google.DedicatedSource)

	assert.Equal(t, int64(7000), view.Totals.Impressions)
	assert.InDelta(t, 420.0, view.Totals.Cost, 1e-9)
}

func TestOverviewDeliveryPacing(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	report := config.Default().Report
	report.PlannedImpressions = 14000
	report.PlannedClicks = 0

	svc := NewDashboardService(&fakeProvider{set: fixtureTableSet()}, report, logger)
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	view, err := svc.Overview(dataprocessing.FilterState{})
	require.NoError(t, err)

	assert.Equal(t, int64(14000), view.Delivery.PlannedImpressions)
	assert.InDelta(t, 50.0, view.Delivery.ImpressionsPacing, 1e-9)
	assert.Zero(t, view.Delivery.ClicksPacing)
}

func TestOverviewAppliesFilter(t *testing.T) {
	svc := testService(t, &fakeProvider{set: fixtureTableSet()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	view, err := svc.Overview(dataprocessing.FilterState{Platforms: []string{"Google"}})
	require.NoError(t, err)
	require.Len(t, view.Platforms, 1)
	assert.Equal(t, "Google", view.Platforms[0].Platform)
}

func TestReachBreakdownCarriesReconciledRecords(t *testing.T) {
	svc := testService(t, &fakeProvider{set: fixtureTableSet()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	view, err := svc.ReachBreakdown(dataprocessing.FilterState{})
	require.NoError(t, err)

	require.Len(t, view.Platforms, 1)
	assert.Equal(t, "TikTok", view.Platforms[0].Key)
	assert.Equal(t, int64(4000), view.Totals.Reach)

	require.Len(t, view.Records, 2)
	byName := make(map[string]dataprocessing.ReconciledPlatformRecord)
	for _, r := range view.Records {
		byName[r.Platform] = r
	}
	assert.True(t, byName["TikTok"].DedicatedSource)
	assert.Equal(t, int64(4000), byName["TikTok"].Reach)
	assert.False(t, byName["Google"].DedicatedSource)
}

func TestPacingView(t *testing.T) {
	svc := testService(t, &fakeProvider{})
	svc.SetSnapshot(&Snapshot{
		ID: uuid.New(),
		Plan: []dataprocessing.PlanRecord{
			{Praca: "São Paulo", Vehicle: "Meta", Month: "2025-03", Invested: 8000, Planned: 10000},
			{Praca: "São Paulo", Vehicle: "Google", Month: "2025-03", Invested: 1000, Planned: 1000},
		},
	})

	view, err := svc.Pacing(dataprocessing.FilterState{})
	require.NoError(t, err)
	require.Len(t, view.Vehicles, 2)

	assert.Equal(t, "Meta", view.Vehicles[0].Key)
	assert.InDelta(t, 80.0, view.Vehicles[0].Pacing, 1e-9)
	assert.InDelta(t, 9000.0/11000.0*100, view.Totals.Pacing, 1e-6)

	require.Len(t, view.Months, 1)
	assert.Equal(t, "2025-03", view.Months[0].Key)
	assert.InDelta(t, 9000.0/11000.0*100, view.Months[0].Pacing, 1e-6)
}

func TestTrafficView(t *testing.T) {
	svc := testService(t, &fakeProvider{})
	svc.SetSnapshot(&Snapshot{
		ID: uuid.New(),
		Events: []dataprocessing.EventRecord{
			{Date: "2025-03-15", Source: "meta", Sessions: 1200, Origin: "Paid Social"},
			{Date: "2025-03-16", Source: "google", Sessions: 800, Origin: "Paid Search"},
		},
	})

	view, err := svc.Traffic(dataprocessing.FilterState{End: "2025-03-15"})
	require.NoError(t, err)
	require.Len(t, view.Sources, 1)
	assert.Equal(t, "meta", view.Sources[0].Key)
	assert.Equal(t, int64(1200), view.Totals.Sessions)
}

func TestVideoViewSkipsStaticRows(t *testing.T) {
	svc := testService(t, &fakeProvider{})
	svc.SetSnapshot(&Snapshot{
		ID: uuid.New(),
		Delivery: []dataprocessing.DeliveryRecord{
			{Date: "2025-03-15", Platform: "YouTube", Impressions: 10000, Cost: 500, VideoViews: 4000, VideoCompletions: 2000, Format: "video"},
			{Date: "2025-03-15", Platform: "Meta", Impressions: 5000, Cost: 200, Format: "estatico"},
		},
	})

	view, err := svc.Video(dataprocessing.FilterState{})
	require.NoError(t, err)
	require.Len(t, view.Platforms, 1)
	assert.Equal(t, "YouTube", view.Platforms[0].Key)
	assert.InDelta(t, 20.0, view.Totals.VTR, 1e-9)
}

func TestBenchmarkView(t *testing.T) {
	svc := testService(t, &fakeProvider{})
	svc.SetSnapshot(&Snapshot{
		ID: uuid.New(),
		Delivery: []dataprocessing.DeliveryRecord{
			{Date: "2025-03-15", Platform: "TikTok", Impressions: 10000, Cost: 150, Clicks: 120},
		},
		Benchmarks: []dataprocessing.BenchmarkRecord{
			{Vehicle: "TIK TOK", MediaType: "VIDEO", CPM: 12.5, CPC: 1.0, CTR: 1.0, VTR: 60},
			{Vehicle: "PINTEREST", MediaType: "VIDEO", CPM: 9.0},
		},
	})

	view, err := svc.Benchmarks(dataprocessing.FilterState{})
	require.NoError(t, err)
	require.Len(t, view.Comparisons, 1)

	cmp := view.Comparisons[0]
	assert.Equal(t, "TikTok", cmp.Platform)
	assert.InDelta(t, 15.0, cmp.CPM, 1e-9)
	assert.InDelta(t, 12.5, cmp.BenchmarkCPM, 1e-9)
	assert.InDelta(t, 1.2, cmp.CTR, 1e-9)

	// Positive delta always means better than benchmark.
	assert.InDelta(t, -2.5, cmp.DeltaCPM, 1e-9)
	assert.InDelta(t, 0.2, cmp.DeltaCTR, 1e-9)
}

func TestFilters(t *testing.T) {
	svc := testService(t, &fakeProvider{set: fixtureTableSet()})
	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	opts, err := svc.Filters()
	require.NoError(t, err)

	assert.Equal(t, "2025-03-15", opts.MinDate)
	assert.Equal(t, "2025-03-15", opts.MaxDate)
	assert.Contains(t, opts.Platforms, "TikTok")
	assert.Contains(t, opts.Platforms, "Google")
	assert.Contains(t, opts.Pracas, "Nacional")
}
