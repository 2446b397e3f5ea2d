package services

import (
	"sort"
	"strings"
	"time"

	"mediadash/internal/dataprocessing"
)

// OverviewView is the cross-platform summary: reconciled per-platform rows
// plus totals, a praça breakdown and campaign-level delivery pacing.
type OverviewView struct {
	SnapshotID string                                    `json:"snapshot_id"`
	FetchedAt  time.Time                                 `json:"fetched_at"`
	Totals     dataprocessing.MetricGroup                `json:"totals"`
	Platforms  []dataprocessing.ReconciledPlatformRecord `json:"platforms"`
	Pracas     []dataprocessing.MetricGroup              `json:"pracas"`
	Delivery   DeliveryPacing                            `json:"delivery"`
}

// DeliveryPacing tracks delivered impressions and clicks against the
// configured campaign targets. Pacing values are percentages and zero when
// no target is configured.
type DeliveryPacing struct {
	PlannedImpressions int64   `json:"planned_impressions"`
	ImpressionsPacing  float64 `json:"impressions_pacing"`
	PlannedClicks      int64   `json:"planned_clicks"`
	ClicksPacing       float64 `json:"clicks_pacing"`
}

// ReachView breaks the deduplicated reach figures down by platform and
// praça. Records carries the reconciled per-platform rows behind the
// aggregates.
type ReachView struct {
	Totals    dataprocessing.MetricGroup                `json:"totals"`
	Platforms []dataprocessing.MetricGroup              `json:"platforms"`
	Pracas    []dataprocessing.MetricGroup              `json:"pracas"`
	Records   []dataprocessing.ReconciledPlatformRecord `json:"records"`
}

// VideoView aggregates the video funnel metrics per platform.
type VideoView struct {
	Totals    dataprocessing.MetricGroup   `json:"totals"`
	Platforms []dataprocessing.MetricGroup `json:"platforms"`
	Formats   []dataprocessing.MetricGroup `json:"formats"`
}

// TrafficView aggregates site sessions per traffic source and origin.
type TrafficView struct {
	Totals  dataprocessing.MetricGroup   `json:"totals"`
	Sources []dataprocessing.MetricGroup `json:"sources"`
	Origins []dataprocessing.MetricGroup `json:"origins"`
}

// PacingView reports planned-versus-invested spend per vehicle and praça.
// GlobalPacing is recomputed from the combined sums, never averaged from
// the per-group values.
type PacingView struct {
	Totals   dataprocessing.MetricGroup   `json:"totals"`
	Vehicles []dataprocessing.MetricGroup `json:"vehicles"`
	Pracas   []dataprocessing.MetricGroup `json:"pracas"`
	Months   []dataprocessing.MetricGroup `json:"months"`
}

// BenchmarkComparison pairs a platform's actual metrics with its benchmark
// reference values. Deltas are signed so that positive always means better
// than benchmark: cost metrics (CPM, CPC) subtract the actual from the
// benchmark, performance metrics (CTR, VTR) subtract the benchmark from the
// actual.
type BenchmarkComparison struct {
	Platform     string  `json:"platform"`
	MediaType    string  `json:"media_type"`
	CPM          float64 `json:"cpm"`
	BenchmarkCPM float64 `json:"benchmark_cpm"`
	DeltaCPM     float64 `json:"delta_cpm"`
	CPC          float64 `json:"cpc"`
	BenchmarkCPC float64 `json:"benchmark_cpc"`
	DeltaCPC     float64 `json:"delta_cpc"`
	CTR          float64 `json:"ctr"`
	BenchmarkCTR float64 `json:"benchmark_ctr"`
	DeltaCTR     float64 `json:"delta_ctr"`
	VTR          float64 `json:"vtr"`
	BenchmarkVTR float64 `json:"benchmark_vtr"`
	DeltaVTR     float64 `json:"delta_vtr"`
}

// BenchmarkView lists the per-platform benchmark comparisons.
type BenchmarkView struct {
	Comparisons []BenchmarkComparison `json:"comparisons"`
}

// FilterOptions lists the distinct values of every filterable dimension in
// the current snapshot, for populating filter controls.
type FilterOptions struct {
	MinDate   string   `json:"min_date"`
	MaxDate   string   `json:"max_date"`
	Platforms []string `json:"platforms"`
	Pracas    []string `json:"pracas"`
	BuyTypes  []string `json:"buy_types"`
	Origins   []string `json:"origins"`
}

func platformKey(r dataprocessing.DeliveryRecord) string   { return r.Platform }
func pracaKey(r dataprocessing.DeliveryRecord) string      { return r.Praca }
func formatKey(r dataprocessing.DeliveryRecord) string     { return r.Format }
func reachPlatformKey(r dataprocessing.ReachRecord) string { return r.Platform }
func reachPracaKey(r dataprocessing.ReachRecord) string    { return r.Praca }
func sourceKey(r dataprocessing.EventRecord) string        { return r.Source }
func originKey(r dataprocessing.EventRecord) string        { return r.Origin }
func vehicleKey(r dataprocessing.PlanRecord) string        { return r.Vehicle }
func planPracaKey(r dataprocessing.PlanRecord) string      { return r.Praca }
func planMonthKey(r dataprocessing.PlanRecord) string      { return r.Month }

// Overview computes the cross-platform summary for one filter state.
func (s *DashboardService) Overview(state dataprocessing.FilterState) (OverviewView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return OverviewView{}, err
	}

	delivery := dataprocessing.Apply(snapshot.Delivery, state)
	reach := dataprocessing.Apply(snapshot.Reach, state)
	reconciled := dataprocessing.Reconcile(delivery, reach, s.dedicated)

	_, totals := dataprocessing.Aggregate(reconciled,
		func(r dataprocessing.ReconciledPlatformRecord) string { return r.Platform },
		dataprocessing.BaseImpressions)

	pracas, _ := dataprocessing.Aggregate(delivery, pracaKey, dataprocessing.BaseImpressions)

	return OverviewView{
		SnapshotID: snapshot.ID.String(),
		FetchedAt:  snapshot.FetchedAt,
		Totals:     totals,
		Platforms:  reconciled,
		Pracas:     pracas,
		Delivery:   s.deliveryPacing(totals),
	}, nil
}

func (s *DashboardService) deliveryPacing(totals dataprocessing.MetricGroup) DeliveryPacing {
	pacing := DeliveryPacing{
		PlannedImpressions: s.plannedImpressions,
		PlannedClicks:      s.plannedClicks,
	}
	if s.plannedImpressions > 0 {
		pacing.ImpressionsPacing = float64(totals.Impressions) / float64(s.plannedImpressions) * 100
	}
	if s.plannedClicks > 0 {
		pacing.ClicksPacing = float64(totals.Clicks) / float64(s.plannedClicks) * 100
	}
	return pacing
}

// ReachBreakdown computes the deduplicated reach view.
func (s *DashboardService) ReachBreakdown(state dataprocessing.FilterState) (ReachView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return ReachView{}, err
	}

	reach := dataprocessing.Apply(snapshot.Reach, state)
	platforms, totals := dataprocessing.Aggregate(reach, reachPlatformKey, dataprocessing.BaseReach)
	pracas, _ := dataprocessing.Aggregate(reach, reachPracaKey, dataprocessing.BaseReach)

	delivery := dataprocessing.Apply(snapshot.Delivery, state)
	reconciled := dataprocessing.Reconcile(delivery, reach, s.dedicated)

	return ReachView{Totals: totals, Platforms: platforms, Pracas: pracas, Records: reconciled}, nil
}

// Video computes the video funnel view from the delivery export.
func (s *DashboardService) Video(state dataprocessing.FilterState) (VideoView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return VideoView{}, err
	}

	delivery := withVideo(dataprocessing.Apply(snapshot.Delivery, state))
	platforms, totals := dataprocessing.Aggregate(delivery, platformKey, dataprocessing.BaseVideoViews)
	formats, _ := dataprocessing.Aggregate(delivery, formatKey, dataprocessing.BaseVideoViews)

	return VideoView{Totals: totals, Platforms: platforms, Formats: formats}, nil
}

// withVideo keeps only rows that carry video activity so static-only
// placements do not dilute the funnel ratios.
func withVideo(records []dataprocessing.DeliveryRecord) []dataprocessing.DeliveryRecord {
	out := make([]dataprocessing.DeliveryRecord, 0, len(records))
	for _, r := range records {
		if r.VideoViews > 0 || r.VideoCompletions > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Traffic computes the site-traffic view from the analytics export.
func (s *DashboardService) Traffic(state dataprocessing.FilterState) (TrafficView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return TrafficView{}, err
	}

	events := dataprocessing.Apply(snapshot.Events, state)
	sources, totals := dataprocessing.Aggregate(events, sourceKey, dataprocessing.BaseSessions)
	origins, _ := dataprocessing.Aggregate(events, originKey, dataprocessing.BaseSessions)

	return TrafficView{Totals: totals, Sources: sources, Origins: origins}, nil
}

// Pacing computes planned-versus-invested spend from the media plan.
func (s *DashboardService) Pacing(state dataprocessing.FilterState) (PacingView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return PacingView{}, err
	}

	plan := dataprocessing.Apply(snapshot.Plan, state)
	vehicles, totals := dataprocessing.Aggregate(plan, vehicleKey, dataprocessing.BasePlanned)
	pracas, _ := dataprocessing.Aggregate(plan, planPracaKey, dataprocessing.BasePlanned)
	months, _ := dataprocessing.Aggregate(plan, planMonthKey, dataprocessing.BasePlanned)

	return PacingView{Totals: totals, Vehicles: vehicles, Pracas: pracas, Months: months}, nil
}

// Benchmarks pairs the actual per-platform metrics with the benchmark
// table. Matching is by upper-cased vehicle name with the naming aliases
// the benchmark tab uses.
func (s *DashboardService) Benchmarks(state dataprocessing.FilterState) (BenchmarkView, error) {
	snapshot, err := s.Current()
	if err != nil {
		return BenchmarkView{}, err
	}

	delivery := dataprocessing.Apply(snapshot.Delivery, state)
	groups, _ := dataprocessing.Aggregate(delivery, platformKey, dataprocessing.BaseImpressions)

	actualByVehicle := make(map[string]dataprocessing.MetricGroup, len(groups))
	for _, g := range groups {
		actualByVehicle[benchmarkVehicle(g.Key)] = g
	}

	comparisons := make([]BenchmarkComparison, 0, len(snapshot.Benchmarks))
	for _, b := range snapshot.Benchmarks {
		actual, ok := actualByVehicle[b.Vehicle]
		if !ok {
			continue
		}
		comparisons = append(comparisons, BenchmarkComparison{
			Platform:     actual.Key,
			MediaType:    b.MediaType,
			CPM:          actual.CPM,
			BenchmarkCPM: b.CPM,
			DeltaCPM:     b.CPM - actual.CPM,
			CPC:          actual.CPC,
			BenchmarkCPC: b.CPC,
			DeltaCPC:     b.CPC - actual.CPC,
			CTR:          actual.CTR,
			BenchmarkCTR: b.CTR,
			DeltaCTR:     actual.CTR - b.CTR,
			VTR:          actual.VTR,
			BenchmarkVTR: b.VTR,
			DeltaVTR:     actual.VTR - b.VTR,
		})
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Platform != comparisons[j].Platform {
			return comparisons[i].Platform < comparisons[j].Platform
		}
		return comparisons[i].MediaType < comparisons[j].MediaType
	})
	return BenchmarkView{Comparisons: comparisons}, nil
}

// benchmarkVehicle maps a delivery platform name onto the benchmark tab's
// vehicle naming.
func benchmarkVehicle(platform string) string {
	upper := strings.ToUpper(strings.TrimSpace(platform))
	if upper == "TIKTOK" {
		return "TIK TOK"
	}
	return upper
}

// Filters lists the distinct filterable values of the current snapshot.
func (s *DashboardService) Filters() (FilterOptions, error) {
	snapshot, err := s.Current()
	if err != nil {
		return FilterOptions{}, err
	}

	opts := FilterOptions{}
	platforms := make(map[string]struct{})
	pracas := make(map[string]struct{})
	buyTypes := make(map[string]struct{})
	origins := make(map[string]struct{})

	for _, r := range snapshot.Delivery {
		platforms[r.Platform] = struct{}{}
		pracas[r.Praca] = struct{}{}
		if r.BuyType != "" {
			buyTypes[r.BuyType] = struct{}{}
		}
		if opts.MinDate == "" || r.Date < opts.MinDate {
			opts.MinDate = r.Date
		}
		if r.Date > opts.MaxDate {
			opts.MaxDate = r.Date
		}
	}
	for _, r := range snapshot.Reach {
		platforms[r.Platform] = struct{}{}
		pracas[r.Praca] = struct{}{}
	}
	for _, r := range snapshot.Events {
		if r.Origin != "" {
			origins[r.Origin] = struct{}{}
		}
	}

	opts.Platforms = sortedKeys(platforms)
	opts.Pracas = sortedKeys(pracas)
	opts.BuyTypes = sortedKeys(buyTypes)
	opts.Origins = sortedKeys(origins)
	return opts, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
