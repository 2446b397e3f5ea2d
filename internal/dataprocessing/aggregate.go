package dataprocessing

import "sort"

// Totals holds the additive fields summed during aggregation. Ratio metrics
// are always derived from these sums, never carried over from per-row
// ratios: averaging averages is the one mistake this package exists to
// prevent.
type Totals struct {
	Impressions      int64   `json:"impressions"`
	Reach            int64   `json:"reach"`
	Clicks           int64   `json:"clicks"`
	Sessions         int64   `json:"sessions"`
	VideoViews       int64   `json:"video_views"`
	VideoViews25     int64   `json:"video_views_25"`
	VideoViews50     int64   `json:"video_views_50"`
	VideoViews75     int64   `json:"video_views_75"`
	VideoCompletions int64   `json:"video_completions"`
	Cost             float64 `json:"cost"`
	Invested         float64 `json:"invested"`
	Planned          float64 `json:"planned"`
}

// Add accumulates another Totals into t. Addition commutes and associates,
// so partitioned aggregation merges to the same sums as a single pass.
func (t *Totals) Add(o Totals) {
	t.Impressions += o.Impressions
	t.Reach += o.Reach
	t.Clicks += o.Clicks
	t.Sessions += o.Sessions
	t.VideoViews += o.VideoViews
	t.VideoViews25 += o.VideoViews25
	t.VideoViews50 += o.VideoViews50
	t.VideoViews75 += o.VideoViews75
	t.VideoCompletions += o.VideoCompletions
	t.Cost += o.Cost
	t.Invested += o.Invested
	t.Planned += o.Planned
}

// Metrics derives a finalized MetricGroup from the sums. Ratios are
// computed in a fixed order, each from this group's own sums only, with
// zero denominators yielding zero. ShareOfTotal is left for the caller
// (it needs the grand total).
func (t Totals) Metrics(key string) MetricGroup {
	g := MetricGroup{Key: key, Totals: t}
	g.Frequency = ratio(float64(t.Impressions), float64(t.Reach))
	g.CPM = ratio(t.Cost, float64(t.Impressions)/1000)
	g.CPC = ratio(t.Cost, float64(t.Clicks))
	g.CTR = ratio(float64(t.Clicks), float64(t.Impressions)) * 100
	g.CPV = ratio(t.Cost, float64(t.VideoViews))
	g.CPVC = ratio(t.Cost, float64(t.VideoCompletions))
	g.VTR = ratio(float64(t.VideoCompletions), float64(t.Impressions)) * 100
	g.Pacing = ratio(t.Invested, t.Planned) * 100
	return g
}

// MetricGroup is the output of aggregation for one group key: the summed
// additive fields plus the ratio metrics derived from them.
type MetricGroup struct {
	Key string `json:"key"`
	Totals

	Frequency float64 `json:"frequency"`
	CPM       float64 `json:"cpm"`
	CPC       float64 `json:"cpc"`
	CTR       float64 `json:"ctr"`
	CPV       float64 `json:"cpv"`
	CPVC      float64 `json:"cpvc"`
	VTR       float64 `json:"vtr"`
	Pacing    float64 `json:"pacing"`

	// ShareOfTotal is this group's base metric as a percentage of the
	// grand total of all groups; zero when the grand total is zero.
	ShareOfTotal float64 `json:"share_of_total"`
}

// Summable is implemented by record types that can be aggregated.
type Summable interface {
	Totals() Totals
}

// BaseMetric selects the additive field driving ShareOfTotal and the
// default descending sort of the aggregated groups.
type BaseMetric func(Totals) float64

var (
	BaseImpressions BaseMetric = func(t Totals) float64 { return float64(t.Impressions) }
	BaseReach       BaseMetric = func(t Totals) float64 { return float64(t.Reach) }
	BaseCost        BaseMetric = func(t Totals) float64 { return t.Cost }
	BaseSessions    BaseMetric = func(t Totals) float64 { return float64(t.Sessions) }
	BaseVideoViews  BaseMetric = func(t Totals) float64 { return float64(t.VideoViews) }
	BasePlanned     BaseMetric = func(t Totals) float64 { return t.Planned }
)

// Aggregate groups records by keyFn, sums their additive fields and derives
// the ratio metrics per group and for the grand total. Groups come back
// sorted descending by the base metric (key ascending as tie-break). The
// grand-total group recomputes every ratio from the combined sums; it is
// never an average of the per-group ratios.
func Aggregate[T Summable](records []T, keyFn func(T) string, base BaseMetric) ([]MetricGroup, MetricGroup) {
	if base == nil {
		base = BaseImpressions
	}

	sums := make(map[string]*Totals)
	order := make([]string, 0)
	var grand Totals

	for _, rec := range records {
		key := keyFn(rec)
		t, ok := sums[key]
		if !ok {
			t = &Totals{}
			sums[key] = t
			order = append(order, key)
		}
		rt := rec.Totals()
		t.Add(rt)
		grand.Add(rt)
	}

	groups := make([]MetricGroup, 0, len(sums))
	grandBase := base(grand)
	for _, key := range order {
		g := sums[key].Metrics(key)
		g.ShareOfTotal = ratio(base(*sums[key]), grandBase) * 100
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		bi, bj := base(groups[i].Totals), base(groups[j].Totals)
		if bi != bj {
			return bi > bj
		}
		return groups[i].Key < groups[j].Key
	})

	total := grand.Metrics("total")
	if grandBase > 0 {
		total.ShareOfTotal = 100
	}
	return groups, total
}

// Summable implementations.

func (r DeliveryRecord) Totals() Totals {
	return Totals{
		Impressions:      r.Impressions,
		Reach:            r.Reach,
		Clicks:           r.Clicks,
		VideoViews:       r.VideoViews,
		VideoViews25:     r.VideoViews25,
		VideoViews50:     r.VideoViews50,
		VideoViews75:     r.VideoViews75,
		VideoCompletions: r.VideoCompletions,
		Cost:             r.Cost,
	}
}

func (r ReachRecord) Totals() Totals {
	return Totals{Impressions: r.Impressions, Reach: r.Reach}
}

func (r ReconciledPlatformRecord) Totals() Totals {
	return Totals{
		Impressions: r.Impressions,
		Reach:       r.Reach,
		Clicks:      r.Clicks,
		Cost:        r.Cost,
	}
}

func (r EventRecord) Totals() Totals {
	return Totals{Sessions: r.Sessions}
}

func (r PlanRecord) Totals() Totals {
	return Totals{Invested: r.Invested, Planned: r.Planned}
}
