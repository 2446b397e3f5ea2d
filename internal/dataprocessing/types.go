package dataprocessing

import "strings"

// RawTable is one fetched spreadsheet tab: a header row followed by data
// rows, all cells as strings. Tables are immutable once fetched and are
// interpreted only through header-based column resolution (legacy tabs with
// unnamed columns use the documented positional fallback in Schema).
type RawTable struct {
	// Name identifies the tab for diagnostics (e.g. "Meta_alcance!A:E").
	Name   string
	Header []string
	Rows   [][]string
}

// Empty reports whether the table carries no data rows.
func (t RawTable) Empty() bool {
	return len(t.Rows) == 0
}

// DeliveryRecord is one normalized row of the consolidated delivery export.
type DeliveryRecord struct {
	Date         string `json:"date"` // ISO YYYY-MM-DD, "" when unresolvable
	Platform     string `json:"platform"`
	CampaignName string `json:"campaign_name"`
	Praca        string `json:"praca"`
	BuyType      string `json:"buy_type"`
	Format       string `json:"format"`

	Impressions      int64   `json:"impressions"`
	Cost             float64 `json:"cost"`
	Reach            int64   `json:"reach"`
	Clicks           int64   `json:"clicks"`
	VideoViews       int64   `json:"video_views"`
	VideoViews25     int64   `json:"video_views_25"`
	VideoViews50     int64   `json:"video_views_50"`
	VideoViews75     int64   `json:"video_views_75"`
	VideoCompletions int64   `json:"video_completions"`

	// Row-level derived metrics, zero when the denominator is zero.
	Frequency float64 `json:"frequency"`
	CPM       float64 `json:"cpm"`
	CPV       float64 `json:"cpv"`
	CPVC      float64 `json:"cpvc"`
	VTR       float64 `json:"vtr"`
}

// ReachRecord is one normalized row of a dedicated deduplicated-reach tab.
// The platform is supplied per tab by configuration; the legacy tabs carry
// no platform column of their own.
type ReachRecord struct {
	Platform    string  `json:"platform"`
	Advertiser  string  `json:"advertiser"`
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Frequency   float64 `json:"frequency"`
	Praca       string  `json:"praca"`
}

// BenchmarkRecord is one row of the benchmark table, keyed by upper-cased
// vehicle and media type.
type BenchmarkRecord struct {
	Vehicle   string  `json:"vehicle"`
	MediaType string  `json:"media_type"`
	CPM       float64 `json:"cpm"`
	CPC       float64 `json:"cpc"`
	CTR       float64 `json:"ctr"`
	VTR       float64 `json:"vtr"`
}

// Key returns the vehicle+media-type lookup key used for benchmark matching.
func (b BenchmarkRecord) Key() string {
	return b.Vehicle + "_" + b.MediaType
}

// EventRecord is one normalized row of a GA4 session/event export tab.
type EventRecord struct {
	Date     string `json:"date"`
	Source   string `json:"source"`
	Sessions int64  `json:"sessions"`
	Origin   string `json:"origin"`
	Praca    string `json:"praca"`
}

// PlanRecord is one normalized row of the media-plan tab: planned versus
// invested spend per praça, vehicle and month.
type PlanRecord struct {
	Praca    string  `json:"praca"`
	Vehicle  string  `json:"vehicle"`
	Month    string  `json:"month"`
	Invested float64 `json:"invested"`
	Planned  float64 `json:"planned"`
	BuyType  string  `json:"buy_type"`
}

// ReconciledPlatformRecord is the per-platform merge of delivery and
// dedicated-reach data. For platforms in the dedicated-reach set the
// impressions and reach come exclusively from the reach export; cost and
// clicks always come from the delivery export.
type ReconciledPlatformRecord struct {
	Platform    string  `json:"platform"`
	Impressions int64   `json:"impressions"`
	Reach       int64   `json:"reach"`
	Cost        float64 `json:"cost"`
	Clicks      int64   `json:"clicks"`
	Frequency   float64 `json:"frequency"`
	CPM         float64 `json:"cpm"`
	CPC         float64 `json:"cpc"`
	CTR         float64 `json:"ctr"`

	// DedicatedSource marks records whose reach figures came from a
	// dedicated deduplicated-reach tab rather than the delivery export.
	DedicatedSource bool `json:"dedicated_source"`
}

// PlatformSet is a case-insensitive set of platform names. The zero value
// is an empty set.
type PlatformSet map[string]string

// NewPlatformSet builds a set preserving the first-seen casing of each name.
func NewPlatformSet(names ...string) PlatformSet {
	s := make(PlatformSet, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := s[key]; !ok {
			s[key] = name
		}
	}
	return s
}

// Contains reports membership ignoring case.
func (s PlatformSet) Contains(name string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the canonical member names.
func (s PlatformSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, name := range s {
		names = append(names, name)
	}
	return names
}
