package dataprocessing

import (
	"sort"
	"strings"
)

// Reconcile merges delivery and dedicated-reach data into one logical
// per-platform record set.
//
// For platforms in the dedicated set, impressions and reach are taken
// exclusively from the reach export; the delivery export's own impressions
// and reach for those platforms are ignored so the deduplicated figures are
// never double-counted. For every other platform they come from the
// delivery export. Cost and clicks always accumulate from the delivery
// export, for dedicated platforms too.
//
// Both inputs must already have passed the same filter state; reconciling
// differently filtered collections breaks the cross-source consistency the
// dedicated-reach tabs exist to provide.
//
// A dedicated platform that never appears in the reach export keeps zero
// impressions and reach while still accumulating cost and clicks. That
// asymmetry reflects a data-availability gap in the source; falling back to
// the delivery figures would reintroduce the duplication the dedicated
// export removes.
func Reconcile(delivery []DeliveryRecord, reach []ReachRecord, dedicated PlatformSet) []ReconciledPlatformRecord {
	type accumulator struct {
		rec ReconciledPlatformRecord
	}
	accs := make(map[string]*accumulator)

	get := func(platform string) *accumulator {
		key := strings.ToLower(strings.TrimSpace(platform))
		acc, ok := accs[key]
		if !ok {
			acc = &accumulator{rec: ReconciledPlatformRecord{
				Platform:        platform,
				DedicatedSource: dedicated.Contains(platform),
			}}
			accs[key] = acc
		}
		return acc
	}

	for _, d := range delivery {
		acc := get(d.Platform)
		acc.rec.Cost += d.Cost
		acc.rec.Clicks += d.Clicks
		if !acc.rec.DedicatedSource {
			acc.rec.Impressions += d.Impressions
			acc.rec.Reach += d.Reach
		}
	}

	for _, r := range reach {
		if !dedicated.Contains(r.Platform) {
			// Reach rows for platforms outside the dedicated set are
			// ignored; their figures come from the delivery export.
			continue
		}
		acc := get(r.Platform)
		acc.rec.Impressions += r.Impressions
		acc.rec.Reach += r.Reach
	}

	records := make([]ReconciledPlatformRecord, 0, len(accs))
	for _, acc := range accs {
		rec := acc.rec
		rec.Frequency = ratio(float64(rec.Impressions), float64(rec.Reach))
		rec.CPM = ratio(rec.Cost, float64(rec.Impressions)/1000)
		rec.CPC = ratio(rec.Cost, float64(rec.Clicks))
		rec.CTR = ratio(float64(rec.Clicks), float64(rec.Impressions)) * 100
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Reach != records[j].Reach {
			return records[i].Reach > records[j].Reach
		}
		return records[i].Platform < records[j].Platform
	})
	return records
}
