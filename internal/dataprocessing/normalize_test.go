package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(nil, NormalizerConfig{})
}

func TestDeliveryRecords(t *testing.T) {
	table := RawTable{
		Name:   "Consolidado Nacional",
		Header: []string{"Date", "Veículo", "Impressions", "Total spent", "Reach", "Clicks"},
		Rows: [][]string{
			{"15/03/2025", "Meta", "10.000", "R$ 1.500,00", "8.000", "200"},
		},
	}

	records := testNormalizer().DeliveryRecords(table)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "2025-03-15", rec.Date)
	assert.Equal(t, "Meta", rec.Platform)
	assert.Equal(t, int64(10000), rec.Impressions)
	assert.InDelta(t, 1500.0, rec.Cost, 1e-9)
	assert.Equal(t, int64(8000), rec.Reach)
	assert.Equal(t, int64(200), rec.Clicks)
	assert.InDelta(t, 1.25, rec.Frequency, 1e-9)
	assert.InDelta(t, 150.0, rec.CPM, 1e-9)
}

func TestDeliveryRecordsInclusionPredicate(t *testing.T) {
	table := RawTable{
		Name:   "Consolidado Nacional",
		Header: []string{"Date", "Veículo", "Impressions", "Total spent"},
		Rows: [][]string{
			{"15/03/2025", "Meta", "1.000", "R$ 100,00"},
			{"", "Meta", "1.000", "R$ 100,00"},          // no date
			{"16/03/2025", "Meta", "0", "R$ 100,00"},    // zero impressions
			{"not a date", "Meta", "1.000", "R$ 50,00"}, // unresolvable date
		},
	}
	records := testNormalizer().DeliveryRecords(table)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-03-15", records[0].Date)
}

func TestDeliveryRecordsDefaults(t *testing.T) {
	table := RawTable{
		Name:   "Consolidado Nacional",
		Header: []string{"Date", "Veículo", "Campaign name", "Impressions"},
		Rows: [][]string{
			{"15/03/2025", "", "Always On | SP | Video", "1.000"},
			{"15/03/2025", "TikTok", "Awareness | NAC | Display", "2.000"},
			{"15/03/2025", "Google", "Brand search", "3.000"},
		},
	}
	records := testNormalizer().DeliveryRecords(table)
	require.Len(t, records, 3)

	assert.Equal(t, "Outros", records[0].Platform)
	assert.Equal(t, "São Paulo", records[0].Praca)
	assert.Equal(t, "Nacional", records[1].Praca)
	assert.Equal(t, "Nacional", records[2].Praca)
}

func TestDeliveryRecordsPracaColumnWins(t *testing.T) {
	table := RawTable{
		Name:   "Consolidado SP",
		Header: []string{"Date", "Veículo", "Campaign name", "Impressions", "Praça"},
		Rows: [][]string{
			{"15/03/2025", "Meta", "Always On | RJ | Video", "1.000", "São Paulo"},
		},
	}
	records := testNormalizer().DeliveryRecords(table)
	require.Len(t, records, 1)
	assert.Equal(t, "São Paulo", records[0].Praca)
}

func TestDeliveryRecordsVideoMetrics(t *testing.T) {
	table := RawTable{
		Name: "Consolidado Nacional",
		Header: []string{
			"Date", "Veículo", "Impressions", "Total spent",
			"Video views ", "Video views at 25%", "Video views at 50%",
			"Video views at 75%", "Video completions ",
		},
		Rows: [][]string{
			{"15/03/2025", "YouTube", "10.000", "R$ 500,00", "4.000", "3.000", "2.500", "2.200", "2.000"},
		},
	}
	records := testNormalizer().DeliveryRecords(table)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, int64(4000), rec.VideoViews)
	assert.Equal(t, int64(3000), rec.VideoViews25)
	assert.Equal(t, int64(2000), rec.VideoCompletions)
	assert.InDelta(t, 0.125, rec.CPV, 1e-9)
	assert.InDelta(t, 0.25, rec.CPVC, 1e-9)
	assert.InDelta(t, 20.0, rec.VTR, 1e-9)
}

func TestReachRecords(t *testing.T) {
	table := RawTable{
		Name:   "Alcance TikTok",
		Header: []string{"Advertiser name", "Impressions", "Reach", "Frequency", "Praça"},
		Rows: [][]string{
			{"Acme", "5.000", "4.000", "1,25", "São Paulo"},
			{"Acme", "3.000", "2.000", "1,5", ""},
			{"", "", "", "", ""}, // fully empty row
		},
	}
	records := testNormalizer().ReachRecords(table, "TikTok")
	require.Len(t, records, 2)

	assert.Equal(t, "TikTok", records[0].Platform)
	assert.Equal(t, int64(4000), records[0].Reach)
	assert.Equal(t, "São Paulo", records[0].Praca)
	assert.Equal(t, "Nacional", records[1].Praca)
}

func TestBenchmarkRecords(t *testing.T) {
	table := RawTable{
		Name:   "BENCHMARK",
		Header: []string{"", "", "", "", "", "", "", "", ""},
		Rows: [][]string{
			{"Meta", "Video", "12,50", "0,80", "", "", "", "1,2", "65,0"},
			{"", "Video", "10,00", "0,50", "", "", "", "1,0", "60,0"}, // no vehicle
		},
	}
	records := testNormalizer().BenchmarkRecords(table)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "META", rec.Vehicle)
	assert.Equal(t, "VIDEO", rec.MediaType)
	assert.Equal(t, "META_VIDEO", rec.Key())
	assert.InDelta(t, 12.5, rec.CPM, 1e-9)
	assert.InDelta(t, 1.2, rec.CTR, 1e-9)
	assert.InDelta(t, 65.0, rec.VTR, 1e-9)
}

func TestEventRecords(t *testing.T) {
	table := RawTable{
		Name:   "GA4",
		Header: []string{"Date", "Session source", "Sessions", "Origem"},
		Rows: [][]string{
			{"15/03/2025", "meta", "1.200", "Paid Social"},
			{"15/03/2025", "", "300", "Paid Social"},
			{"16/03/2025", "google", "0", "Paid Search"}, // zero sessions
		},
	}
	records := testNormalizer().EventRecords(table)
	require.Len(t, records, 2)

	assert.Equal(t, "meta", records[0].Source)
	assert.Equal(t, int64(1200), records[0].Sessions)
	assert.Equal(t, "Outros", records[1].Source)
}

func TestEventRecordsWithoutPracaColumnPassPracaFilter(t *testing.T) {
	table := RawTable{
		Name:   "GA4",
		Header: []string{"Date", "Session source", "Sessions"},
		Rows: [][]string{
			{"15/03/2025", "google", "120"},
		},
	}
	records := testNormalizer().EventRecords(table)
	require.Len(t, records, 1)

	filtered := Apply(records, FilterState{Pracas: []string{"São Paulo"}})
	assert.Len(t, filtered, 1)

	filtered = Apply(records, FilterState{Origins: []string{"Paid Social"}})
	assert.Len(t, filtered, 1)
}

func TestPlanRecords(t *testing.T) {
	table := RawTable{
		Name:   "Plano",
		Header: []string{"", "", "", "", "", ""},
		Rows: [][]string{
			{"São Paulo", "Meta", "2025-03", "R$ 8.000,00", "R$ 10.000,00", "CPM"},
			{"São Paulo", "", "2025-03", "R$ 1,00", "R$ 1,00", "CPM"}, // no vehicle
			{"São Paulo", "Meta", "", "R$ 1,00", "R$ 1,00", "CPM"},    // no month
		},
	}
	records := testNormalizer().PlanRecords(table)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Meta", rec.Vehicle)
	assert.InDelta(t, 8000.0, rec.Invested, 1e-9)
	assert.InDelta(t, 10000.0, rec.Planned, 1e-9)
}

func TestNormalizerEmptyTable(t *testing.T) {
	n := testNormalizer()
	assert.Nil(t, n.DeliveryRecords(RawTable{}))
	assert.Nil(t, n.ReachRecords(RawTable{}, "TikTok"))
	assert.Nil(t, n.BenchmarkRecords(RawTable{}))
	assert.Nil(t, n.EventRecords(RawTable{}))
	assert.Nil(t, n.PlanRecords(RawTable{}))
}
