package dataprocessing

import (
	"log/slog"
	"sort"
	"strings"
)

// Field names shared by the source schemas.
const (
	fieldDate        = "date"
	fieldPlatform    = "platform"
	fieldCampaign    = "campaign"
	fieldImpressions = "impressions"
	fieldCost        = "cost"
	fieldReach       = "reach"
	fieldClicks      = "clicks"
	fieldViews       = "video_views"
	fieldViews25     = "video_views_25"
	fieldViews50     = "video_views_50"
	fieldViews75     = "video_views_75"
	fieldCompletions = "video_completions"
	fieldBuyType     = "buy_type"
	fieldFormat      = "format"
	fieldPraca       = "praca"
	fieldAdvertiser  = "advertiser"
	fieldFrequency   = "frequency"
	fieldVehicle     = "vehicle"
	fieldMediaType   = "media_type"
	fieldCPM         = "cpm"
	fieldCPC         = "cpc"
	fieldCTR         = "ctr"
	fieldVTR         = "vtr"
	fieldSource      = "source"
	fieldSessions    = "sessions"
	fieldOrigin      = "origin"
	fieldMonth       = "month"
	fieldInvested    = "invested"
	fieldPlanned     = "planned"
)

// Source schemas. Synonym lists are effectively constant configuration:
// they encode every header variant observed across tabs of the live sheet
// (including pt-BR names and the trailing-space headers the delivery tab
// ships with, which trimming makes exact matches). Legacy tabs with unnamed
// columns declare their fixed layout through Fallback.

var deliverySchema = Schema{
	{Field: fieldDate, Synonyms: []string{"Date", "Data"}, Fallback: ColumnNotFound},
	{Field: fieldPlatform, Synonyms: []string{"Veículo", "Veiculo", "Platform", "Plataforma"}, Fallback: ColumnNotFound},
	{Field: fieldCampaign, Synonyms: []string{"Campaign name", "Campanha"}, Fallback: ColumnNotFound},
	{Field: fieldImpressions, Synonyms: []string{"Impressions", "Impressões", "Impressoes"}, Fallback: ColumnNotFound},
	{Field: fieldCost, Synonyms: []string{"Total spent", "Custo", "Cost"}, Fallback: ColumnNotFound},
	{Field: fieldReach, Synonyms: []string{"Reach", "Alcance"}, Fallback: ColumnNotFound},
	{Field: fieldClicks, Synonyms: []string{"Clicks", "Link clicks", "Cliques"}, Fallback: ColumnNotFound},
	{Field: fieldViews, Synonyms: []string{"Video views"}, Fallback: ColumnNotFound},
	{Field: fieldViews25, Synonyms: []string{"Video views at 25%"}, Fallback: ColumnNotFound},
	{Field: fieldViews50, Synonyms: []string{"Video views at 50%"}, Fallback: ColumnNotFound},
	{Field: fieldViews75, Synonyms: []string{"Video views at 75%"}, Fallback: ColumnNotFound},
	{Field: fieldCompletions, Synonyms: []string{"Video completions"}, Fallback: ColumnNotFound},
	{Field: fieldBuyType, Synonyms: []string{"Tipo de Compra"}, Fallback: ColumnNotFound},
	{Field: fieldFormat, Synonyms: []string{"video_estatico_audio", "Formato"}, Fallback: ColumnNotFound},
	{Field: fieldPraca, Synonyms: []string{"Praça", "Praca"}, Fallback: ColumnNotFound},
}

// reachSchema covers the dedicated-reach tabs (range A:E, fixed layout,
// headers present on some tabs only).
var reachSchema = Schema{
	{Field: fieldAdvertiser, Synonyms: []string{"Advertiser name", "Anunciante"}, Fallback: 0},
	{Field: fieldImpressions, Synonyms: []string{"Impressions", "Impressões"}, Fallback: 1},
	{Field: fieldReach, Synonyms: []string{"Reach", "Alcance"}, Fallback: 2},
	{Field: fieldFrequency, Synonyms: []string{"Frequency", "Frequência", "Frequencia"}, Fallback: 3},
	{Field: fieldPraca, Synonyms: []string{"Praça", "Praca"}, Fallback: 4},
}

var benchmarkSchema = Schema{
	{Field: fieldVehicle, Synonyms: []string{"Veículo", "Veiculo", "Vehicle"}, Fallback: 0},
	{Field: fieldMediaType, Synonyms: []string{"Tipo de Mídia", "Tipo Mídia", "Media type"}, Fallback: 1},
	{Field: fieldCPM, Synonyms: []string{"CPM"}, Fallback: 2},
	{Field: fieldCPC, Synonyms: []string{"CPC"}, Fallback: 3},
	{Field: fieldCTR, Synonyms: []string{"CTR"}, Fallback: 7},
	{Field: fieldVTR, Synonyms: []string{"VTR 100%", "VTR", "Completion rate"}, Fallback: 8},
}

var eventSchema = Schema{
	{Field: fieldDate, Synonyms: []string{"Date", "Data"}, Fallback: ColumnNotFound},
	{Field: fieldSource, Synonyms: []string{"Session source", "Source"}, Fallback: ColumnNotFound},
	{Field: fieldSessions, Synonyms: []string{"Sessions", "Sessões", "Sessoes"}, Fallback: ColumnNotFound},
	{Field: fieldOrigin, Synonyms: []string{"Origem", "Origin"}, Fallback: ColumnNotFound},
	{Field: fieldPraca, Synonyms: []string{"Praça", "Praca"}, Fallback: ColumnNotFound},
}

// planSchema covers the media-plan tab, another fixed-layout legacy tab.
var planSchema = Schema{
	{Field: fieldPraca, Synonyms: []string{"Praça", "Praca"}, Fallback: 0},
	{Field: fieldVehicle, Synonyms: []string{"Veículo", "Veiculo"}, Fallback: 1},
	{Field: fieldMonth, Synonyms: []string{"Mês", "Mes", "Month"}, Fallback: 2},
	{Field: fieldInvested, Synonyms: []string{"Custo Investido"}, Fallback: 3},
	{Field: fieldPlanned, Synonyms: []string{"Custo Previsto"}, Fallback: 4},
	{Field: fieldBuyType, Synonyms: []string{"Tipo de Compra"}, Fallback: 5},
}

// NormalizerConfig holds the table-independent normalization settings.
type NormalizerConfig struct {
	// DefaultPraca labels rows whose praça is absent from the table and
	// not recoverable from the campaign name.
	DefaultPraca string
	// PracaTokens maps campaign-name tokens (e.g. "SP") to praça labels;
	// used when the delivery tab lacks a praça column.
	PracaTokens map[string]string
	// DefaultPlatform labels delivery rows with an empty platform cell.
	DefaultPlatform string
}

// DefaultNormalizerConfig mirrors the labels used by the live dashboard.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		DefaultPraca:    "Nacional",
		DefaultPlatform: "Outros",
		PracaTokens: map[string]string{
			"SP":  "São Paulo",
			"RJ":  "Rio de Janeiro",
			"MG":  "Minas Gerais",
			"RS":  "Rio Grande do Sul",
			"NAC": "Nacional",
		},
	}
}

// Normalizer turns RawTables into typed record collections. It is safe for
// reuse across refreshes; all state is configuration.
type Normalizer struct {
	logger *slog.Logger
	cfg    NormalizerConfig
}

// NewNormalizer creates a normalizer. A nil logger falls back to
// slog.Default; zero-valued config fields take the dashboard defaults.
func NewNormalizer(logger *slog.Logger, cfg NormalizerConfig) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultNormalizerConfig()
	if cfg.DefaultPraca == "" {
		cfg.DefaultPraca = def.DefaultPraca
	}
	if cfg.DefaultPlatform == "" {
		cfg.DefaultPlatform = def.DefaultPlatform
	}
	if cfg.PracaTokens == nil {
		cfg.PracaTokens = def.PracaTokens
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
		cfg:    cfg,
	}
}

// DeliveryRecords normalizes the consolidated delivery export. Rows without
// a resolvable date or with zero impressions are dropped; impressions is
// the defining measure of this schema.
func (n *Normalizer) DeliveryRecords(table RawTable) []DeliveryRecord {
	if table.Empty() {
		return nil
	}
	cols := resolveSchema(table, deliverySchema, n.logger)

	records := make([]DeliveryRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := DeliveryRecord{
			Date:             cols.date(row, fieldDate),
			Platform:         cols.cell(row, fieldPlatform),
			CampaignName:     cols.cell(row, fieldCampaign),
			BuyType:          cols.cell(row, fieldBuyType),
			Format:           cols.cell(row, fieldFormat),
			Impressions:      cols.integer(row, fieldImpressions),
			Cost:             cols.number(row, fieldCost),
			Reach:            cols.integer(row, fieldReach),
			Clicks:           cols.integer(row, fieldClicks),
			VideoViews:       cols.integer(row, fieldViews),
			VideoViews25:     cols.integer(row, fieldViews25),
			VideoViews50:     cols.integer(row, fieldViews50),
			VideoViews75:     cols.integer(row, fieldViews75),
			VideoCompletions: cols.integer(row, fieldCompletions),
		}
		if rec.Platform == "" {
			rec.Platform = n.cfg.DefaultPlatform
		}
		rec.Praca = n.resolvePraca(cols.cell(row, fieldPraca), rec.CampaignName)

		rec.Frequency = ratio(float64(rec.Impressions), float64(rec.Reach))
		rec.CPM = ratio(rec.Cost, float64(rec.Impressions)/1000)
		rec.CPV = ratio(rec.Cost, float64(rec.VideoViews))
		rec.CPVC = ratio(rec.Cost, float64(rec.VideoCompletions))
		rec.VTR = ratio(float64(rec.VideoCompletions), float64(rec.Impressions)) * 100

		if rec.Date == "" || rec.Impressions == 0 {
			continue
		}
		records = append(records, rec)
	}

	n.logger.Debug("delivery table normalized",
		slog.String("table", table.Name),
		slog.Int("rows", len(table.Rows)),
		slog.Int("records", len(records)))
	return records
}

// ReachRecords normalizes one dedicated-reach tab. The platform is supplied
// by the caller because the legacy tabs carry no platform column. Rows with
// neither an advertiser name nor any impressions/reach are dropped.
func (n *Normalizer) ReachRecords(table RawTable, platform string) []ReachRecord {
	if table.Empty() {
		return nil
	}
	cols := resolveSchema(table, reachSchema, n.logger)

	records := make([]ReachRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := ReachRecord{
			Platform:    platform,
			Advertiser:  cols.cell(row, fieldAdvertiser),
			Impressions: cols.integer(row, fieldImpressions),
			Reach:       cols.integer(row, fieldReach),
			Frequency:   cols.number(row, fieldFrequency),
			Praca:       cols.cell(row, fieldPraca),
		}
		if rec.Praca == "" {
			rec.Praca = n.cfg.DefaultPraca
		}
		if rec.Advertiser == "" && rec.Impressions == 0 && rec.Reach == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// BenchmarkRecords normalizes the benchmark table. Vehicle and media type
// are upper-cased to form stable lookup keys; rows lacking either are
// dropped.
func (n *Normalizer) BenchmarkRecords(table RawTable) []BenchmarkRecord {
	if table.Empty() {
		return nil
	}
	cols := resolveSchema(table, benchmarkSchema, n.logger)

	records := make([]BenchmarkRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := BenchmarkRecord{
			Vehicle:   strings.ToUpper(cols.cell(row, fieldVehicle)),
			MediaType: strings.ToUpper(cols.cell(row, fieldMediaType)),
			CPM:       cols.number(row, fieldCPM),
			CPC:       cols.number(row, fieldCPC),
			CTR:       cols.number(row, fieldCTR),
			VTR:       cols.number(row, fieldVTR),
		}
		if rec.Vehicle == "" || rec.MediaType == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// EventRecords normalizes a GA4 session export tab. Rows with zero sessions
// are dropped; sessions is the defining measure of this schema.
func (n *Normalizer) EventRecords(table RawTable) []EventRecord {
	if table.Empty() {
		return nil
	}
	cols := resolveSchema(table, eventSchema, n.logger)

	records := make([]EventRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := EventRecord{
			Date:     cols.date(row, fieldDate),
			Source:   cols.cell(row, fieldSource),
			Sessions: cols.integer(row, fieldSessions),
			Origin:   cols.cell(row, fieldOrigin),
			Praca:    cols.cell(row, fieldPraca),
		}
		if rec.Source == "" {
			rec.Source = n.cfg.DefaultPlatform
		}
		if rec.Sessions == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// PlanRecords normalizes the media-plan tab. Rows without a vehicle or a
// month are dropped; spend figures parse as locale currency.
func (n *Normalizer) PlanRecords(table RawTable) []PlanRecord {
	if table.Empty() {
		return nil
	}
	cols := resolveSchema(table, planSchema, n.logger)

	records := make([]PlanRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := PlanRecord{
			Praca:    cols.cell(row, fieldPraca),
			Vehicle:  cols.cell(row, fieldVehicle),
			Month:    cols.cell(row, fieldMonth),
			Invested: cols.number(row, fieldInvested),
			Planned:  cols.number(row, fieldPlanned),
			BuyType:  cols.cell(row, fieldBuyType),
		}
		if rec.Vehicle == "" || rec.Month == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// resolvePraca picks the praça label for a delivery row: the praça column
// when present, else a campaign-name token ("| SP |"), else the default.
func (n *Normalizer) resolvePraca(cell, campaignName string) string {
	if cell != "" {
		return cell
	}
	// Sorted scan keeps the result stable when a campaign name carries
	// more than one token.
	tokens := make([]string, 0, len(n.cfg.PracaTokens))
	for token := range n.cfg.PracaTokens {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		if strings.Contains(campaignName, "| "+token+" |") {
			return n.cfg.PracaTokens[token]
		}
	}
	return n.cfg.DefaultPraca
}
