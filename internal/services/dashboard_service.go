package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediadash/internal/config"
	"mediadash/internal/dataprocessing"
	"mediadash/internal/sheets"
)

// TableProvider fetches one consistent snapshot of every source table.
// Implemented by sheets.Client (remote spreadsheet) and sheets.Workbook
// (local file).
type TableProvider interface {
	FetchAll(ctx context.Context) (sheets.TableSet, error)
}

// Snapshot holds the normalized record collections of one refresh. A
// snapshot is immutable once published; filtering and aggregation always
// allocate fresh output.
type Snapshot struct {
	ID         uuid.UUID
	FetchedAt  time.Time
	Delivery   []dataprocessing.DeliveryRecord
	Reach      []dataprocessing.ReachRecord
	Benchmarks []dataprocessing.BenchmarkRecord
	Events     []dataprocessing.EventRecord
	Plan       []dataprocessing.PlanRecord
}

// DashboardService owns the current snapshot and computes the report views
// from it. All view computation is pure over the snapshot; the only mutable
// state is the snapshot pointer swap on refresh.
type DashboardService struct {
	provider           TableProvider
	normalizer         *dataprocessing.Normalizer
	dedicated          dataprocessing.PlatformSet
	plannedImpressions int64
	plannedClicks      int64
	logger             *slog.Logger

	mu         sync.RWMutex
	snapshot   *Snapshot
	refreshing bool
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(provider TableProvider, cfg config.ReportConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	normalizer := dataprocessing.NewNormalizer(logger, dataprocessing.NormalizerConfig{
		DefaultPraca:    cfg.DefaultPraca,
		DefaultPlatform: cfg.DefaultPlatform,
	})
	return &DashboardService{
		provider:           provider,
		normalizer:         normalizer,
		dedicated:          dataprocessing.NewPlatformSet(cfg.DedicatedReachPlatforms...),
		plannedImpressions: cfg.PlannedImpressions,
		plannedClicks:      cfg.PlannedClicks,
		logger:             logger.With(slog.String("component", "dashboard_service")),
	}
}

// Refresh fetches all source tables and replaces the current snapshot.
// Only one refresh runs at a time; concurrent callers get
// ErrRefreshInProgress instead of queueing.
func (s *DashboardService) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return nil, ErrRefreshInProgress
	}
	s.refreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	start := time.Now()
	set, err := s.provider.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source tables: %w", err)
	}

	snapshot := s.buildSnapshot(set)

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "snapshot refreshed",
		slog.String("snapshot_id", snapshot.ID.String()),
		slog.Int("delivery_records", len(snapshot.Delivery)),
		slog.Int("reach_records", len(snapshot.Reach)),
		slog.Int("event_records", len(snapshot.Events)),
		slog.Duration("duration", time.Since(start)))
	return snapshot, nil
}

// buildSnapshot normalizes every table of the set into typed records.
func (s *DashboardService) buildSnapshot(set sheets.TableSet) *Snapshot {
	snapshot := &Snapshot{
		ID:         uuid.New(),
		FetchedAt:  time.Now().UTC(),
		Delivery:   s.normalizer.DeliveryRecords(set.Delivery),
		Benchmarks: s.normalizer.BenchmarkRecords(set.Benchmark),
		Events:     s.normalizer.EventRecords(set.Events),
		Plan:       s.normalizer.PlanRecords(set.Plan),
	}

	// Deterministic reach order regardless of map iteration.
	platforms := make([]string, 0, len(set.Reach))
	for platform := range set.Reach {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	for _, platform := range platforms {
		snapshot.Reach = append(snapshot.Reach, s.normalizer.ReachRecords(set.Reach[platform], platform)...)
	}

	return snapshot
}

// Current returns the active snapshot, or ErrNoSnapshot before the first
// refresh.
func (s *DashboardService) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return s.snapshot, nil
}

// SetSnapshot installs a pre-built snapshot. Used by tests and by offline
// tooling that assembles records without a provider.
func (s *DashboardService) SetSnapshot(snapshot *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
}
