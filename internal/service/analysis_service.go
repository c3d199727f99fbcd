package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/cache"
	"github.com/logistiq/caseledger/backend-go/internal/config"
	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/engine"
	"github.com/logistiq/caseledger/backend-go/internal/ingest"
	"github.com/logistiq/caseledger/backend-go/internal/repository"
)

// AnalysisService runs the reconstruction engine over ingested snapshots and
// persists the results.
type AnalysisService struct {
	cfg       config.AnalysisConfig
	ledgers   repository.LedgerRepository
	cases     repository.CaseRepository
	dashCache cache.DashboardCache
}

func NewAnalysisService(
	cfg config.AnalysisConfig,
	ledgers repository.LedgerRepository,
	cases repository.CaseRepository,
	dashCache cache.DashboardCache,
) *AnalysisService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	return &AnalysisService{cfg: cfg, ledgers: ledgers, cases: cases, dashCache: dashCache}
}

// EngineParams translates analysis config into engine parameters.
func EngineParams(cfg config.AnalysisConfig, now time.Time) (engine.Params, error) {
	params := engine.Params{
		Warehouses:    cfg.Warehouses,
		Sites:         cfg.Sites,
		Strict:        cfg.Strict,
		Now:           now,
		DeadStockDays: cfg.DeadStockDays,
		ElevatedDays:  cfg.ElevatedDays,
		UrgentDays:    cfg.UrgentDays,
		Duplicate:     engine.DuplicatePolicy(cfg.DuplicatePolicy),
		Workers:       cfg.Workers,
	}
	if cfg.RangeStart != "" {
		start, err := domain.ParseMonth(cfg.RangeStart)
		if err != nil {
			return engine.Params{}, fmt.Errorf("invalid range start: %w", err)
		}
		params.RangeStart = start
	}
	if cfg.RangeEnd != "" {
		end, err := domain.ParseMonth(cfg.RangeEnd)
		if err != nil {
			return engine.Params{}, fmt.Errorf("invalid range end: %w", err)
		}
		params.RangeEnd = end
	}
	return params, nil
}

// Analyze runs the engine over the given tables without touching storage.
func (s *AnalysisService) Analyze(ctx context.Context, tables []*ingest.Table) (*engine.Result, error) {
	params, err := EngineParams(s.cfg, time.Now())
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(params)
	if err != nil {
		return nil, err
	}

	sources := make([]engine.Source, 0, len(tables))
	for _, table := range tables {
		sources = append(sources, engine.Source{
			Name:   table.Name,
			Header: table.Header,
			Rows:   table.Rows,
		})
	}

	start := time.Now()
	result, err := eng.Run(ctx, sources...)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("sources", len(sources)).
		Int("cases", result.TotalCases).
		Int("warnings", len(result.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("Analysis run finished")

	return result, nil
}

// AnalyzeAndStore runs the engine, replaces the persisted results and
// invalidates the dashboard cache.
func (s *AnalysisService) AnalyzeAndStore(ctx context.Context, tables []*ingest.Table) (*engine.Result, error) {
	result, err := s.Analyze(ctx, tables)
	if err != nil {
		return nil, err
	}

	var warehouseRows []domain.WarehouseLedgerRow
	for _, rows := range result.WarehouseLedgers {
		warehouseRows = append(warehouseRows, rows...)
	}
	var siteRows []domain.SiteLedgerRow
	for _, rows := range result.SiteLedgers {
		siteRows = append(siteRows, rows...)
	}

	if err := s.ledgers.ReplaceWarehouseLedgers(ctx, warehouseRows); err != nil {
		return nil, fmt.Errorf("failed to store warehouse ledgers: %w", err)
	}
	if err := s.ledgers.ReplaceSiteLedgers(ctx, siteRows); err != nil {
		return nil, fmt.Errorf("failed to store site ledgers: %w", err)
	}
	if err := s.cases.ReplaceCaseReports(ctx, result.Reports); err != nil {
		return nil, fmt.Errorf("failed to store case reports: %w", err)
	}
	if err := s.cases.ReplaceDeadStock(ctx, result.DeadStock); err != nil {
		return nil, fmt.Errorf("failed to store dead stock: %w", err)
	}

	if err := s.dashCache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analysis: cache invalidation failed")
	}

	return result, nil
}
