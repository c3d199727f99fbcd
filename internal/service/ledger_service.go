package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/cache"
	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/engine"
	"github.com/logistiq/caseledger/backend-go/internal/repository"
)

// LedgerService serves the persisted ledgers, case reports and the network
// dashboard.
type LedgerService struct {
	ledgers   repository.LedgerRepository
	cases     repository.CaseRepository
	dashCache cache.DashboardCache
}

func NewLedgerService(
	ledgers repository.LedgerRepository,
	cases repository.CaseRepository,
	dashCache cache.DashboardCache,
) *LedgerService {
	if dashCache == nil {
		dashCache = cache.NewNoopDashboardCache()
	}
	return &LedgerService{ledgers: ledgers, cases: cases, dashCache: dashCache}
}

func (s *LedgerService) GetWarehouseLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.WarehouseLedgerRow, error) {
	return s.ledgers.GetWarehouseLedger(ctx, filter)
}

func (s *LedgerService) GetSiteLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.SiteLedgerRow, error) {
	return s.ledgers.GetSiteLedger(ctx, filter)
}

func (s *LedgerService) ListCases(ctx context.Context, filter domain.CaseFilter) ([]domain.CaseReport, int, error) {
	return s.cases.ListCases(ctx, filter)
}

func (s *LedgerService) GetCase(ctx context.Context, caseNo string) (*domain.CaseReport, error) {
	return s.cases.GetCase(ctx, caseNo)
}

func (s *LedgerService) GetDeadStock(ctx context.Context) ([]domain.DeadStockRecord, error) {
	return s.cases.GetDeadStock(ctx)
}

// GetDashboard assembles the network dashboard, serving from cache when a
// fresh copy exists.
func (s *LedgerService) GetDashboard(ctx context.Context) (*domain.NetworkDashboard, error) {
	if dashboard, ok, err := s.dashCache.GetDashboard(ctx); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("ledger: cache get dashboard failed")
	}

	warehouses, err := s.ledgers.GetWarehouseSummaries(ctx)
	if err != nil {
		return nil, err
	}
	sites, err := s.ledgers.GetSiteSummaries(ctx)
	if err != nil {
		return nil, err
	}
	statusCounts, err := s.cases.GetStatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	deadStock, err := s.cases.GetDeadStock(ctx)
	if err != nil {
		return nil, err
	}

	completed, _, err := s.cases.ListCases(ctx, domain.CaseFilter{Status: string(domain.StatusCompleted), PageSize: -1})
	if err != nil {
		return nil, err
	}

	dashboard := &domain.NetworkDashboard{
		Warehouses:     warehouses,
		Sites:          sites,
		StatusCounts:   statusCounts,
		LeadTime:       engine.ComputeLeadTimeStats(completed),
		DeadStockCount: len(deadStock),
	}

	if err := s.dashCache.SetDashboard(ctx, dashboard); err != nil {
		log.Warn().Err(err).Msg("ledger: cache set dashboard failed")
	}

	return dashboard, nil
}
