package repository

import (
	"context"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

// LedgerRepository persists and serves the monthly movement ledgers.
type LedgerRepository interface {
	ReplaceWarehouseLedgers(ctx context.Context, rows []domain.WarehouseLedgerRow) error
	ReplaceSiteLedgers(ctx context.Context, rows []domain.SiteLedgerRow) error
	GetWarehouseLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.WarehouseLedgerRow, error)
	GetSiteLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.SiteLedgerRow, error)
	GetWarehouseSummaries(ctx context.Context) ([]domain.WarehouseSummary, error)
	GetSiteSummaries(ctx context.Context) ([]domain.SiteSummary, error)
}

// CaseRepository persists and serves per-case reports and dead stock.
type CaseRepository interface {
	ReplaceCaseReports(ctx context.Context, reports []domain.CaseReport) error
	ReplaceDeadStock(ctx context.Context, records []domain.DeadStockRecord) error
	ListCases(ctx context.Context, filter domain.CaseFilter) ([]domain.CaseReport, int, error)
	GetCase(ctx context.Context, caseNo string) (*domain.CaseReport, error)
	GetDeadStock(ctx context.Context) ([]domain.DeadStockRecord, error)
	GetStatusCounts(ctx context.Context) ([]domain.StatusCount, error)
}
