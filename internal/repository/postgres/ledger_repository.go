package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/repository"
)

type ledgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a postgres-backed ledger repository.
func NewLedgerRepository(db *DB) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

// ReplaceWarehouseLedgers swaps the warehouse ledger table for the rows of a
// fresh analysis run. Replace-not-merge: the engine output is the complete
// truth for its reporting range.
func (r *ledgerRepository) ReplaceWarehouseLedgers(ctx context.Context, rows []domain.WarehouseLedgerRow) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM warehouse_ledgers`); err != nil {
			return fmt.Errorf("failed to clear warehouse ledgers: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO warehouse_ledgers (warehouse, month, inbound, outbound, stock)
			VALUES (:warehouse, :month, :inbound, :outbound, :stock)`, rows)
		if err != nil {
			return fmt.Errorf("failed to insert warehouse ledgers: %w", err)
		}
		log.Debug().Int("rows", len(rows)).Msg("Replaced warehouse ledgers")
		return nil
	})
}

// ReplaceSiteLedgers swaps the site ledger table for a fresh run's rows.
func (r *ledgerRepository) ReplaceSiteLedgers(ctx context.Context, rows []domain.SiteLedgerRow) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM site_ledgers`); err != nil {
			return fmt.Errorf("failed to clear site ledgers: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO site_ledgers (site, month, inbound, cumulative)
			VALUES (:site, :month, :inbound, :cumulative)`, rows)
		if err != nil {
			return fmt.Errorf("failed to insert site ledgers: %w", err)
		}
		log.Debug().Int("rows", len(rows)).Msg("Replaced site ledgers")
		return nil
	})
}

func ledgerFilterClause(filter domain.LedgerFilter, locationColumn string) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if len(filter.Locations) > 0 {
		placeholders := make([]string, len(filter.Locations))
		for i, loc := range filter.Locations {
			args = append(args, loc)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", locationColumn, strings.Join(placeholders, ", ")))
	}
	if filter.FromMonth != "" {
		args = append(args, filter.FromMonth)
		clauses = append(clauses, fmt.Sprintf("month >= $%d", len(args)))
	}
	if filter.ToMonth != "" {
		args = append(args, filter.ToMonth)
		clauses = append(clauses, fmt.Sprintf("month <= $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *ledgerRepository) GetWarehouseLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.WarehouseLedgerRow, error) {
	clause, args := ledgerFilterClause(filter, "warehouse")
	query := fmt.Sprintf(`
		SELECT warehouse, month, inbound, outbound, stock
		FROM warehouse_ledgers
		%s
		ORDER BY warehouse ASC, month ASC`, clause)

	rows := []domain.WarehouseLedgerRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query warehouse ledgers: %w", err)
	}
	return rows, nil
}

func (r *ledgerRepository) GetSiteLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.SiteLedgerRow, error) {
	clause, args := ledgerFilterClause(filter, "site")
	query := fmt.Sprintf(`
		SELECT site, month, inbound, cumulative
		FROM site_ledgers
		%s
		ORDER BY site ASC, month ASC`, clause)

	rows := []domain.SiteLedgerRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query site ledgers: %w", err)
	}
	return rows, nil
}

// GetWarehouseSummaries reduces each warehouse ledger to totals plus the
// latest running stock.
func (r *ledgerRepository) GetWarehouseSummaries(ctx context.Context) ([]domain.WarehouseSummary, error) {
	query := `
		WITH latest AS (
			SELECT warehouse, stock,
				ROW_NUMBER() OVER (PARTITION BY warehouse ORDER BY month DESC) AS rn
			FROM warehouse_ledgers
		)
		SELECT
			w.warehouse,
			SUM(w.inbound) AS total_inbound,
			SUM(w.outbound) AS total_outbound,
			MAX(l.stock) AS current_stock
		FROM warehouse_ledgers w
		JOIN latest l ON l.warehouse = w.warehouse AND l.rn = 1
		GROUP BY w.warehouse
		ORDER BY w.warehouse ASC`

	summaries := []domain.WarehouseSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to query warehouse summaries: %w", err)
	}
	return summaries, nil
}

func (r *ledgerRepository) GetSiteSummaries(ctx context.Context) ([]domain.SiteSummary, error) {
	query := `
		SELECT site, MAX(cumulative) AS cumulative_inbound
		FROM site_ledgers
		GROUP BY site
		ORDER BY site ASC`

	summaries := []domain.SiteSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query); err != nil {
		return nil, fmt.Errorf("failed to query site summaries: %w", err)
	}
	return summaries, nil
}
