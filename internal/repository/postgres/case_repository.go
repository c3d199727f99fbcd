package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/repository"
)

const defaultCasePageSize = 50

type caseRepository struct {
	db *DB
}

// NewCaseRepository creates a postgres-backed case repository.
func NewCaseRepository(db *DB) repository.CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) ReplaceCaseReports(ctx context.Context, reports []domain.CaseReport) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM case_reports`); err != nil {
			return fmt.Errorf("failed to clear case reports: %w", err)
		}
		if len(reports) == 0 {
			return nil
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO case_reports (
				case_no, source, quantity, status, last_location, last_class,
				first_event_at, last_warehouse_at, delivered_at, elapsed_days, lead_time_days
			) VALUES (
				:case_no, :source, :quantity, :status, :last_location, :last_class,
				:first_event_at, :last_warehouse_at, :delivered_at, :elapsed_days, :lead_time_days
			)`, reports)
		if err != nil {
			return fmt.Errorf("failed to insert case reports: %w", err)
		}
		log.Debug().Int("rows", len(reports)).Msg("Replaced case reports")
		return nil
	})
}

func (r *caseRepository) ReplaceDeadStock(ctx context.Context, records []domain.DeadStockRecord) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dead_stock`); err != nil {
			return fmt.Errorf("failed to clear dead stock: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO dead_stock (case_no, warehouse, last_inbound_at, elapsed_days, tier)
			VALUES (:case_no, :warehouse, :last_inbound_at, :elapsed_days, :tier)`, records)
		if err != nil {
			return fmt.Errorf("failed to insert dead stock: %w", err)
		}
		return nil
	})
}

func (r *caseRepository) ListCases(ctx context.Context, filter domain.CaseFilter) ([]domain.CaseReport, int, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		clauses = append(clauses, fmt.Sprintf("source = $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM case_reports %s`, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count case reports: %w", err)
	}

	// PageSize < 0 disables pagination.
	limitClause := ""
	if filter.PageSize >= 0 {
		pageSize := filter.PageSize
		if pageSize == 0 {
			pageSize = defaultCasePageSize
		}
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, pageSize, (page-1)*pageSize)
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	query := fmt.Sprintf(`
		SELECT case_no, source, quantity, status, last_location, last_class,
			first_event_at, last_warehouse_at, delivered_at, elapsed_days, lead_time_days
		FROM case_reports
		%s
		ORDER BY source ASC, case_no ASC
		%s`, where, limitClause)

	reports := []domain.CaseReport{}
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to query case reports: %w", err)
	}
	return reports, total, nil
}

func (r *caseRepository) GetCase(ctx context.Context, caseNo string) (*domain.CaseReport, error) {
	var report domain.CaseReport
	err := r.db.GetContext(ctx, &report, `
		SELECT case_no, source, quantity, status, last_location, last_class,
			first_event_at, last_warehouse_at, delivered_at, elapsed_days, lead_time_days
		FROM case_reports
		WHERE case_no = $1
		ORDER BY source ASC
		LIMIT 1`, caseNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query case %s: %w", caseNo, err)
	}
	return &report, nil
}

func (r *caseRepository) GetDeadStock(ctx context.Context) ([]domain.DeadStockRecord, error) {
	records := []domain.DeadStockRecord{}
	err := r.db.SelectContext(ctx, &records, `
		SELECT case_no, warehouse, last_inbound_at, elapsed_days, tier
		FROM dead_stock
		ORDER BY elapsed_days DESC, case_no ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dead stock: %w", err)
	}
	return records, nil
}

func (r *caseRepository) GetStatusCounts(ctx context.Context) ([]domain.StatusCount, error) {
	counts := []domain.StatusCount{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT status, COUNT(*) AS count
		FROM case_reports
		GROUP BY status
		ORDER BY status ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	return counts, nil
}
