package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", path, err)
		}
	}
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("rows", len(records)).Msg("Wrote export file")
	return nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// WriteWarehouseLedgers writes per-warehouse monthly ledgers to one CSV.
func WriteWarehouseLedgers(path string, rows []domain.WarehouseLedgerRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Warehouse, r.Month,
			strconv.Itoa(r.Inbound), strconv.Itoa(r.Outbound), strconv.Itoa(r.Stock),
		})
	}
	return writeCSV(path, []string{"warehouse", "month", "inbound", "outbound", "stock"}, records)
}

// WriteSiteLedgers writes per-site monthly ledgers to one CSV.
func WriteSiteLedgers(path string, rows []domain.SiteLedgerRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Site, r.Month,
			strconv.Itoa(r.Inbound), strconv.Itoa(r.Cumulative),
		})
	}
	return writeCSV(path, []string{"site", "month", "inbound", "cumulative"}, records)
}

// WriteCaseReports writes the per-case status report to CSV.
func WriteCaseReports(path string, reports []domain.CaseReport) error {
	records := make([][]string, 0, len(reports))
	for _, r := range reports {
		records = append(records, []string{
			r.CaseNo, r.Source, strconv.Itoa(r.Quantity), string(r.Status),
			r.LastLocation, r.LastClass,
			formatTime(r.FirstEventAt), formatTime(r.LastWarehouseAt), formatTime(r.DeliveredAt),
			formatInt(r.ElapsedDays), formatInt(r.LeadTimeDays),
		})
	}
	header := []string{
		"case_no", "source", "quantity", "status",
		"last_location", "last_class",
		"first_event_at", "last_warehouse_at", "delivered_at",
		"elapsed_days", "lead_time_days",
	}
	return writeCSV(path, header, records)
}

// WriteDeadStock writes the dead stock selection to CSV.
func WriteDeadStock(path string, records []domain.DeadStockRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CaseNo, r.Warehouse,
			r.LastInboundAt.Format("2006-01-02"),
			strconv.Itoa(r.ElapsedDays), r.Tier,
		})
	}
	return writeCSV(path, []string{"case_no", "warehouse", "last_inbound_at", "elapsed_days", "tier"}, rows)
}
