package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
)

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteWarehouseLedgers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "warehouse_ledgers.csv")

	err := WriteWarehouseLedgers(path, []domain.WarehouseLedgerRow{
		{Warehouse: "WH1", Month: "2023-01", Inbound: 2, Outbound: 1, Stock: 1},
	})
	require.NoError(t, err)

	records := readBack(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"warehouse", "month", "inbound", "outbound", "stock"}, records[0])
	assert.Equal(t, []string{"WH1", "2023-01", "2", "1", "1"}, records[1])
}

func TestWriteCaseReports_OptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case_reports.csv")

	delivered := time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	lead := 116
	err := WriteCaseReports(path, []domain.CaseReport{
		{
			CaseNo: "C1", Source: "snapshot", Quantity: 1,
			Status: domain.StatusCompleted, LastLocation: "S1", LastClass: "site",
			DeliveredAt: &delivered, LeadTimeDays: &lead,
		},
		{CaseNo: "C3", Source: "snapshot", Quantity: 1, Status: domain.StatusNotReceived},
	})
	require.NoError(t, err)

	records := readBack(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, "2023-05-01", records[1][8])
	assert.Equal(t, "116", records[1][10])

	// Absent timestamps and day counts stay empty, not zero.
	assert.Equal(t, "", records[2][8])
	assert.Equal(t, "", records[2][10])
}
