package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/service"
)

type stubLedgerRepo struct {
	warehouseRows []domain.WarehouseLedgerRow
	lastFilter    domain.LedgerFilter
}

func (s *stubLedgerRepo) ReplaceWarehouseLedgers(context.Context, []domain.WarehouseLedgerRow) error {
	return nil
}

func (s *stubLedgerRepo) ReplaceSiteLedgers(context.Context, []domain.SiteLedgerRow) error {
	return nil
}

func (s *stubLedgerRepo) GetWarehouseLedger(_ context.Context, filter domain.LedgerFilter) ([]domain.WarehouseLedgerRow, error) {
	s.lastFilter = filter
	return s.warehouseRows, nil
}

func (s *stubLedgerRepo) GetSiteLedger(context.Context, domain.LedgerFilter) ([]domain.SiteLedgerRow, error) {
	return nil, nil
}

func (s *stubLedgerRepo) GetWarehouseSummaries(context.Context) ([]domain.WarehouseSummary, error) {
	return []domain.WarehouseSummary{{Warehouse: "WH1", TotalInbound: 3, TotalOutbound: 2, CurrentStock: 1}}, nil
}

func (s *stubLedgerRepo) GetSiteSummaries(context.Context) ([]domain.SiteSummary, error) {
	return []domain.SiteSummary{{Site: "S1", CumulativeInbound: 2}}, nil
}

type stubCaseRepo struct{}

func (s *stubCaseRepo) ReplaceCaseReports(context.Context, []domain.CaseReport) error { return nil }
func (s *stubCaseRepo) ReplaceDeadStock(context.Context, []domain.DeadStockRecord) error {
	return nil
}

func (s *stubCaseRepo) ListCases(context.Context, domain.CaseFilter) ([]domain.CaseReport, int, error) {
	return nil, 0, nil
}

func (s *stubCaseRepo) GetCase(context.Context, string) (*domain.CaseReport, error) {
	return nil, nil
}

func (s *stubCaseRepo) GetDeadStock(context.Context) ([]domain.DeadStockRecord, error) {
	return nil, nil
}

func (s *stubCaseRepo) GetStatusCounts(context.Context) ([]domain.StatusCount, error) {
	return []domain.StatusCount{{Status: "pending", Count: 1}}, nil
}

func testRouter(ledgerRepo *stubLedgerRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ledgerService := service.NewLedgerService(ledgerRepo, &stubCaseRepo{}, nil)
	return NewRouter(&Services{LedgerService: ledgerService}, nil)
}

func TestGetDashboard(t *testing.T) {
	router := testRouter(&stubLedgerRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var dashboard domain.NetworkDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	require.Len(t, dashboard.Warehouses, 1)
	assert.Equal(t, "WH1", dashboard.Warehouses[0].Warehouse)
	assert.Equal(t, 1, dashboard.Warehouses[0].CurrentStock)
	require.Len(t, dashboard.StatusCounts, 1)
}

func TestGetWarehouseLedger_FilterParsing(t *testing.T) {
	repo := &stubLedgerRepo{
		warehouseRows: []domain.WarehouseLedgerRow{
			{Warehouse: "WH1", Month: "2023-01", Inbound: 1, Stock: 1},
		},
	}
	router := testRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ledgers/warehouses?location=WH1,WH2&from=2023-01&to=2023-06", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"WH1", "WH2"}, repo.lastFilter.Locations)
	assert.Equal(t, "2023-01", repo.lastFilter.FromMonth)
	assert.Equal(t, "2023-06", repo.lastFilter.ToMonth)
}

func TestListCases_InvalidStatus(t *testing.T) {
	router := testRouter(&stubLedgerRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases?status=bogus", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
