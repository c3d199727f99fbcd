package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/service"
)

type LedgerHandler struct {
	service *service.LedgerService
}

func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

func parseLedgerFilter(c *gin.Context) domain.LedgerFilter {
	filter := domain.LedgerFilter{
		FromMonth: strings.TrimSpace(c.Query("from")),
		ToMonth:   strings.TrimSpace(c.Query("to")),
	}

	// Locations arrive as repeated params or one comma-separated value.
	raw := c.QueryArray("location")
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query("locations")); single != "" {
			raw = strings.Split(single, ",")
		}
	}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				filter.Locations = append(filter.Locations, part)
			}
		}
	}

	return filter
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

// GetWarehouseLedger serves monthly warehouse ledgers.
func (h *LedgerHandler) GetWarehouseLedger(c *gin.Context) {
	rows, err := h.service.GetWarehouseLedger(c.Request.Context(), parseLedgerFilter(c))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load warehouse ledger: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GetSiteLedger serves monthly site ledgers.
func (h *LedgerHandler) GetSiteLedger(c *gin.Context) {
	rows, err := h.service.GetSiteLedger(c.Request.Context(), parseLedgerFilter(c))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load site ledger: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// GetDashboard serves the aggregate network dashboard.
func (h *LedgerHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.GetDashboard(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load dashboard: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
