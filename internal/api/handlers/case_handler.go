package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/service"
)

type CaseHandler struct {
	service *service.LedgerService
}

func NewCaseHandler(service *service.LedgerService) *CaseHandler {
	return &CaseHandler{service: service}
}

func parseCaseFilter(c *gin.Context) (domain.CaseFilter, bool) {
	filter := domain.CaseFilter{Page: 1, PageSize: 50}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}
	if source := strings.TrimSpace(c.Query("source")); source != "" {
		filter.Source = source
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		parsed, ok := domain.ParseCaseStatus(status)
		if !ok {
			return domain.CaseFilter{}, false
		}
		filter.Status = string(parsed)
	}

	return filter, true
}

// ListCases serves paginated case reports.
func (h *CaseHandler) ListCases(c *gin.Context) {
	filter, ok := parseCaseFilter(c)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid status filter")
		return
	}

	reports, total, err := h.service.ListCases(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to list cases: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      reports,
		"total":     total,
		"page":      filter.Page,
		"page_size": filter.PageSize,
	})
}

// GetCase serves a single case report.
func (h *CaseHandler) GetCase(c *gin.Context) {
	caseNo := strings.TrimSpace(c.Param("case_no"))
	if caseNo == "" {
		errorResponse(c, http.StatusBadRequest, "case number is required")
		return
	}

	report, err := h.service.GetCase(c.Request.Context(), caseNo)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load case: "+err.Error())
		return
	}
	if report == nil {
		errorResponse(c, http.StatusNotFound, "case not found: "+caseNo)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDeadStock serves the current dead stock selection.
func (h *CaseHandler) GetDeadStock(c *gin.Context) {
	records, err := h.service.GetDeadStock(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load dead stock: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}
