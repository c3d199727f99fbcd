package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/logistiq/caseledger/backend-go/internal/domain"
	"github.com/logistiq/caseledger/backend-go/internal/engine"
	"github.com/logistiq/caseledger/backend-go/internal/ingest"
	"github.com/logistiq/caseledger/backend-go/internal/service"
)

type AnalysisHandler struct {
	service   *service.AnalysisService
	uploadDir string
}

func NewAnalysisHandler(service *service.AnalysisService, uploadDir string) *AnalysisHandler {
	return &AnalysisHandler{service: service, uploadDir: uploadDir}
}

type analysisResponse struct {
	Months       []string             `json:"months"`
	TotalCases   int                  `json:"total_cases"`
	StatusCounts []domain.StatusCount `json:"status_counts"`
	DeadStock    int                  `json:"dead_stock_count"`
	Warnings     []engine.Warning     `json:"warnings,omitempty"`
}

func summarize(result *engine.Result) analysisResponse {
	return analysisResponse{
		Months:       result.Months,
		TotalCases:   result.TotalCases,
		StatusCounts: result.StatusCounts,
		DeadStock:    len(result.DeadStock),
		Warnings:     result.Warnings,
	}
}

// Upload accepts one or more snapshot files, runs the analysis over them and
// persists the results.
func (h *AnalysisHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		errorResponse(c, http.StatusBadRequest, "no files uploaded (use form field 'files')")
		return
	}

	var tables []*ingest.Table
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".csv" && ext != ".xlsx" {
			errorResponse(c, http.StatusBadRequest, "unsupported file type: "+file.Filename)
			return
		}

		dest := filepath.Join(h.uploadDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dest); err != nil {
			errorResponse(c, http.StatusInternalServerError, "failed to save upload: "+err.Error())
			return
		}

		table, err := ingest.ReadFile(dest)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "failed to parse "+file.Filename+": "+err.Error())
			return
		}
		tables = append(tables, table)
	}

	result, err := h.service.AnalyzeAndStore(c.Request.Context(), tables)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	log.Info().Int("files", len(files)).Int("cases", result.TotalCases).Msg("Upload analysed")
	c.JSON(http.StatusOK, summarize(result))
}

// Run re-analyses the snapshots already present in the upload directory.
func (h *AnalysisHandler) Run(c *gin.Context) {
	tables, err := ingest.ReadDir(h.uploadDir)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "failed to load snapshots: "+err.Error())
		return
	}

	result, err := h.service.AnalyzeAndStore(c.Request.Context(), tables)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, summarize(result))
}
