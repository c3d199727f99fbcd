// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/logistiq/caseledger/backend-go/internal/api/handlers"
	"github.com/logistiq/caseledger/backend-go/internal/api/middleware"
	"github.com/logistiq/caseledger/backend-go/internal/service"
)

type Services struct {
	LedgerService   *service.LedgerService
	AnalysisService *service.AnalysisService
	UploadDir       string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.LedgerService != nil {
			ledgerHandler := handlers.NewLedgerHandler(services.LedgerService)
			ledgerGroup := apiGroup.Group("/ledgers")
			{
				ledgerGroup.GET("/warehouses", ledgerHandler.GetWarehouseLedger)
				ledgerGroup.GET("/sites", ledgerHandler.GetSiteLedger)
			}
			apiGroup.GET("/dashboard", ledgerHandler.GetDashboard)

			caseHandler := handlers.NewCaseHandler(services.LedgerService)
			caseGroup := apiGroup.Group("/cases")
			{
				caseGroup.GET("", caseHandler.ListCases)
				caseGroup.GET("/deadstock", caseHandler.GetDeadStock)
				caseGroup.GET("/:case_no", caseHandler.GetCase)
			}
		}

		if services.AnalysisService != nil {
			analysisHandler := handlers.NewAnalysisHandler(services.AnalysisService, services.UploadDir)
			analysisGroup := apiGroup.Group("/analysis")
			{
				analysisGroup.POST("/upload", analysisHandler.Upload)
				analysisGroup.POST("/run", analysisHandler.Run)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
