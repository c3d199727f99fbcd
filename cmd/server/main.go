// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/logistiq/caseledger/backend-go/internal/api"
	"github.com/logistiq/caseledger/backend-go/internal/cache"
	"github.com/logistiq/caseledger/backend-go/internal/config"
	"github.com/logistiq/caseledger/backend-go/internal/repository/postgres"
	"github.com/logistiq/caseledger/backend-go/internal/service"
	"github.com/logistiq/caseledger/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.App.LogLevel)
	if cfg.App.LogJSON {
		logger.UseJSON()
	}
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(context.Background()); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	dashCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		dashCache = cache.NewNoopDashboardCache()
	}

	ledgerRepo := postgres.NewLedgerRepository(db)
	caseRepo := postgres.NewCaseRepository(db)

	services := &api.Services{
		LedgerService:   service.NewLedgerService(ledgerRepo, caseRepo, dashCache),
		AnalysisService: service.NewAnalysisService(cfg.Analysis, ledgerRepo, caseRepo, dashCache),
		UploadDir:       cfg.App.UploadDir,
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
