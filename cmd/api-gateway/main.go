package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/learnytics/insights-api/api/swagger"
	"github.com/learnytics/insights-api/internal/handler"
	"github.com/learnytics/insights-api/internal/middleware"
	"github.com/learnytics/insights-api/internal/repository"
	"github.com/learnytics/insights-api/internal/service"
	"github.com/learnytics/insights-api/pkg/cache"
	"github.com/learnytics/insights-api/pkg/config"
	"github.com/learnytics/insights-api/pkg/database"
	"github.com/learnytics/insights-api/pkg/logger"
	corsmiddleware "github.com/learnytics/insights-api/pkg/middleware/cors"
	reqidmiddleware "github.com/learnytics/insights-api/pkg/middleware/requestid"
	"github.com/learnytics/insights-api/pkg/storage"
)

// @title Learnytics Insights API
// @version 0.1.0
// @description Learning-analytics dashboard backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	fileStore, err := repository.NewFileStore(cfg.Data.File)
	if err != nil {
		logr.Sugar().Fatalw("file store init failed", "error", err)
	}

	var source service.ActivitySource = fileStore
	if cfg.Data.Source == config.SourceDatabase {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("database connect failed", "error", err)
		}
		defer db.Close() //nolint:errcheck
		source = repository.NewActivityRepository(db)
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Insights.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Insights.CacheTTL, logr, true)
		}
	}

	uploads, err := storage.NewLocalStorage(cfg.Data.UploadsDir)
	if err != nil {
		logr.Sugar().Fatalw("uploads storage init failed", "error", err)
	}

	insightsSvc := service.NewInsightsService(source, cfg.Data.Source, cacheSvc, metricsSvc, logr)
	recommendationSvc := service.NewRecommendationService(source, cfg.ML.ServiceURL, cfg.ML.Timeout, logr, nil)
	importSvc := service.NewImportService(fileStore, uploads, cacheSvc, logr)
	exportSvc := service.NewExportService(insightsSvc)

	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	recommendationHandler := handler.NewRecommendationHandler(recommendationSvc)
	dataHandler := handler.NewDataHandler(importSvc, cfg.Data.SampleSize)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	{
		insights := api.Group("/insights")
		{
			insights.GET("/summary", insightsHandler.Summary)
			insights.GET("/kpi", insightsHandler.KPI)
			insights.GET("/trend", insightsHandler.Trend)
			insights.GET("/modules", insightsHandler.Modules)
			insights.GET("/completion", insightsHandler.Completion)
			insights.GET("/leaderboard", insightsHandler.Leaderboard)
			insights.GET("/leaderboard/export", exportHandler.Leaderboard)
			insights.GET("/student/:studentId", insightsHandler.Student)
			insights.GET("/system", insightsHandler.System)
		}

		api.GET("/ml/recommendation/:studentId", recommendationHandler.Recommend)

		api.GET("/data/sample", dataHandler.Sample)
		api.POST("/data/import", dataHandler.Import)
		api.GET("/records", dataHandler.Records)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "source", cfg.Data.Source)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
