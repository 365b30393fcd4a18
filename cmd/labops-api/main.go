package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/labops/labops-api/api/swagger"
	"github.com/labops/labops-api/internal/handler"
	"github.com/labops/labops-api/internal/middleware"
	"github.com/labops/labops-api/internal/repository"
	"github.com/labops/labops-api/internal/service"
	"github.com/labops/labops-api/pkg/cache"
	"github.com/labops/labops-api/pkg/config"
	"github.com/labops/labops-api/pkg/database"
	"github.com/labops/labops-api/pkg/logger"
	corsmiddleware "github.com/labops/labops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/labops/labops-api/pkg/middleware/requestid"
)

// @title LabOps API
// @version 0.1.0
// @description Laboratory operations scheduling and visualization
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Chart caching degrades to pass-through without Redis.
		logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	labRepo := repository.NewLaboratoryRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	labSvc := service.NewLaboratoryService(labRepo, validate, logr)
	resourceSvc := service.NewResourceService(resourceRepo, labRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, resourceRepo, workOrderRepo, cacheRepo, validate, logr)
	workOrderSvc := service.NewWorkOrderService(workOrderRepo, labRepo, validate, logr)
	ganttSvc := service.NewGanttService(scheduleRepo, cacheRepo, scheduleSvc, service.GanttOptions{
		SpanDays:     cfg.Gantt.SpanDays,
		HistoryDays:  cfg.Gantt.HistoryDays,
		MaxRangeDays: cfg.Gantt.MaxRangeDays,
		CacheTTL:     cfg.Gantt.CacheTTL,
	}, validate, logr)
	exportSvc := service.NewExportService(ganttSvc, service.ExportOptions{
		Enabled:      cfg.Exports.Enabled,
		MaxRangeDays: cfg.Exports.MaxRangeDays,
	}, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Laboratory: handler.NewLaboratoryHandler(labSvc),
		Resource:   handler.NewResourceHandler(resourceSvc),
		Schedule:   handler.NewScheduleHandler(scheduleSvc),
		WorkOrder:  handler.NewWorkOrderHandler(workOrderSvc),
		Gantt:      handler.NewGanttHandler(ganttSvc, metricsSvc),
		Export:     handler.NewExportHandler(exportSvc),
		Health:     handler.NewHealthHandler(db, redisClient, metricsSvc),
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
