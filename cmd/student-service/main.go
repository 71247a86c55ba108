package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/student-service/api/swagger"
	"github.com/noah-isme/student-service/internal/handler"
	"github.com/noah-isme/student-service/internal/repository"
	"github.com/noah-isme/student-service/internal/router"
	"github.com/noah-isme/student-service/internal/service"
	"github.com/noah-isme/student-service/pkg/cache"
	"github.com/noah-isme/student-service/pkg/config"
	"github.com/noah-isme/student-service/pkg/database"
	"github.com/noah-isme/student-service/pkg/logger"
)

// @title Student Service API
// @version 1.0.0
// @description Student records and admissions.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err), zap.String("url", database.SafeURL(cfg.Database)))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	txManager := repository.NewTransactor(db)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, redisClient != nil)
	studentSvc := service.NewStudentService(studentRepo, admissionRepo, txManager, cacheSvc, metricsSvc, validate, logr, cfg.Pagination)
	admissionSvc := service.NewAdmissionService(admissionRepo, studentRepo, txManager, cacheSvc, metricsSvc, validate, logr)
	transferSvc := service.NewTransferService(studentSvc, metricsSvc, logr)
	healthSvc := service.NewHealthService(cfg.ServiceName, database.SafeURL(cfg.Database), repository.NewHealthRepository(db), cacheRepo, cfg.Cache.Enabled, logr)

	engine := router.New(cfg, router.Handlers{
		Students:   handler.NewStudentHandler(studentSvc),
		Admissions: handler.NewAdmissionHandler(admissionSvc),
		Transfers:  handler.NewTransferHandler(transferSvc, cfg.Import.MaxFileSizeBytes),
		Health:     handler.NewHealthHandler(healthSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc.Handler()),
	}, metricsSvc, logr)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
