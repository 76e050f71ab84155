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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-timetable-api/api/swagger"
	"github.com/noah-isme/tutor-timetable-api/internal/handler"
	"github.com/noah-isme/tutor-timetable-api/internal/repository"
	"github.com/noah-isme/tutor-timetable-api/internal/scheduler"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
	"github.com/noah-isme/tutor-timetable-api/pkg/cache"
	"github.com/noah-isme/tutor-timetable-api/pkg/config"
	"github.com/noah-isme/tutor-timetable-api/pkg/database"
	"github.com/noah-isme/tutor-timetable-api/pkg/jobs"
	"github.com/noah-isme/tutor-timetable-api/pkg/logger"
	"github.com/noah-isme/tutor-timetable-api/pkg/storage"
)

// @title Tutor Timetable API
// @version 1.0.0
// @description Greedy weekly timetable generation for tutors and their students
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.ReadinessCheck{}
	store, closeStore, err := openStore(ctx, cfg, logr, checks)
	if err != nil {
		logr.Fatal("failed to open schedule store", zap.String("driver", cfg.Schedule.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	metrics := service.NewMetricsService()
	cacheSvc, closeCache := openCache(ctx, cfg, logr, metrics, checks)
	defer closeCache()

	validate := validator.New()
	engine := scheduler.NewEngine(scheduler.WithLogger(logr.Named("scheduler")))
	invalidations := service.NewInvalidationQueue(cacheSvc, jobs.QueueConfig{MaxRetries: 3, RetryDelay: time.Second, Logger: logr})
	invalidations.Start(context.Background())
	defer invalidations.Stop()

	people := service.NewPeopleService(store, invalidations, metrics, validate, logr)
	generator := service.NewScheduleGeneratorService(service.ScheduleGeneratorParams{
		Engine:    engine,
		People:    people,
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
	}, service.ScheduleGeneratorConfig{CacheTTL: cfg.Schedule.CacheTTL})

	router := newRouter(routerDeps{
		cfg:       cfg,
		logger:    logr,
		metrics:   metrics,
		tokens:    service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		generator: handler.NewScheduleGeneratorHandler(generator, service.NewExportService(nil, nil)),
		people:    handler.NewPeopleHandler(people, cfg.Schedule.MaxUploadBytes),
		health:    handler.NewMetricsHandler(metrics, checks, logr),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Schedule.StoreDriver),
			zap.Bool("cache", cacheSvc.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (service.ScheduleStore, func(), error) {
	if cfg.Schedule.StoreDriver == config.StoreDriverPostgres {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		checks["postgres"] = db.PingContext
		return repository.NewPersonScheduleRepository(db), func() { db.Close() }, nil
	}

	files, err := storage.NewLocalStorage(cfg.Schedule.Directory)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewFileScheduleRepository(files, logr.Named("store"))
	checks["filesystem"] = func(ctx context.Context) error {
		_, err := repo.List(ctx)
		return err
	}
	return repo, func() {}, nil
}

// openCache never fails: without Redis the service simply runs uncached.
func openCache(ctx context.Context, cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, checks map[string]handler.ReadinessCheck) (*service.CacheService, func()) {
	if !cfg.Schedule.CacheEnabled {
		return service.NewCacheService(nil, metrics, cfg.Schedule.CacheTTL, logr, false), func() {}
	}
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, schedule cache disabled", zap.Error(err))
		return service.NewCacheService(nil, metrics, cfg.Schedule.CacheTTL, logr, false), func() {}
	}
	repo := repository.NewCacheRepository(client, logr)
	checks["redis"] = repo.Ping
	return service.NewCacheService(repo, metrics, cfg.Schedule.CacheTTL, logr, true), func() { repo.Close() }
}
