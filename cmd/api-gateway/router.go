package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-timetable-api/internal/handler"
	"github.com/noah-isme/tutor-timetable-api/internal/middleware"
	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
	"github.com/noah-isme/tutor-timetable-api/pkg/config"
	"github.com/noah-isme/tutor-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-timetable-api/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *service.MetricsService
	tokens    middleware.TokenValidator
	generator *handler.ScheduleGeneratorHandler
	people    *handler.PeopleHandler
	health    *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.health.Health)
	r.GET("/ready", d.health.Ready)
	r.GET("/metrics", d.health.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix, middleware.WithResponseMeta())
	admin := []gin.HandlerFunc{middleware.JWT(d.tokens), middleware.RBAC(models.RoleAdmin)}

	schedules := api.Group("/schedules")
	schedules.POST("/generate", d.generator.Generate)
	schedules.POST("/export", d.generator.Export)
	schedules.DELETE("/cache", append(admin, d.generator.FlushCache)...)

	api.GET("/metrics/summary", middleware.JWT(d.tokens), d.health.Summary)

	people := api.Group("/people")
	people.GET("", d.people.List)
	people.GET("/deletions", d.people.Deletions)
	people.POST("/deletions/:name/restore", append(admin, d.people.Restore)...)
	people.DELETE("/deletions/:name", append(admin, d.people.Purge)...)
	people.POST("/upload", middleware.OptionalJWT(d.tokens), d.people.Upload)
	people.POST("/changes", d.people.Changes)
	people.GET("/:name", d.people.Get)
	people.PUT("/:name", append(admin, d.people.Put)...)
	people.DELETE("/:name", append(admin, d.people.Delete)...)

	return r
}
