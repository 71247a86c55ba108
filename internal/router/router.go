package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/student-service/internal/handler"
	internalmiddleware "github.com/noah-isme/student-service/internal/middleware"
	"github.com/noah-isme/student-service/internal/service"
	"github.com/noah-isme/student-service/pkg/config"
	"github.com/noah-isme/student-service/pkg/logger"
	corsmiddleware "github.com/noah-isme/student-service/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/student-service/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Students   *handler.StudentHandler
	Admissions *handler.AdmissionHandler
	Transfers  *handler.TransferHandler
	Health     *handler.HealthHandler
	Metrics    *handler.MetricsHandler
}

// New builds the gin engine with global middleware and every route.
func New(cfg *config.Config, h Handlers, metrics *service.MetricsService, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/metrics", h.Metrics.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", h.Health.Health)
	api.GET("/health/detailed", h.Health.Detailed)

	var write gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.Auth.Enabled {
		write = internalmiddleware.BearerAuth(cfg.Auth.Secret)
	}

	students := api.Group("/students")
	{
		students.GET("/export", h.Transfers.Export)
		students.POST("/import", write, h.Transfers.Import)

		students.GET("/search", h.Students.Search)
		students.GET("/departments", h.Students.Departments)
		students.GET("/statistics", h.Students.Statistics)
		students.GET("/department/:department", h.Students.ListByDepartment)
		students.GET("/department/:department/count", h.Students.CountByDepartment)
		students.GET("/status/:status", h.Students.ListByStatus)
		students.GET("/year/:year", h.Students.ListByYear)
		students.GET("/exists/student-id/:studentId", h.Students.ExistsByStudentID)
		students.GET("/exists/email/:email", h.Students.ExistsByEmail)
		students.GET("/student-id/:studentId", h.Students.GetByStudentID)
		students.GET("/student-id/:studentId/admissions", h.Admissions.ListByStudentNumber)

		students.POST("", write, h.Students.Create)
		students.GET("", h.Students.List)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", write, h.Students.Update)
		students.DELETE("/:id", write, h.Students.Delete)
		students.PATCH("/:id/status", write, h.Students.UpdateStatus)
		students.POST("/:id/admissions", write, h.Admissions.Create)
		students.GET("/:id/admissions", h.Admissions.ListByStudent)
	}

	admissions := api.Group("/admissions")
	{
		admissions.GET("", h.Admissions.List)
		admissions.GET("/programs", h.Admissions.Programs)
		admissions.GET("/statistics", h.Admissions.Statistics)
	}

	return r
}
