package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studentaid/disbursement/internal/api/cron"
	v1 "github.com/studentaid/disbursement/internal/api/v1"
	"github.com/studentaid/disbursement/internal/config"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/rest/middleware"
	"github.com/studentaid/disbursement/internal/types"
)

type Handlers struct {
	Health    *v1.HealthHandler
	Overaward *v1.OverawardHandler
	ECertCron *cron.ECertCronHandler
	// Metrics serves the prometheus registry
	Metrics http.Handler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(logger),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)
	if handlers.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handlers.Metrics))
	}

	v1Group := router.Group("/v1")
	{
		students := v1Group.Group("/students/:id")
		students.GET("/overawards", handlers.Overaward.GetBalance)
		students.POST("/overawards", handlers.Overaward.RecordOveraward)
		students.GET("/overawards/entries", handlers.Overaward.ListEntries)
	}

	// cron routes are called by the scheduler, or by an operator to rerun a stream
	cronGroup := router.Group("/cron")
	{
		ecert := cronGroup.Group("/ecert/:intensity")
		ecert.POST("/generate", handlers.ECertCron.GenerateECert)
		ecert.POST("/feedback", handlers.ECertCron.ProcessResponses)
	}

	return router
}
