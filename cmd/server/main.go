package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studentaid/disbursement/internal/api"
	"github.com/studentaid/disbursement/internal/api/cron"
	v1 "github.com/studentaid/disbursement/internal/api/v1"
	"github.com/studentaid/disbursement/internal/config"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/metrics"
	"github.com/studentaid/disbursement/internal/postgres"
	"github.com/studentaid/disbursement/internal/repository"
	"github.com/studentaid/disbursement/internal/s3"
	"github.com/studentaid/disbursement/internal/service"
	"github.com/studentaid/disbursement/internal/sftp"
	"github.com/studentaid/disbursement/internal/temporal"
	"github.com/studentaid/disbursement/internal/types"
	"github.com/studentaid/disbursement/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			metrics.NewRecorder,

			// Postgres
			postgres.NewDB,
			providePostgresClient,

			// File exchange and archive
			provideTransport,
			s3.NewService,

			// Feedback error codes
			feedback.DefaultErrorTable,

			// Repositories
			repository.NewSequenceRepository,
			repository.NewDisbursementRepository,
			repository.NewMSFAARepository,
			repository.NewStudentRepository,
			repository.NewOverawardRepository,
			repository.NewFeedbackRepository,

			// Temporal
			temporal.NewTemporalClient,
			temporal.NewService,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewOverawardService,
		),
	)

	// API and Temporal
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			// request validation uses the package level validator
			validator.NewValidator,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideTransport(cfg *config.Configuration, log *logger.Logger) sftp.Transport {
	return sftp.NewClient(cfg, log)
}

func provideHandlers(
	db *postgres.DB,
	logger *logger.Logger,
	recorder *metrics.Recorder,
	overawardService service.OverawardService,
	temporalService *temporal.Service,
) api.Handlers {
	return api.Handlers{
		Health:    v1.NewHealthHandler(db, logger),
		Overaward: v1.NewOverawardHandler(overawardService, logger),
		ECertCron: cron.NewECertCronHandler(temporalService, logger),
		Metrics:   recorder.Handler(),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	temporalClient *temporal.TemporalClient,
	temporalService *temporal.Service,
	params service.ServiceParams,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startTemporalWorker(lc, temporalClient, temporalService, cfg, params)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeTemporalWorker:
		startTemporalWorker(lc, temporalClient, temporalService, cfg, params)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			temporalClient.Close()
			db.Close()
			return nil
		},
	})
}

func startTemporalWorker(
	lc fx.Lifecycle,
	temporalClient *temporal.TemporalClient,
	temporalService *temporal.Service,
	cfg *config.Configuration,
	params service.ServiceParams,
) {
	worker := temporal.NewWorker(temporalClient, cfg, params)
	worker.RegisterWithLifecycle(lc)

	// the worker owns the schedules so API-only replicas never rewrite them
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return temporalService.EnsureSchedules(ctx)
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return srv.Shutdown(ctx)
		},
	})
}
