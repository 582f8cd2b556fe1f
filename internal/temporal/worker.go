package temporal

import (
	"context"

	"github.com/studentaid/disbursement/internal/config"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/service"
	"github.com/studentaid/disbursement/internal/temporal/models"
	"go.temporal.io/sdk/worker"
	"go.uber.org/fx"
)

// Worker manages the Temporal worker instance.
type Worker struct {
	worker worker.Worker
	log    *logger.Logger
}

// NewWorker creates a new Temporal worker and registers workflows and activities.
func NewWorker(client *TemporalClient, cfg *config.Configuration, params service.ServiceParams) *Worker {
	w := worker.New(client.Client, cfg.Temporal.TaskQueue, worker.Options{
		WorkerStopTimeout: models.DefaultWorkerStopTimeout,
	})

	RegisterWorkflowsAndActivities(w, params)

	return &Worker{
		worker: w,
		log:    params.Logger,
	}
}

// Start starts the Temporal worker.
func (w *Worker) Start() error {
	w.log.Info("starting temporal worker")
	return w.worker.Start()
}

// Stop stops the Temporal worker.
func (w *Worker) Stop() {
	w.log.Info("stopping temporal worker")
	if w.worker != nil {
		w.worker.Stop()
	}
}

// RegisterWithLifecycle registers the worker with the fx lifecycle.
func (w *Worker) RegisterWithLifecycle(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start()
		},
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				w.Stop()
				close(done)
			}()

			select {
			case <-done:
				w.log.Info("temporal worker stopped successfully")
			case <-ctx.Done():
				w.log.Error("timeout while stopping temporal worker")
			}
			return nil
		},
	})
}
