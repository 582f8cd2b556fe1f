package temporal

import (
	"github.com/studentaid/disbursement/internal/service"
	"github.com/studentaid/disbursement/internal/temporal/activities"
	"github.com/studentaid/disbursement/internal/temporal/workflows"
	"go.temporal.io/sdk/worker"
)

// RegisterWorkflowsAndActivities registers all workflows and activities with a Temporal worker.
func RegisterWorkflowsAndActivities(w worker.Worker, params service.ServiceParams) {
	// workflows are registered under their function names
	w.RegisterWorkflow(workflows.ECertGenerationWorkflow)
	w.RegisterWorkflow(workflows.ECertFeedbackWorkflow)

	// activities are registered under their method names, see models.Activity*
	ecertActivities := activities.NewECertActivities(
		service.NewECertGenerationService(params),
		service.NewECertFeedbackService(params),
		params.Logger,
	)
	w.RegisterActivity(ecertActivities)

	params.Logger.Infow("registered temporal workflows and activities",
		"workflows", []string{"ECertGenerationWorkflow", "ECertFeedbackWorkflow"},
		"activities", []string{"GenerateECertFile", "ProcessECertResponses"})
}
