package workflows

import (
	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/temporal/models"
	"go.temporal.io/sdk/workflow"
)

// ECertGenerationWorkflow sends the certificate file of one stream
func ECertGenerationWorkflow(ctx workflow.Context, input models.ECertWorkflowInput) (*models.ECertGenerationWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Starting e-Cert generation workflow", "offering_intensity", input.OfferingIntensity)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: models.GenerateActivityTimeout,
		RetryPolicy:         models.DefaultActivityRetryPolicy().ToSDKRetryPolicy(),
	})

	var result dto.GenerateECertResult
	if err := workflow.ExecuteActivity(ctx, models.ActivityGenerateECertFile, input).Get(ctx, &result); err != nil {
		logger.Error("e-Cert generation failed", "offering_intensity", input.OfferingIntensity, "error", err)
		return nil, err
	}

	logger.Info("Completed e-Cert generation workflow",
		"offering_intensity", input.OfferingIntensity,
		"file_name", result.FileName,
		"records", result.RecordCount)
	return models.NewECertGenerationWorkflowResult(&result), nil
}

// ECertFeedbackWorkflow reconciles the response files of one stream
func ECertFeedbackWorkflow(ctx workflow.Context, input models.ECertWorkflowInput) (*models.ECertFeedbackWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	if err := input.Validate(); err != nil {
		return nil, err
	}
	logger.Info("Starting e-Cert feedback workflow", "offering_intensity", input.OfferingIntensity)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: models.FeedbackActivityTimeout,
		RetryPolicy:         models.DefaultActivityRetryPolicy().ToSDKRetryPolicy(),
	})

	var result dto.ProcessResponsesResult
	if err := workflow.ExecuteActivity(ctx, models.ActivityProcessECertResponses, input).Get(ctx, &result); err != nil {
		logger.Error("e-Cert response processing failed", "offering_intensity", input.OfferingIntensity, "error", err)
		return nil, err
	}

	summary := models.NewECertFeedbackWorkflowResult(&result)
	logger.Info("Completed e-Cert feedback workflow",
		"offering_intensity", input.OfferingIntensity,
		"files", len(summary.Files),
		"blocked", summary.BlockedCount)
	return summary, nil
}
