package activities

import (
	"context"

	"github.com/studentaid/disbursement/internal/api/dto"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/service"
	"github.com/studentaid/disbursement/internal/temporal/models"
	"github.com/studentaid/disbursement/internal/types"
	temporalsdk "go.temporal.io/sdk/temporal"
)

// ECertActivities runs the e-Cert batch jobs on a worker.
// When registered with Temporal, methods are called by their method name.
type ECertActivities struct {
	generation service.ECertGenerationService
	feedback   service.ECertFeedbackService
	logger     *logger.Logger
}

func NewECertActivities(
	generation service.ECertGenerationService,
	feedback service.ECertFeedbackService,
	logger *logger.Logger,
) *ECertActivities {
	return &ECertActivities{
		generation: generation,
		feedback:   feedback,
		logger:     logger,
	}
}

// GenerateECertFile builds and uploads the certificate file of one stream.
// Only failures that happen before anything was uploaded or stored are
// retried, every other failure needs an operator.
func (a *ECertActivities) GenerateECertFile(ctx context.Context, input models.ECertWorkflowInput) (*dto.GenerateECertResult, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable(err, models.ErrorTypeValidation)
	}

	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	result, err := a.generation.GenerateECert(ctx, input.OfferingIntensity)
	if err != nil {
		a.logger.Errorw("e-Cert generation failed",
			"offering_intensity", input.OfferingIntensity,
			"error", err)
		switch {
		case ierr.IsTransport(err), ierr.IsSequenceAllocation(err):
			return nil, err
		case ierr.IsValidation(err):
			return nil, nonRetryable(err, models.ErrorTypeValidation)
		default:
			return nil, nonRetryable(err, models.ErrorTypeBatch)
		}
	}
	return result, nil
}

// ProcessECertResponses reconciles every waiting response file of one stream.
// Processing is idempotent so any failure but bad input is retried.
func (a *ECertActivities) ProcessECertResponses(ctx context.Context, input models.ECertWorkflowInput) (*dto.ProcessResponsesResult, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable(err, models.ErrorTypeValidation)
	}

	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	result, err := a.feedback.ProcessResponses(ctx, input.OfferingIntensity)
	if err != nil {
		a.logger.Errorw("e-Cert response processing failed",
			"offering_intensity", input.OfferingIntensity,
			"error", err)
		if ierr.IsValidation(err) {
			return nil, nonRetryable(err, models.ErrorTypeValidation)
		}
		return nil, err
	}
	return result, nil
}

func nonRetryable(err error, errType string) error {
	return temporalsdk.NewNonRetryableApplicationError(err.Error(), errType, err)
}
