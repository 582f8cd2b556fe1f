package temporal

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/config"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/temporal/models"
	"github.com/studentaid/disbursement/internal/types"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	temporalsdk "go.temporal.io/sdk/temporal"
)

var streams = []types.OfferingIntensity{
	types.OfferingIntensityFullTime,
	types.OfferingIntensityPartTime,
}

// Service starts and schedules the e-Cert workflows
type Service struct {
	client client.Client
	cfg    config.TemporalConfig
	log    *logger.Logger
}

// NewService creates a new Temporal service
func NewService(c *TemporalClient, cfg *config.Configuration, log *logger.Logger) *Service {
	return &Service{
		client: c.Client,
		cfg:    cfg.Temporal,
		log:    log,
	}
}

// cronFor returns the configured cron expression of the workflow type
func (s *Service) cronFor(workflowType types.TemporalWorkflowType) string {
	switch workflowType {
	case types.TemporalECertGenerationWorkflow:
		return s.cfg.GenerateSchedule
	case types.TemporalECertFeedbackWorkflow:
		return s.cfg.FeedbackSchedule
	}
	return ""
}

// StartWorkflow runs the workflow for one stream now. A scheduled stream is
// triggered through its schedule so the run cannot overlap a scheduled one,
// otherwise the run is started directly under the stream's stable ID.
func (s *Service) StartWorkflow(
	ctx context.Context,
	workflowType types.TemporalWorkflowType,
	intensity types.OfferingIntensity,
) (*dto.TriggerWorkflowResponse, error) {
	if err := workflowType.Validate(); err != nil {
		return nil, err
	}
	input := models.ECertWorkflowInput{OfferingIntensity: intensity}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	workflowID := workflowType.WorkflowID(intensity)

	if s.cronFor(workflowType) != "" {
		scheduleID := workflowType.ScheduleID(intensity)
		handle := s.client.ScheduleClient().GetHandle(ctx, scheduleID)
		err := handle.Trigger(ctx, client.ScheduleTriggerOptions{
			Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		})
		if err == nil {
			s.log.Infow("triggered scheduled workflow",
				"schedule_id", scheduleID,
				"workflow_type", workflowType)
			return &dto.TriggerWorkflowResponse{WorkflowID: workflowID}, nil
		}

		var notFound *serviceerror.NotFound
		if !errors.As(err, &notFound) {
			s.log.Errorw("failed to trigger schedule", "schedule_id", scheduleID, "error", err)
			return nil, ierr.WithError(err).
				WithHintf("Failed to trigger schedule %s", scheduleID).
				Mark(ierr.ErrSystem)
		}
		// schedules are created at startup, fall back to a direct run until then
	}

	run, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                s.cfg.TaskQueue,
		WorkflowExecutionTimeout:                 models.WorkflowExecutionTimeout,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflowType.String(), input)
	if err != nil {
		var started *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &started) {
			return nil, ierr.WithError(err).
				WithHintf("A %s run for %s is already in progress", workflowType, intensity).
				Mark(ierr.ErrAlreadyExists)
		}
		s.log.Errorw("failed to start workflow", "workflow_id", workflowID, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to start workflow").
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("started workflow",
		"workflow_id", run.GetID(),
		"run_id", run.GetRunID())

	return &dto.TriggerWorkflowResponse{
		WorkflowID: run.GetID(),
		RunID:      run.GetRunID(),
	}, nil
}

// EnsureSchedules creates or updates the cron schedule of every stream.
// Streams without a configured expression get their schedule removed.
func (s *Service) EnsureSchedules(ctx context.Context) error {
	for _, workflowType := range []types.TemporalWorkflowType{
		types.TemporalECertGenerationWorkflow,
		types.TemporalECertFeedbackWorkflow,
	} {
		expr := s.cronFor(workflowType)
		if expr != "" {
			if err := models.ValidateCronSchedule(expr); err != nil {
				return err
			}
		}

		for _, intensity := range streams {
			var err error
			if expr == "" {
				err = s.deleteSchedule(ctx, workflowType.ScheduleID(intensity))
			} else {
				err = s.upsertSchedule(ctx, workflowType, intensity, expr)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) upsertSchedule(
	ctx context.Context,
	workflowType types.TemporalWorkflowType,
	intensity types.OfferingIntensity,
	expr string,
) error {
	scheduleID := workflowType.ScheduleID(intensity)
	spec := client.ScheduleSpec{CronExpressions: []string{expr}}

	_, err := s.client.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID:      scheduleID,
		Spec:    spec,
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
		Action: &client.ScheduleWorkflowAction{
			ID:                       workflowType.WorkflowID(intensity),
			Workflow:                 workflowType.String(),
			Args:                     []interface{}{models.ECertWorkflowInput{OfferingIntensity: intensity}},
			TaskQueue:                s.cfg.TaskQueue,
			WorkflowExecutionTimeout: models.WorkflowExecutionTimeout,
		},
	})
	if err == nil {
		s.log.Infow("temporal schedule created", "schedule_id", scheduleID, "cron", expr)
		return nil
	}
	if !errors.Is(err, temporalsdk.ErrScheduleAlreadyRunning) {
		s.log.Errorw("failed to create temporal schedule", "schedule_id", scheduleID, "error", err)
		return ierr.WithError(err).
			WithHintf("Failed to create schedule %s", scheduleID).
			Mark(ierr.ErrSystem)
	}

	handle := s.client.ScheduleClient().GetHandle(ctx, scheduleID)
	err = handle.Update(ctx, client.ScheduleUpdateOptions{
		DoUpdate: func(input client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
			schedule := input.Description.Schedule
			schedule.Spec = &spec
			return &client.ScheduleUpdate{Schedule: &schedule}, nil
		},
	})
	if err != nil {
		s.log.Errorw("failed to update temporal schedule", "schedule_id", scheduleID, "error", err)
		return ierr.WithError(err).
			WithHintf("Failed to update schedule %s", scheduleID).
			Mark(ierr.ErrSystem)
	}

	s.log.Infow("temporal schedule updated", "schedule_id", scheduleID, "cron", expr)
	return nil
}

func (s *Service) deleteSchedule(ctx context.Context, scheduleID string) error {
	err := s.client.ScheduleClient().GetHandle(ctx, scheduleID).Delete(ctx)
	if err == nil {
		s.log.Infow("temporal schedule removed", "schedule_id", scheduleID)
		return nil
	}

	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return nil
	}
	return ierr.WithError(err).
		WithHintf("Failed to remove schedule %s", scheduleID).
		Mark(ierr.ErrSystem)
}

// Close closes the temporal client
func (s *Service) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
