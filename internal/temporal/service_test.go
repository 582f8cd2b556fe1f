package temporal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/studentaid/disbursement/internal/config"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/temporal/models"
	"github.com/studentaid/disbursement/internal/types"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	temporalsdk "go.temporal.io/sdk/temporal"
)

type ServiceSuite struct {
	suite.Suite

	ctx       context.Context
	cfg       *config.Configuration
	client    *mocks.Client
	schedules *mocks.ScheduleClient
}

func TestService(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.GetDefaultConfig()
	s.client = &mocks.Client{}
	s.schedules = &mocks.ScheduleClient{}
	s.client.On("ScheduleClient").Return(s.schedules).Maybe()
}

func (s *ServiceSuite) TearDownTest() {
	s.client.AssertExpectations(s.T())
	s.schedules.AssertExpectations(s.T())
}

func (s *ServiceSuite) service() *Service {
	return NewService(&TemporalClient{Client: s.client}, s.cfg, logger.NewNopLogger())
}

func (s *ServiceSuite) handle(scheduleID string) *mocks.ScheduleHandle {
	h := &mocks.ScheduleHandle{}
	s.schedules.On("GetHandle", mock.Anything, scheduleID).Return(h).Once()
	s.T().Cleanup(func() { h.AssertExpectations(s.T()) })
	return h
}

func (s *ServiceSuite) expectRun(workflowID string, err error) {
	run := &mocks.WorkflowRun{}
	run.On("GetID").Return(workflowID).Maybe()
	run.On("GetRunID").Return("run-123").Maybe()

	var ret client.WorkflowRun
	if err == nil {
		ret = run
	}
	s.client.On("ExecuteWorkflow",
		mock.Anything,
		mock.MatchedBy(func(o client.StartWorkflowOptions) bool {
			return o.ID == workflowID &&
				o.TaskQueue == "disbursement-integration" &&
				o.WorkflowExecutionErrorWhenAlreadyStarted
		}),
		mock.AnythingOfType("string"),
		mock.AnythingOfType("models.ECertWorkflowInput"),
	).Return(ret, err).Once()
}

func (s *ServiceSuite) TestStartWorkflow_Direct() {
	s.expectRun("ECertGenerationWorkflow-ft", nil)

	resp, err := s.service().StartWorkflow(s.ctx, types.TemporalECertGenerationWorkflow, types.OfferingIntensityFullTime)
	s.Require().NoError(err)
	s.Equal("ECertGenerationWorkflow-ft", resp.WorkflowID)
	s.Equal("run-123", resp.RunID)
}

func (s *ServiceSuite) TestStartWorkflow_AlreadyRunning() {
	s.expectRun("ECertFeedbackWorkflow-pt",
		serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", "run-1"))

	_, err := s.service().StartWorkflow(s.ctx, types.TemporalECertFeedbackWorkflow, types.OfferingIntensityPartTime)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *ServiceSuite) TestStartWorkflow_ThroughSchedule() {
	s.cfg.Temporal.GenerateSchedule = "0 6 * * 1-5"
	h := s.handle("schedule-ECertGenerationWorkflow-pt")
	h.On("Trigger", mock.Anything, client.ScheduleTriggerOptions{
		Overlap: enumspb.SCHEDULE_OVERLAP_POLICY_SKIP,
	}).Return(nil).Once()

	resp, err := s.service().StartWorkflow(s.ctx, types.TemporalECertGenerationWorkflow, types.OfferingIntensityPartTime)
	s.Require().NoError(err)
	s.Equal("ECertGenerationWorkflow-pt", resp.WorkflowID)
	s.Empty(resp.RunID)
}

func (s *ServiceSuite) TestStartWorkflow_MissingScheduleFallsBack() {
	s.cfg.Temporal.GenerateSchedule = "0 6 * * 1-5"
	h := s.handle("schedule-ECertGenerationWorkflow-ft")
	h.On("Trigger", mock.Anything, mock.Anything).Return(serviceerror.NewNotFound("schedule not found")).Once()
	s.expectRun("ECertGenerationWorkflow-ft", nil)

	resp, err := s.service().StartWorkflow(s.ctx, types.TemporalECertGenerationWorkflow, types.OfferingIntensityFullTime)
	s.Require().NoError(err)
	s.Equal("run-123", resp.RunID)
}

func (s *ServiceSuite) TestStartWorkflow_TriggerFailure() {
	s.cfg.Temporal.FeedbackSchedule = "*/15 * * * *"
	h := s.handle("schedule-ECertFeedbackWorkflow-ft")
	h.On("Trigger", mock.Anything, mock.Anything).Return(errors.New("unavailable")).Once()

	_, err := s.service().StartWorkflow(s.ctx, types.TemporalECertFeedbackWorkflow, types.OfferingIntensityFullTime)
	s.Error(err)
	s.False(ierr.IsAlreadyExists(err))
}

func (s *ServiceSuite) TestStartWorkflow_Validation() {
	_, err := s.service().StartWorkflow(s.ctx, "BillingWorkflow", types.OfferingIntensityFullTime)
	s.True(ierr.IsValidation(err))

	_, err = s.service().StartWorkflow(s.ctx, types.TemporalECertGenerationWorkflow, "monthly")
	s.True(ierr.IsValidation(err))
}

func (s *ServiceSuite) TestEnsureSchedules() {
	s.cfg.Temporal.GenerateSchedule = "0 6 * * 1-5"

	s.schedules.On("Create", mock.Anything, mock.MatchedBy(func(o client.ScheduleOptions) bool {
		return o.ID == "schedule-ECertGenerationWorkflow-ft" && o.Overlap == enumspb.SCHEDULE_OVERLAP_POLICY_SKIP
	})).Return(&mocks.ScheduleHandle{}, nil).Once()
	s.schedules.On("Create", mock.Anything, mock.MatchedBy(func(o client.ScheduleOptions) bool {
		return o.ID == "schedule-ECertGenerationWorkflow-pt"
	})).Return(nil, temporalsdk.ErrScheduleAlreadyRunning).Once()

	existing := s.handle("schedule-ECertGenerationWorkflow-pt")
	existing.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	s.handle("schedule-ECertFeedbackWorkflow-ft").On("Delete", mock.Anything).Return(nil).Once()
	s.handle("schedule-ECertFeedbackWorkflow-pt").On("Delete", mock.Anything).
		Return(serviceerror.NewNotFound("schedule not found")).Once()

	s.NoError(s.service().EnsureSchedules(s.ctx))
}

func (s *ServiceSuite) TestEnsureSchedules_InvalidCron() {
	s.cfg.Temporal.FeedbackSchedule = "every morning"

	s.handle("schedule-ECertGenerationWorkflow-ft").On("Delete", mock.Anything).Return(nil).Once()
	s.handle("schedule-ECertGenerationWorkflow-pt").On("Delete", mock.Anything).Return(nil).Once()

	err := s.service().EnsureSchedules(s.ctx)
	s.True(ierr.IsValidation(err))
	s.schedules.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *ServiceSuite) TestScheduledRunsUseWorkflowInput() {
	s.cfg.Temporal.FeedbackSchedule = "@daily"

	s.handle("schedule-ECertGenerationWorkflow-ft").On("Delete", mock.Anything).Return(nil).Once()
	s.handle("schedule-ECertGenerationWorkflow-pt").On("Delete", mock.Anything).Return(nil).Once()

	var created []client.ScheduleOptions
	s.schedules.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(client.ScheduleOptions)) }).
		Return(&mocks.ScheduleHandle{}, nil).Twice()

	s.Require().NoError(s.service().EnsureSchedules(s.ctx))
	s.Require().Len(created, 2)

	action, ok := created[1].Action.(*client.ScheduleWorkflowAction)
	s.Require().True(ok)
	s.Equal("ECertFeedbackWorkflow", action.Workflow)
	s.Equal("ECertFeedbackWorkflow-pt", action.ID)
	s.Equal([]interface{}{models.ECertWorkflowInput{OfferingIntensity: types.OfferingIntensityPartTime}}, action.Args)
	s.Equal([]string{"@daily"}, created[1].Spec.CronExpressions)
}
