package activities

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/studentaid/disbursement/internal/api/dto"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/temporal/models"
	"github.com/studentaid/disbursement/internal/types"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type mockGenerationService struct {
	mock.Mock
}

func (m *mockGenerationService) GenerateECert(ctx context.Context, intensity types.OfferingIntensity) (*dto.GenerateECertResult, error) {
	args := m.Called(ctx, intensity)
	result, _ := args.Get(0).(*dto.GenerateECertResult)
	return result, args.Error(1)
}

type mockFeedbackService struct {
	mock.Mock
}

func (m *mockFeedbackService) Process(ctx context.Context, intensity types.OfferingIntensity, fileName, content string) (*dto.ProcessFeedbackResult, error) {
	args := m.Called(ctx, intensity, fileName, content)
	result, _ := args.Get(0).(*dto.ProcessFeedbackResult)
	return result, args.Error(1)
}

func (m *mockFeedbackService) ProcessResponses(ctx context.Context, intensity types.OfferingIntensity) (*dto.ProcessResponsesResult, error) {
	args := m.Called(ctx, intensity)
	result, _ := args.Get(0).(*dto.ProcessResponsesResult)
	return result, args.Error(1)
}

type ECertActivitiesSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env        *testsuite.TestActivityEnvironment
	generation *mockGenerationService
	feedback   *mockFeedbackService
	activities *ECertActivities
}

func TestECertActivities(t *testing.T) {
	suite.Run(t, new(ECertActivitiesSuite))
}

func (s *ECertActivitiesSuite) SetupTest() {
	s.generation = new(mockGenerationService)
	s.feedback = new(mockFeedbackService)
	s.activities = NewECertActivities(s.generation, s.feedback, logger.NewNopLogger())
	s.env = s.NewTestActivityEnvironment()
	s.env.RegisterActivity(s.activities)
}

func (s *ECertActivitiesSuite) TearDownTest() {
	s.generation.AssertExpectations(s.T())
	s.feedback.AssertExpectations(s.T())
}

var fullTime = models.ECertWorkflowInput{OfferingIntensity: types.OfferingIntensityFullTime}

// applicationError unwraps the failure the activity reported to Temporal
func (s *ECertActivitiesSuite) applicationError(err error) *temporal.ApplicationError {
	s.Require().Error(err)
	var appErr *temporal.ApplicationError
	s.Require().ErrorAs(err, &appErr)
	return appErr
}

func (s *ECertActivitiesSuite) TestGenerateECertFile_Success() {
	s.generation.On("GenerateECert", mock.Anything, types.OfferingIntensityFullTime).
		Return(&dto.GenerateECertResult{RunID: "run_1", RecordCount: 3, TotalAmount: decimal.NewFromInt(900)}, nil).Once()

	val, err := s.env.ExecuteActivity(s.activities.GenerateECertFile, fullTime)
	s.Require().NoError(err)

	var result dto.GenerateECertResult
	s.NoError(val.Get(&result))
	s.Equal("run_1", result.RunID)
	s.Equal(3, result.RecordCount)
}

func (s *ECertActivitiesSuite) TestGenerateECertFile_ErrorClassification() {
	testCases := []struct {
		name         string
		err          error
		nonRetryable bool
		errType      string
	}{
		{"transport", ierr.NewError("dial tcp: timeout").Mark(ierr.ErrTransport), false, ""},
		{"sequence", ierr.NewError("lock timeout").Mark(ierr.ErrSequenceAllocation), false, ""},
		{"database_after_upload", ierr.NewError("commit failed").Mark(ierr.ErrDatabase), true, models.ErrorTypeBatch},
		{"validation", ierr.NewError("bad intensity").Mark(ierr.ErrValidation), true, models.ErrorTypeValidation},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.generation.On("GenerateECert", mock.Anything, types.OfferingIntensityFullTime).
				Return(nil, tc.err).Once()

			_, err := s.env.ExecuteActivity(s.activities.GenerateECertFile, fullTime)
			appErr := s.applicationError(err)
			s.Equal(tc.nonRetryable, appErr.NonRetryable())
			if tc.errType != "" {
				s.Equal(tc.errType, appErr.Type())
			}
		})
	}
}

func (s *ECertActivitiesSuite) TestGenerateECertFile_InvalidInput() {
	_, err := s.env.ExecuteActivity(s.activities.GenerateECertFile, models.ECertWorkflowInput{})
	appErr := s.applicationError(err)
	s.True(appErr.NonRetryable())
	s.Equal(models.ErrorTypeValidation, appErr.Type())
}

func (s *ECertActivitiesSuite) TestProcessECertResponses() {
	s.feedback.On("ProcessResponses", mock.Anything, types.OfferingIntensityPartTime).
		Return(&dto.ProcessResponsesResult{
			OfferingIntensity: types.OfferingIntensityPartTime,
			Files:             []*dto.ProcessFeedbackResult{{FileName: "EDU.PBC.PTECERTSFB.001", MatchedCount: 2}},
		}, nil).Once()

	val, err := s.env.ExecuteActivity(s.activities.ProcessECertResponses,
		models.ECertWorkflowInput{OfferingIntensity: types.OfferingIntensityPartTime})
	s.Require().NoError(err)

	var result dto.ProcessResponsesResult
	s.NoError(val.Get(&result))
	s.Require().Len(result.Files, 1)
	s.Equal(2, result.Files[0].MatchedCount)
}

func (s *ECertActivitiesSuite) TestProcessECertResponses_FailuresAreRetried() {
	s.feedback.On("ProcessResponses", mock.Anything, types.OfferingIntensityFullTime).
		Return(nil, ierr.NewError("connection refused").Mark(ierr.ErrDatabase)).Once()

	_, err := s.env.ExecuteActivity(s.activities.ProcessECertResponses, fullTime)
	appErr := s.applicationError(err)
	s.False(appErr.NonRetryable())
}
