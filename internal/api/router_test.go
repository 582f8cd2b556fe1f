package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/studentaid/disbursement/internal/api/cron"
	"github.com/studentaid/disbursement/internal/api/dto"
	v1 "github.com/studentaid/disbursement/internal/api/v1"
	"github.com/studentaid/disbursement/internal/domain/student"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/service"
	"github.com/studentaid/disbursement/internal/testutil"
	"github.com/studentaid/disbursement/internal/types"
)

type fakeStarter struct {
	calls []string
	err   error
}

func (f *fakeStarter) StartWorkflow(_ context.Context, workflowType types.TemporalWorkflowType, intensity types.OfferingIntensity) (*dto.TriggerWorkflowResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := workflowType.WorkflowID(intensity)
	f.calls = append(f.calls, id)
	return &dto.TriggerWorkflowResponse{WorkflowID: id, RunID: "run-1"}, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error { return f.err }

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	starter *fakeStarter
	pinger  *fakePinger
	router  *gin.Engine
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := service.ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.GetConfig(),
		DB:            s.GetDB(),
		Metrics:       s.GetMetrics(),
		StudentRepo:   stores.StudentRepo,
		OverawardRepo: stores.OverawardRepo,
	}

	s.starter = &fakeStarter{}
	s.pinger = &fakePinger{}
	s.router = NewRouter(Handlers{
		Health:    v1.NewHealthHandler(s.pinger, s.GetLogger()),
		Overaward: v1.NewOverawardHandler(service.NewOverawardService(params), s.GetLogger()),
		ECertCron: cron.NewECertCronHandler(s.starter, s.GetLogger()),
		Metrics:   s.GetMetrics().Handler(),
	}, s.GetConfig(), s.GetLogger())

	s.Require().NoError(stores.StudentRepo.Create(s.GetContext(), &student.Student{
		ID:        "stu_1",
		SIN:       "123456789",
		SINStatus: types.SINStatusValid,
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *RouterSuite) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decodeError(w *httptest.ResponseRecorder) ierr.ErrorResponse {
	var resp ierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))

	s.pinger.err = errors.New("connection refused")
	w = s.do(http.MethodGet, "/health", "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RouterSuite) TestRequestIDIsEchoed() {
	w := s.do(http.MethodGet, "/health", "", types.HeaderRequestID, "req-42")
	s.Equal("req-42", w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestMetrics() {
	s.GetMetrics().RecordSequenceAllocation("ECERT_FT_FILE")

	w := s.do(http.MethodGet, "/metrics", "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `disbursement_sequence_allocations_total{sequence="ECERT_FT_FILE"} 1`)
}

func (s *RouterSuite) TestOverawards_RecordAndBalance() {
	w := s.do(http.MethodPost, "/v1/students/stu_1/overawards",
		`{"award_value_code":"cslf","amount":"125.25"}`,
		types.HeaderUserID, "operator_7")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var entry dto.LedgerEntryResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &entry))
	s.Equal("CSLF", entry.AwardValueCode)
	s.Equal(types.OverawardOriginManualDeduction, entry.OriginType)
	s.Equal("operator_7", entry.CreatedBy)

	w = s.do(http.MethodGet, "/v1/students/stu_1/overawards", "")
	s.Require().Equal(http.StatusOK, w.Code)

	var balance dto.OverawardBalanceResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balance))
	s.Equal("stu_1", balance.StudentID)
	s.True(decimal.RequireFromString("125.25").Equal(balance.Balances["CSLF"]))
	s.True(decimal.RequireFromString("125.25").Equal(balance.Total))

	w = s.do(http.MethodGet, "/v1/students/stu_1/overawards/entries?award_value_code=cslf", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListResponse[*dto.LedgerEntryResponse]
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Equal(1, list.Total)
}

func (s *RouterSuite) TestOverawards_BalanceAsOf() {
	w := s.do(http.MethodPost, "/v1/students/stu_1/overawards", `{"award_value_code":"BCSL","amount":50}`)
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/v1/students/stu_1/overawards?as_of=2000-01-01T00:00:00Z", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var balance dto.OverawardBalanceResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balance))
	s.True(balance.Total.IsZero())
	s.Require().NotNil(balance.AsOf)

	w = s.do(http.MethodGet, "/v1/students/stu_1/overawards?as_of=yesterday", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestOverawards_Errors() {
	testCases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"malformed_json", "/v1/students/stu_1/overawards", `{"amount":`, http.StatusBadRequest},
		{"zero_amount", "/v1/students/stu_1/overawards", `{"award_value_code":"CSLF","amount":0}`, http.StatusBadRequest},
		{"unknown_student", "/v1/students/stu_404/overawards", `{"award_value_code":"CSLF","amount":10}`, http.StatusNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.do(http.MethodPost, tc.path, tc.body)
			s.Equal(tc.status, w.Code)
			resp := s.decodeError(w)
			s.False(resp.Success)
			s.NotEmpty(resp.Error.Display)
		})
	}
}

func (s *RouterSuite) TestOverawards_FieldMessages() {
	w := s.do(http.MethodPost, "/v1/students/stu_1/overawards", `{"award_value_code":"CSLF-X","amount":"0.001"}`)
	s.Require().Equal(http.StatusBadRequest, w.Code)

	resp := s.decodeError(w)
	s.Equal("Request validation failed", resp.Error.Display)
	s.Equal("award_value_code must be an award code of up to 4 letters or digits", resp.Error.Details["award_value_code"])
	s.Equal("amount must be a non zero amount in dollars and cents", resp.Error.Details["amount"])
}

func (s *RouterSuite) TestCron_StartsWorkflow() {
	w := s.do(http.MethodPost, "/cron/ecert/ft/generate", "")
	s.Require().Equal(http.StatusAccepted, w.Code)

	var resp dto.TriggerWorkflowResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("ECertGenerationWorkflow-ft", resp.WorkflowID)
	s.Equal("run-1", resp.RunID)

	w = s.do(http.MethodPost, "/cron/ecert/part_time/feedback", "")
	s.Require().Equal(http.StatusAccepted, w.Code)

	s.Equal([]string{"ECertGenerationWorkflow-ft", "ECertFeedbackWorkflow-pt"}, s.starter.calls)
}

func (s *RouterSuite) TestCron_Errors() {
	w := s.do(http.MethodPost, "/cron/ecert/weekly/generate", "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Empty(s.starter.calls)

	s.starter.err = ierr.NewError("workflow already started").
		WithHint("A run is already in progress").
		Mark(ierr.ErrAlreadyExists)
	w = s.do(http.MethodPost, "/cron/ecert/pt/generate", "")
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("A run is already in progress", s.decodeError(w).Error.Display)
}
