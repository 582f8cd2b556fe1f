package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/testutil"
	"github.com/studentaid/disbursement/internal/types"
)

type OverawardServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  OverawardService
	fixtures *fixtures
}

func TestOverawardService(t *testing.T) {
	suite.Run(t, new(OverawardServiceSuite))
}

func (s *OverawardServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewOverawardService(newTestParams(&s.BaseServiceTestSuite))
	s.fixtures = newFixtures(&s.BaseServiceTestSuite)
	s.fixtures.student("stud_1")
}

func (s *OverawardServiceSuite) TestRecordAndBalance() {
	ctx := s.GetContext()

	_, err := s.service.RecordOveraward(ctx, "stud_1", dto.RecordOverawardRequest{
		AwardValueCode: "cslf",
		Amount:         dec("500.00"),
		OriginType:     types.OverawardOriginAssessmentOveraward,
	})
	s.NoError(err)

	entry, err := s.service.RecordOveraward(ctx, "stud_1", dto.RecordOverawardRequest{
		AwardValueCode: "CSLF",
		Amount:         dec("-120.50"),
	})
	s.NoError(err)
	s.Equal(types.OverawardOriginManualDeduction, entry.OriginType)
	s.Equal(types.DefaultUserID, entry.CreatedBy)

	_, err = s.service.RecordOveraward(ctx, "stud_1", dto.RecordOverawardRequest{
		AwardValueCode: "BCSL",
		Amount:         dec("75"),
	})
	s.NoError(err)

	balance, err := s.service.Balance(ctx, "stud_1")
	s.NoError(err)
	s.Len(balance.Balances, 2)
	s.True(dec("379.50").Equal(balance.Balances["CSLF"]))
	s.True(dec("75").Equal(balance.Balances["BCSL"]))
	s.True(dec("454.50").Equal(balance.Total))
}

func (s *OverawardServiceSuite) TestBalanceAsOf_ReplaysLedger() {
	t0 := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	entries := []struct {
		at     time.Time
		amount string
	}{
		{t0, "500"},
		{t0.Add(24 * time.Hour), "-200"},
		{t0.Add(48 * time.Hour), "-300"},
	}
	for _, e := range entries {
		s.NoError(s.GetStores().OverawardRepo.Create(s.GetContext(), &overaward.LedgerEntry{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OVERAWARD),
			StudentID:      "stud_1",
			AwardValueCode: "CSLF",
			Amount:         dec(e.amount),
			OriginType:     types.OverawardOriginManualDeduction,
			CreatedAt:      e.at,
		}))
	}

	testCases := []struct {
		name     string
		at       time.Time
		expected string
	}{
		{"before_first_entry", t0.Add(-time.Second), "0"},
		{"at_first_entry", t0, "500"},
		{"after_second_entry", t0.Add(30 * time.Hour), "300"},
		{"after_all_entries", t0.Add(72 * time.Hour), "0"},
	}
	for _, tc := range testCases {
		s.Run(tc.name, func() {
			balance, err := s.service.BalanceAsOf(s.GetContext(), "stud_1", tc.at)
			s.NoError(err)
			s.True(dec(tc.expected).Equal(balance.Balances["CSLF"]),
				"expected %s got %s", tc.expected, balance.Balances["CSLF"])
			s.NotNil(balance.AsOf)
		})
	}
}

func (s *OverawardServiceSuite) TestRecordOveraward_Validation() {
	testCases := []struct {
		name      string
		studentID string
		request   dto.RecordOverawardRequest
		check     func(error) bool
	}{
		{"zero_amount", "stud_1", dto.RecordOverawardRequest{AwardValueCode: "CSLF", Amount: decimal.Zero}, ierr.IsValidation},
		{"missing_code", "stud_1", dto.RecordOverawardRequest{Amount: dec("10")}, ierr.IsValidation},
		{"sub_cent_amount", "stud_1", dto.RecordOverawardRequest{AwardValueCode: "CSLF", Amount: dec("10.001")}, ierr.IsValidation},
		{"unknown_origin", "stud_1", dto.RecordOverawardRequest{AwardValueCode: "CSLF", Amount: dec("10"), OriginType: "gift"}, ierr.IsValidation},
		{"missing_student_id", "", dto.RecordOverawardRequest{AwardValueCode: "CSLF", Amount: dec("10")}, ierr.IsValidation},
		{"unknown_student", "stud_404", dto.RecordOverawardRequest{AwardValueCode: "CSLF", Amount: dec("10")}, ierr.IsNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.service.RecordOveraward(s.GetContext(), tc.studentID, tc.request)
			s.Error(err)
			s.True(tc.check(err), "unexpected error %v", err)
		})
	}

	entries, err := s.GetStores().OverawardRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Empty(entries)
}

func (s *OverawardServiceSuite) TestListEntries() {
	s.fixtures.ledger("stud_1", "CSLF", "100", types.OverawardOriginAssessmentOveraward, nil)
	s.fixtures.ledger("stud_1", "BCSL", "50", types.OverawardOriginAssessmentOveraward, nil)
	s.fixtures.ledger("stud_2", "CSLF", "70", types.OverawardOriginAssessmentOveraward, nil)

	list, err := s.service.ListEntries(s.GetContext(), &overaward.Filter{StudentID: "stud_1"})
	s.NoError(err)
	s.Equal(2, list.Total)
	s.Equal("CSLF", list.Items[0].AwardValueCode)

	list, err = s.service.ListEntries(s.GetContext(), &overaward.Filter{StudentID: "stud_1", AwardValueCode: "BCSL"})
	s.NoError(err)
	s.Equal(1, list.Total)

	_, err = s.service.ListEntries(s.GetContext(), nil)
	s.True(ierr.IsValidation(err))
}
