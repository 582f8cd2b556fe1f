package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/msfaa"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	"github.com/studentaid/disbursement/internal/domain/student"
	"github.com/studentaid/disbursement/internal/testutil"
	"github.com/studentaid/disbursement/internal/types"
)

func newTestParams(b *testutil.BaseServiceTestSuite) ServiceParams {
	stores := b.GetStores()
	return ServiceParams{
		Logger:           b.GetLogger(),
		Config:           b.GetConfig(),
		DB:               b.GetDB(),
		Metrics:          b.GetMetrics(),
		Transport:        b.GetTransport(),
		ErrorTable:       b.GetErrorTable(),
		SequenceRepo:     stores.SequenceRepo,
		DisbursementRepo: stores.DisbursementRepo,
		MSFAARepo:        stores.MSFAARepo,
		StudentRepo:      stores.StudentRepo,
		OverawardRepo:    stores.OverawardRepo,
		FeedbackRepo:     stores.FeedbackRepo,
	}
}

// fixtures seeds consistent students, agreements and disbursements
type fixtures struct {
	ctx    context.Context
	stores testutil.Stores
	today  time.Time
}

func newFixtures(b *testutil.BaseServiceTestSuite) *fixtures {
	now := b.GetNow()
	return &fixtures{
		ctx:    b.GetContext(),
		stores: b.GetStores(),
		today:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixtures) student(id string, mutate ...func(*student.Student)) *student.Student {
	st := &student.Student{
		ID:               id,
		SIN:              "123456789",
		SINStatus:        types.SINStatusValid,
		DisabilityStatus: types.DisabilityStatusNotRequested,
		FirstName:        "Jane",
		LastName:         "Smith",
		BirthDate:        time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC),
		Gender:           "F",
		Email:            "jane.smith@example.com",
		PostalCode:       "V8W 9V1",
		BaseModel:        types.GetDefaultBaseModel(f.ctx),
	}
	for _, m := range mutate {
		m(st)
	}
	if err := f.stores.StudentRepo.Create(f.ctx, st); err != nil {
		panic(err)
	}
	return st
}

func (f *fixtures) msfaa(number, studentID string, intensity types.OfferingIntensity, mutate ...func(*msfaa.Agreement)) *msfaa.Agreement {
	a := &msfaa.Agreement{
		ID:                "msfaa_" + number,
		Number:            number,
		StudentID:         studentID,
		OfferingIntensity: intensity,
		SignedDate:        lo.ToPtr(f.today.AddDate(0, -1, 0)),
		BaseModel:         types.GetDefaultBaseModel(f.ctx),
	}
	for _, m := range mutate {
		m(a)
	}
	if err := f.stores.MSFAARepo.Create(f.ctx, a); err != nil {
		panic(err)
	}
	return a
}

type award struct {
	code      string
	valueType types.DisbursementValueType
	amount    string
}

func loan(code, amount string) award {
	return award{code: code, valueType: types.DisbursementValueTypeLoan, amount: amount}
}

func grant(code, amount string) award {
	return award{code: code, valueType: types.DisbursementValueTypeGrant, amount: amount}
}

func (f *fixtures) newDisbursement(id, studentID, msfaaNumber string, intensity types.OfferingIntensity, scheduled time.Time, awards ...award) *disbursement.Disbursement {
	d := &disbursement.Disbursement{
		ID:                id,
		ApplicationID:     "app_" + studentID,
		AssessmentID:      "asmt_" + studentID,
		StudentID:         studentID,
		MSFAANumber:       msfaaNumber,
		OfferingIntensity: intensity,
		ScheduledDate:     scheduled,
		Status:            types.DisbursementStatusPending,
		BaseModel:         types.GetDefaultBaseModel(f.ctx),
	}
	for i, a := range awards {
		d.Values = append(d.Values, &disbursement.Value{
			ID:                          id + "_v" + string(rune('a'+i)),
			DisbursementID:              id,
			ValueType:                   a.valueType,
			ValueCode:                   a.code,
			ValueAmount:                 decimal.RequireFromString(a.amount),
			DisbursedAmountSubtracted:   decimal.Zero,
			OverawardAmountSubtracted:   decimal.Zero,
			RestrictionAmountSubtracted: decimal.Zero,
			EffectiveAmount:             decimal.Zero,
		})
	}
	return d
}

func (f *fixtures) disbursement(id, studentID, msfaaNumber string, intensity types.OfferingIntensity, scheduled time.Time, awards ...award) *disbursement.Disbursement {
	d := f.newDisbursement(id, studentID, msfaaNumber, intensity, scheduled, awards...)
	if err := f.stores.DisbursementRepo.Create(f.ctx, d); err != nil {
		panic(err)
	}
	return d
}

// sent stores a disbursement already certified with documentNumber
func (f *fixtures) sent(id, studentID string, intensity types.OfferingIntensity, documentNumber int64, awards ...award) *disbursement.Disbursement {
	d := f.newDisbursement(id, studentID, "", intensity, f.today.AddDate(0, 0, -10), awards...)
	d.Status = types.DisbursementStatusSent
	d.DocumentNumber = lo.ToPtr(documentNumber)
	d.FileName = lo.ToPtr("PBC.EDU.FTECERTS.PREVIOUS")
	d.SentAt = lo.ToPtr(f.today.AddDate(0, 0, -10))
	for _, v := range d.Values {
		v.EffectiveAmount = v.ValueAmount
	}
	if err := f.stores.DisbursementRepo.Create(f.ctx, d); err != nil {
		panic(err)
	}
	return d
}

func (f *fixtures) ledger(studentID, code, amount string, origin types.OverawardOriginType, disbursementID *string) {
	err := f.stores.OverawardRepo.Create(f.ctx, &overaward.LedgerEntry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OVERAWARD),
		StudentID:      studentID,
		DisbursementID: disbursementID,
		AwardValueCode: code,
		Amount:         decimal.RequireFromString(amount),
		OriginType:     origin,
		CreatedAt:      time.Now().UTC(),
		CreatedBy:      types.DefaultUserID,
	})
	if err != nil {
		panic(err)
	}
}

func (f *fixtures) restriction(id, studentID string, actions []types.RestrictionActionType, codes ...string) {
	err := f.stores.StudentRepo.CreateRestriction(f.ctx, &student.Restriction{
		ID:                 id,
		StudentID:          studentID,
		Code:               "R" + id,
		ActionTypes:        actions,
		AffectedValueCodes: codes,
		Active:             true,
		BaseModel:          types.GetDefaultBaseModel(f.ctx),
	})
	if err != nil {
		panic(err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
