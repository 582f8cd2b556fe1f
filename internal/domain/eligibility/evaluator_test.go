package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/msfaa"
	"github.com/studentaid/disbursement/internal/domain/student"
	"github.com/studentaid/disbursement/internal/types"
)

var evalNow = time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newDisbursement(intensity types.OfferingIntensity, values ...*disbursement.Value) *disbursement.Disbursement {
	return &disbursement.Disbursement{
		ID:                "disb_1",
		ApplicationID:     "app_1",
		AssessmentID:      "asmt_1",
		StudentID:         "stud_1",
		MSFAANumber:       "1000000001",
		OfferingIntensity: intensity,
		ScheduledDate:     evalNow,
		Status:            types.DisbursementStatusPending,
		Values:            values,
	}
}

func loan(code, amount string) *disbursement.Value {
	return &disbursement.Value{ValueType: types.DisbursementValueTypeLoan, ValueCode: code, ValueAmount: dec(amount)}
}

func grant(code, amount string) *disbursement.Value {
	return &disbursement.Value{ValueType: types.DisbursementValueTypeGrant, ValueCode: code, ValueAmount: dec(amount)}
}

func eligibleContext(intensity types.OfferingIntensity) *Context {
	signed := evalNow.AddDate(-1, 0, 0)
	return &Context{
		Student: &student.Student{
			ID:               "stud_1",
			SINStatus:        types.SINStatusValid,
			DisabilityStatus: types.DisabilityStatusNotRequested,
		},
		MSFAA: &msfaa.Agreement{
			Number:            "1000000001",
			StudentID:         "stud_1",
			OfferingIntensity: intensity,
			SignedDate:        &signed,
		},
		Now: evalNow,
	}
}

func TestEvaluate_HappyPath(t *testing.T) {
	d := newDisbursement(types.OfferingIntensityFullTime, loan(types.AwardCodeCSLF, "5000.00"))

	result := Evaluate(d, eligibleContext(types.OfferingIntensityFullTime))

	assert.True(t, result.Eligible)
	assert.Empty(t, result.BlockingReasons)
	require.Len(t, result.Values, 1)
	assert.True(t, result.Values[0].EffectiveAmount.Equal(dec("5000.00")))
	assert.True(t, result.TotalNet().Equal(dec("5000")))
	assert.True(t, d.Values[0].EffectiveAmount.IsZero(), "stored values are not mutated")
}

func TestEvaluate_CappedOverawardDeduction(t *testing.T) {
	d := newDisbursement(types.OfferingIntensityFullTime, loan(types.AwardCodeCSLF, "300.00"))
	c := eligibleContext(types.OfferingIntensityFullTime)
	c.OverawardBalance = map[string]decimal.Decimal{types.AwardCodeCSLF: dec("500.00")}

	result := Evaluate(d, c)

	assert.False(t, result.Eligible)
	assert.Equal(t, []types.EligibilityErrorKind{types.EligibilityNoEstimatedAwardAmounts}, result.BlockingReasons)
	v := result.Values[0]
	assert.True(t, v.OverawardAmountSubtracted.Equal(dec("300.00")))
	assert.True(t, v.NetAmount().IsZero())
}

func TestEvaluate_NegativeValueDoesNotReduceTotal(t *testing.T) {
	d := newDisbursement(types.OfferingIntensityFullTime,
		loan(types.AwardCodeCSLF, "100"),
		grant(types.AwardCodeCSGF, "-250"))

	result := Evaluate(d, eligibleContext(types.OfferingIntensityFullTime))

	assert.True(t, result.Eligible)
	assert.True(t, result.TotalNet().Equal(dec("100")))
	assert.True(t, result.Values[1].NetAmount().IsZero())
	assert.True(t, result.Values[1].EffectiveAmount.IsZero())
}

func TestEvaluate_CollectsEveryReason(t *testing.T) {
	d := newDisbursement(types.OfferingIntensityFullTime, loan(types.AwardCodeCSLF, "1000"))
	c := eligibleContext(types.OfferingIntensityFullTime)
	c.Student.SINStatus = types.SINStatusInvalid
	c.Restrictions = []*student.Restriction{{
		ID:          "restr_1",
		Active:      true,
		ActionTypes: []types.RestrictionActionType{types.RestrictionActionStopFullTimeDisbursement},
	}}

	result := Evaluate(d, c)

	assert.False(t, result.Eligible)
	assert.ElementsMatch(t, []types.EligibilityErrorKind{
		types.EligibilitySINNotValidated,
		types.EligibilityStopDisbursementRestrict,
	}, result.BlockingReasons)
}

func TestEvaluate_IndividualChecks(t *testing.T) {
	cancelled := evalNow.AddDate(0, -1, 0)
	future := evalNow.AddDate(0, 1, 0)

	tests := []struct {
		name      string
		intensity types.OfferingIntensity
		mutate    func(d *disbursement.Disbursement, c *Context)
		expected  []types.EligibilityErrorKind
	}{
		{
			name:      "pending SIN",
			intensity: types.OfferingIntensityFullTime,
			mutate:    func(_ *disbursement.Disbursement, c *Context) { c.Student.SINStatus = types.SINStatusPending },
			expected:  []types.EligibilityErrorKind{types.EligibilitySINNotValidated},
		},
		{
			name:      "missing MSFAA",
			intensity: types.OfferingIntensityFullTime,
			mutate:    func(_ *disbursement.Disbursement, c *Context) { c.MSFAA = nil },
			expected:  []types.EligibilityErrorKind{types.EligibilityMSFAANotFound},
		},
		{
			name:      "MSFAA of the other intensity",
			intensity: types.OfferingIntensityFullTime,
			mutate: func(_ *disbursement.Disbursement, c *Context) {
				c.MSFAA.OfferingIntensity = types.OfferingIntensityPartTime
			},
			expected: []types.EligibilityErrorKind{types.EligibilityMSFAANotFound},
		},
		{
			name:      "unsigned MSFAA",
			intensity: types.OfferingIntensityFullTime,
			mutate:    func(_ *disbursement.Disbursement, c *Context) { c.MSFAA.SignedDate = nil },
			expected:  []types.EligibilityErrorKind{types.EligibilityMSFAANotSigned},
		},
		{
			name:      "cancelled MSFAA",
			intensity: types.OfferingIntensityFullTime,
			mutate:    func(_ *disbursement.Disbursement, c *Context) { c.MSFAA.CancelledDate = &cancelled },
			expected:  []types.EligibilityErrorKind{types.EligibilityMSFAACancelled},
		},
		{
			name:      "MSFAA cancelled in the future is still valid",
			intensity: types.OfferingIntensityFullTime,
			mutate:    func(_ *disbursement.Disbursement, c *Context) { c.MSFAA.CancelledDate = &future },
		},
		{
			name:      "disability intent without verified status",
			intensity: types.OfferingIntensityFullTime,
			mutate: func(d *disbursement.Disbursement, c *Context) {
				d.DisabilityFundingIntent = true
				c.Student.DisabilityStatus = types.DisabilityStatusRequested
			},
			expected: []types.EligibilityErrorKind{types.EligibilityDisabilityNotVerified},
		},
		{
			name:      "disability intent with PPD status",
			intensity: types.OfferingIntensityFullTime,
			mutate: func(d *disbursement.Disbursement, c *Context) {
				d.DisabilityFundingIntent = true
				c.Student.DisabilityStatus = types.DisabilityStatusPPD
			},
		},
		{
			name:      "stop restriction for the other intensity is ignored",
			intensity: types.OfferingIntensityFullTime,
			mutate: func(_ *disbursement.Disbursement, c *Context) {
				c.Restrictions = []*student.Restriction{{
					Active:      true,
					ActionTypes: []types.RestrictionActionType{types.RestrictionActionStopPartTimeDisbursement},
				}}
			},
		},
		{
			name:      "inactive stop restriction is ignored",
			intensity: types.OfferingIntensityFullTime,
			mutate: func(_ *disbursement.Disbursement, c *Context) {
				c.Restrictions = []*student.Restriction{{
					Active:      false,
					ActionTypes: []types.RestrictionActionType{types.RestrictionActionStopFullTimeDisbursement},
				}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDisbursement(tt.intensity, loan(types.AwardCodeCSLF, "1000"))
			c := eligibleContext(tt.intensity)
			tt.mutate(d, c)

			result := Evaluate(d, c)

			assert.Equal(t, len(tt.expected) == 0, result.Eligible)
			assert.ElementsMatch(t, tt.expected, result.BlockingReasons)
		})
	}
}

func TestEvaluate_PartTimeLifetimeMaximum(t *testing.T) {
	tests := []struct {
		name      string
		disbursed string
		amount    string
		eligible  bool
	}{
		{name: "under the maximum", disbursed: "8000", amount: "1000", eligible: true},
		{name: "just under the maximum", disbursed: "8000", amount: "1999.99", eligible: true},
		{name: "reaching the maximum exactly", disbursed: "8000", amount: "2000", eligible: false},
		{name: "over the maximum", disbursed: "8000", amount: "2000.01", eligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDisbursement(types.OfferingIntensityPartTime, loan(types.AwardCodeCSLP, tt.amount))
			c := eligibleContext(types.OfferingIntensityPartTime)
			c.LifetimeDisbursed = map[string]decimal.Decimal{types.AwardCodeCSLP: dec(tt.disbursed)}
			c.LifetimeMaximums = map[string]decimal.Decimal{types.AwardCodeCSLP: dec("10000")}

			result := Evaluate(d, c)

			assert.Equal(t, tt.eligible, result.Eligible)
			assert.Equal(t, !tt.eligible, result.HasReason(types.EligibilityLifetimeMaximumExceeded))
		})
	}

	t.Run("amount after overaward deduction counts", func(t *testing.T) {
		c := eligibleContext(types.OfferingIntensityPartTime)
		c.LifetimeDisbursed = map[string]decimal.Decimal{types.AwardCodeCSLP: dec("9500")}
		c.LifetimeMaximums = map[string]decimal.Decimal{types.AwardCodeCSLP: dec("10000")}
		c.OverawardBalance = map[string]decimal.Decimal{types.AwardCodeCSLP: dec("200")}
		d := newDisbursement(types.OfferingIntensityPartTime, loan(types.AwardCodeCSLP, "600"))

		result := Evaluate(d, c)
		assert.True(t, result.Eligible)
		assert.True(t, dec("400").Equal(result.TotalNet()))
	})

	t.Run("grants and full-time loans are not capped", func(t *testing.T) {
		c := eligibleContext(types.OfferingIntensityPartTime)
		c.LifetimeDisbursed = map[string]decimal.Decimal{types.AwardCodeCSGP: dec("50000")}
		c.LifetimeMaximums = map[string]decimal.Decimal{types.AwardCodeCSGP: dec("10000")}
		d := newDisbursement(types.OfferingIntensityPartTime, grant(types.AwardCodeCSGP, "1000"))
		assert.True(t, Evaluate(d, c).Eligible)
	})
}

func TestApplyDeductions_Order(t *testing.T) {
	d := newDisbursement(types.OfferingIntensityFullTime,
		loan(types.AwardCodeCSLF, "1000"),
		loan(types.AwardCodeBCSL, "800"),
		grant(types.AwardCodeCSGF, "400"),
	)
	c := eligibleContext(types.OfferingIntensityFullTime)
	c.PreviouslyDisbursed = map[string]decimal.Decimal{types.AwardCodeCSLF: dec("250")}
	c.OverawardBalance = map[string]decimal.Decimal{
		types.AwardCodeCSLF: dec("100"),
		types.AwardCodeBCSL: dec("-50"),
	}
	c.Restrictions = []*student.Restriction{{
		Active:             true,
		ActionTypes:        []types.RestrictionActionType{types.RestrictionActionStopFullTimePartialFunding},
		AffectedValueCodes: []string{types.AwardCodeBCSL},
	}}

	values := ApplyDeductions(d, c)
	require.Len(t, values, 3)

	cslf := values[0]
	assert.True(t, cslf.DisbursedAmountSubtracted.Equal(dec("250")))
	assert.True(t, cslf.OverawardAmountSubtracted.Equal(dec("100")))
	assert.True(t, cslf.RestrictionAmountSubtracted.IsZero())
	assert.True(t, cslf.EffectiveAmount.Equal(dec("650")))

	bcsl := values[1]
	assert.True(t, bcsl.OverawardAmountSubtracted.IsZero(), "credit balances are not deducted")
	assert.True(t, bcsl.RestrictionAmountSubtracted.Equal(dec("800")))
	assert.True(t, bcsl.EffectiveAmount.IsZero())

	csgf := values[2]
	assert.True(t, csgf.EffectiveAmount.Equal(dec("400")))

	result := Evaluate(d, c)
	assert.True(t, result.Eligible)
	assert.True(t, result.TotalNet().Equal(dec("1050")))
}

func TestApplyDeductions_NeverNegative(t *testing.T) {
	amounts := []string{"0", "0.01", "100", "300", "5000"}
	for _, gross := range amounts {
		for _, disbursed := range amounts {
			for _, overaward := range amounts {
				for _, restricted := range []bool{false, true} {
					d := newDisbursement(types.OfferingIntensityFullTime, loan(types.AwardCodeCSLF, gross))
					c := eligibleContext(types.OfferingIntensityFullTime)
					c.PreviouslyDisbursed = map[string]decimal.Decimal{types.AwardCodeCSLF: dec(disbursed)}
					c.OverawardBalance = map[string]decimal.Decimal{types.AwardCodeCSLF: dec(overaward)}
					if restricted {
						c.Restrictions = []*student.Restriction{{
							Active:             true,
							ActionTypes:        []types.RestrictionActionType{types.RestrictionActionStopFullTimePartialFunding},
							AffectedValueCodes: []string{types.AwardCodeCSLF},
						}}
					}

					v := ApplyDeductions(d, c)[0]
					assert.False(t, v.NetAmount().IsNegative(), "gross %s disbursed %s overaward %s", gross, disbursed, overaward)
					assert.True(t, v.NetAmount().Equal(v.EffectiveAmount))
					assert.False(t, v.DisbursedAmountSubtracted.GreaterThan(v.ValueAmount))
					assert.False(t, v.OverawardAmountSubtracted.GreaterThan(v.ValueAmount))
					assert.False(t, v.RestrictionAmountSubtracted.GreaterThan(v.ValueAmount))
				}
			}
		}
	}
}
