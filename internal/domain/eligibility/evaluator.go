// Package eligibility decides whether a disbursement can be certified and
// computes the amounts withheld from each award line.
package eligibility

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/msfaa"
	"github.com/studentaid/disbursement/internal/domain/student"
	"github.com/studentaid/disbursement/internal/types"
)

// Context is the financial history a disbursement is evaluated against.
// Nil maps are treated as empty.
type Context struct {
	Student *student.Student
	// MSFAA is nil when the referenced agreement does not exist
	MSFAA        *msfaa.Agreement
	Restrictions []*student.Restriction
	// OverawardBalance is the outstanding ledger sum per award code
	OverawardBalance map[string]decimal.Decimal
	// PreviouslyDisbursed is what earlier assessments of the same
	// application already paid per award code
	PreviouslyDisbursed map[string]decimal.Decimal
	// LifetimeDisbursed is the certified total per award code for the intensity
	LifetimeDisbursed map[string]decimal.Decimal
	// LifetimeMaximums caps part-time loans per award code
	LifetimeMaximums map[string]decimal.Decimal
	Now              time.Time
}

// Result of an evaluation. Values always carry the computed deductions, even
// when the disbursement is not eligible, so callers can report them.
type Result struct {
	Eligible        bool
	BlockingReasons []types.EligibilityErrorKind
	Values          []*disbursement.Value
}

// HasReason reports whether kind is one of the blocking reasons
func (r *Result) HasReason(kind types.EligibilityErrorKind) bool {
	return lo.Contains(r.BlockingReasons, kind)
}

// TotalNet sums the certified amount of the evaluated values
func (r *Result) TotalNet() decimal.Decimal {
	return lo.Reduce(r.Values, func(acc decimal.Decimal, v *disbursement.Value, _ int) decimal.Decimal {
		return acc.Add(v.NetAmount())
	}, decimal.Zero)
}

// Evaluate runs every check and collects each failing reason.
func Evaluate(d *disbursement.Disbursement, c *Context) *Result {
	var reasons []types.EligibilityErrorKind

	if c.Student == nil || c.Student.SINStatus != types.SINStatusValid {
		reasons = append(reasons, types.EligibilitySINNotValidated)
	}

	if reason, ok := checkMSFAA(d, c); !ok {
		reasons = append(reasons, reason)
	}

	if d.DisabilityFundingIntent && (c.Student == nil || !c.Student.DisabilityStatus.IsVerified()) {
		reasons = append(reasons, types.EligibilityDisabilityNotVerified)
	}

	stop := types.StopDisbursementAction(d.OfferingIntensity)
	if lo.ContainsBy(c.Restrictions, func(r *student.Restriction) bool { return r.Active && r.HasAction(stop) }) {
		reasons = append(reasons, types.EligibilityStopDisbursementRestrict)
	}

	values := ApplyDeductions(d, c)
	if exceedsLifetimeMaximum(d, values, c) {
		reasons = append(reasons, types.EligibilityLifetimeMaximumExceeded)
	}

	net := lo.Reduce(values, func(acc decimal.Decimal, v *disbursement.Value, _ int) decimal.Decimal {
		return acc.Add(v.NetAmount())
	}, decimal.Zero)
	if !net.IsPositive() {
		reasons = append(reasons, types.EligibilityNoEstimatedAwardAmounts)
	}

	return &Result{
		Eligible:        len(reasons) == 0,
		BlockingReasons: reasons,
		Values:          values,
	}
}

func checkMSFAA(d *disbursement.Disbursement, c *Context) (types.EligibilityErrorKind, bool) {
	a := c.MSFAA
	if a == nil || a.OfferingIntensity != d.OfferingIntensity {
		return types.EligibilityMSFAANotFound, false
	}
	if a.IsCancelled(c.Now) {
		return types.EligibilityMSFAACancelled, false
	}
	if !a.IsSigned() {
		return types.EligibilityMSFAANotSigned, false
	}
	return "", true
}

// exceedsLifetimeMaximum applies to part-time loans only. The amount after
// deductions must keep the lifetime total strictly under the maximum.
func exceedsLifetimeMaximum(d *disbursement.Disbursement, values []*disbursement.Value, c *Context) bool {
	if d.OfferingIntensity != types.OfferingIntensityPartTime {
		return false
	}
	for _, v := range values {
		if v.ValueType != types.DisbursementValueTypeLoan {
			continue
		}
		maximum, ok := c.LifetimeMaximums[v.ValueCode]
		if !ok {
			continue
		}
		if !c.LifetimeDisbursed[v.ValueCode].Add(v.EffectiveAmount).LessThan(maximum) {
			return true
		}
	}
	return false
}

// ApplyDeductions returns copies of the value lines with, in order, the
// previously disbursed amount, the overaward balance and any partial funding
// restriction subtracted. Each subtraction is capped at what remains.
func ApplyDeductions(d *disbursement.Disbursement, c *Context) []*disbursement.Value {
	partial := types.PartialFundingAction(d.OfferingIntensity)
	withholding := lo.Filter(c.Restrictions, func(r *student.Restriction, _ int) bool {
		return r.Active && r.HasAction(partial)
	})

	return lo.Map(d.Values, func(orig *disbursement.Value, _ int) *disbursement.Value {
		v := orig.Copy()
		remaining := v.ValueAmount
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		v.DisbursedAmountSubtracted = capAt(c.PreviouslyDisbursed[v.ValueCode], remaining)
		remaining = remaining.Sub(v.DisbursedAmountSubtracted)

		v.OverawardAmountSubtracted = capAt(c.OverawardBalance[v.ValueCode], remaining)
		remaining = remaining.Sub(v.OverawardAmountSubtracted)

		v.RestrictionAmountSubtracted = decimal.Zero
		if lo.ContainsBy(withholding, func(r *student.Restriction) bool { return r.Affects(v.ValueCode) }) {
			v.RestrictionAmountSubtracted = remaining
			remaining = decimal.Zero
		}

		v.EffectiveAmount = remaining
		return v
	})
}

// capAt clamps amount to [0, limit]
func capAt(amount, limit decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(amount, limit)
}
