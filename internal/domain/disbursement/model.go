package disbursement

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/types"
)

// Disbursement is one scheduled payment of an assessment
type Disbursement struct {
	ID                      string                   `db:"id" json:"id"`
	ApplicationID           string                   `db:"application_id" json:"application_id"`
	AssessmentID            string                   `db:"assessment_id" json:"assessment_id"`
	StudentID               string                   `db:"student_id" json:"student_id"`
	MSFAANumber             string                   `db:"msfaa_number" json:"msfaa_number"`
	OfferingIntensity       types.OfferingIntensity  `db:"offering_intensity" json:"offering_intensity"`
	DocumentNumber          *int64                   `db:"document_number" json:"document_number,omitempty"`
	ScheduledDate           time.Time                `db:"scheduled_date" json:"scheduled_date"`
	Status                  types.DisbursementStatus `db:"status" json:"status"`
	DisabilityFundingIntent bool                     `db:"disability_funding_intent" json:"disability_funding_intent"`
	FileName                *string                  `db:"file_name" json:"file_name,omitempty"`
	SentAt                  *time.Time               `db:"sent_at" json:"sent_at,omitempty"`
	FundingBlockedAt        *time.Time               `db:"funding_blocked_at" json:"funding_blocked_at,omitempty"`
	Values                  []*Value                 `db:"-" json:"values"`
	types.BaseModel
}

// Value is one award line of a disbursement. The three subtractions are
// recorded for audit, the certified amount is what remains of ValueAmount.
type Value struct {
	ID                          string                      `db:"id" json:"id"`
	DisbursementID              string                      `db:"disbursement_id" json:"disbursement_id"`
	ValueType                   types.DisbursementValueType `db:"value_type" json:"value_type"`
	ValueCode                   string                      `db:"value_code" json:"value_code"`
	ValueAmount                 decimal.Decimal             `db:"value_amount" json:"value_amount"`
	DisbursedAmountSubtracted   decimal.Decimal             `db:"disbursed_amount_subtracted" json:"disbursed_amount_subtracted"`
	OverawardAmountSubtracted   decimal.Decimal             `db:"overaward_amount_subtracted" json:"overaward_amount_subtracted"`
	RestrictionAmountSubtracted decimal.Decimal             `db:"restriction_amount_subtracted" json:"restriction_amount_subtracted"`
	EffectiveAmount             decimal.Decimal             `db:"effective_amount" json:"effective_amount"`
}

// NetAmount is the gross amount minus every recorded subtraction, never
// below zero
func (v *Value) NetAmount() decimal.Decimal {
	net := v.ValueAmount.
		Sub(v.DisbursedAmountSubtracted).
		Sub(v.OverawardAmountSubtracted).
		Sub(v.RestrictionAmountSubtracted)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Copy returns a detached copy so evaluations never mutate stored rows
func (v *Value) Copy() *Value {
	c := *v
	return &c
}

func (d *Disbursement) IsSent() bool {
	return d.Status == types.DisbursementStatusSent
}

// TotalNet sums the certified amount of every value line
func (d *Disbursement) TotalNet() decimal.Decimal {
	return lo.Reduce(d.Values, func(acc decimal.Decimal, v *Value, _ int) decimal.Decimal {
		return acc.Add(v.NetAmount())
	}, decimal.Zero)
}

// TotalGross sums the gross amount of every value line
func (d *Disbursement) TotalGross() decimal.Decimal {
	return lo.Reduce(d.Values, func(acc decimal.Decimal, v *Value, _ int) decimal.Decimal {
		return acc.Add(v.ValueAmount)
	}, decimal.Zero)
}

// ValueByCode returns the first value line carrying code
func (d *Disbursement) ValueByCode(code string) (*Value, bool) {
	return lo.Find(d.Values, func(v *Value) bool { return v.ValueCode == code })
}
