package types

import (
	"fmt"
	"strings"
)

// DisbursementStatus tracks a disbursement schedule through the e-Cert lifecycle.
// Status only moves forward: Pending -> ReadyToSend -> Sent, or to Cancelled /
// Rejected from any state before Sent.
type DisbursementStatus string

const (
	DisbursementStatusPending     DisbursementStatus = "pending"
	DisbursementStatusReadyToSend DisbursementStatus = "ready_to_send"
	DisbursementStatusSent        DisbursementStatus = "sent"
	DisbursementStatusCancelled   DisbursementStatus = "cancelled"
	DisbursementStatusRejected    DisbursementStatus = "rejected"
)

var disbursementTransitions = map[DisbursementStatus][]DisbursementStatus{
	DisbursementStatusPending: {
		DisbursementStatusReadyToSend,
		DisbursementStatusCancelled,
		DisbursementStatusRejected,
	},
	DisbursementStatusReadyToSend: {
		DisbursementStatusSent,
		DisbursementStatusCancelled,
		DisbursementStatusRejected,
	},
}

// CanTransitionTo reports whether moving from s to next is a forward transition.
func (s DisbursementStatus) CanTransitionTo(next DisbursementStatus) bool {
	for _, allowed := range disbursementTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s DisbursementStatus) Validate() error {
	switch s {
	case DisbursementStatusPending, DisbursementStatusReadyToSend, DisbursementStatusSent,
		DisbursementStatusCancelled, DisbursementStatusRejected:
		return nil
	}
	return fmt.Errorf("invalid disbursement status: %s", s)
}

// OfferingIntensity splits the e-Cert streams; each has its own file layout
// and its own document number sequence.
type OfferingIntensity string

const (
	OfferingIntensityFullTime OfferingIntensity = "full_time"
	OfferingIntensityPartTime OfferingIntensity = "part_time"
)

func (o OfferingIntensity) Validate() error {
	switch o {
	case OfferingIntensityFullTime, OfferingIntensityPartTime:
		return nil
	}
	return fmt.Errorf("invalid offering intensity: %s", o)
}

// Short returns the two letter code used in file names and routes.
func (o OfferingIntensity) Short() string {
	if o == OfferingIntensityPartTime {
		return "PT"
	}
	return "FT"
}

// ParseOfferingIntensity accepts either the stored value or the short code.
func ParseOfferingIntensity(s string) (OfferingIntensity, error) {
	switch strings.ToLower(s) {
	case "ft", string(OfferingIntensityFullTime), "fulltime":
		return OfferingIntensityFullTime, nil
	case "pt", string(OfferingIntensityPartTime), "parttime":
		return OfferingIntensityPartTime, nil
	}
	return "", fmt.Errorf("invalid offering intensity: %s", s)
}

type DisbursementValueType string

const (
	DisbursementValueTypeLoan                 DisbursementValueType = "loan"
	DisbursementValueTypeGrant                DisbursementValueType = "grant"
	DisbursementValueTypeProvincialTotalGrant DisbursementValueType = "provincial_total_grant"
)

func (t DisbursementValueType) Validate() error {
	switch t {
	case DisbursementValueTypeLoan, DisbursementValueTypeGrant, DisbursementValueTypeProvincialTotalGrant:
		return nil
	}
	return fmt.Errorf("invalid disbursement value type: %s", t)
}

// Award codes used by the e-Cert streams.
const (
	AwardCodeCSLF = "CSLF" // Canada student loan, full-time
	AwardCodeCSLP = "CSLP" // Canada student loan, part-time
	AwardCodeBCSL = "BCSL" // BC student loan
	AwardCodeCSGP = "CSGP" // Canada student grant, part-time
	AwardCodeCSGF = "CSGF" // Canada student grant, full-time
	AwardCodeBCAG = "BCAG" // BC access grant
	AwardCodeBCSG = "BCSG" // BC total grant
)
