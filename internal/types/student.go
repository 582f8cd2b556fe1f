package types

// SINStatus is the outcome of the SIN validation with the federal system.
type SINStatus string

const (
	SINStatusPending SINStatus = "pending"
	SINStatusValid   SINStatus = "valid"
	SINStatusInvalid SINStatus = "invalid"
)

// DisabilityStatus is the permanent disability status of a student.
type DisabilityStatus string

const (
	DisabilityStatusNotRequested DisabilityStatus = "not_requested"
	DisabilityStatusRequested    DisabilityStatus = "requested"
	DisabilityStatusPD           DisabilityStatus = "pd"
	DisabilityStatusPPD          DisabilityStatus = "ppd"
	DisabilityStatusDeclined     DisabilityStatus = "declined"
)

// IsVerified is true only once the disability was confirmed, PD or PPD.
func (s DisabilityStatus) IsVerified() bool {
	return s == DisabilityStatusPD || s == DisabilityStatusPPD
}

type RestrictionActionType string

const (
	RestrictionActionStopFullTimeDisbursement   RestrictionActionType = "stop_full_time_disbursement"
	RestrictionActionStopPartTimeDisbursement   RestrictionActionType = "stop_part_time_disbursement"
	RestrictionActionStopFullTimePartialFunding RestrictionActionType = "stop_full_time_partial_funding"
	RestrictionActionStopPartTimePartialFunding RestrictionActionType = "stop_part_time_partial_funding"
)

// StopDisbursementAction returns the action that blocks a whole disbursement
// for the given offering intensity.
func StopDisbursementAction(intensity OfferingIntensity) RestrictionActionType {
	if intensity == OfferingIntensityPartTime {
		return RestrictionActionStopPartTimeDisbursement
	}
	return RestrictionActionStopFullTimeDisbursement
}

// PartialFundingAction returns the action that withholds selected award codes
// for the given offering intensity.
func PartialFundingAction(intensity OfferingIntensity) RestrictionActionType {
	if intensity == OfferingIntensityPartTime {
		return RestrictionActionStopPartTimePartialFunding
	}
	return RestrictionActionStopFullTimePartialFunding
}
