package types

// EligibilityErrorKind is a reason a disbursement cannot be certified yet.
type EligibilityErrorKind string

const (
	EligibilitySINNotValidated          EligibilityErrorKind = "sin_not_validated"
	EligibilityMSFAANotFound            EligibilityErrorKind = "msfaa_not_found"
	EligibilityMSFAANotSigned           EligibilityErrorKind = "msfaa_not_signed"
	EligibilityMSFAACancelled           EligibilityErrorKind = "msfaa_cancelled"
	EligibilityDisabilityNotVerified    EligibilityErrorKind = "disability_not_verified"
	EligibilityStopDisbursementRestrict EligibilityErrorKind = "stop_disbursement_restriction"
	EligibilityLifetimeMaximumExceeded  EligibilityErrorKind = "lifetime_maximum_exceeded"
	EligibilityNoEstimatedAwardAmounts  EligibilityErrorKind = "no_estimated_award_amounts"
)
