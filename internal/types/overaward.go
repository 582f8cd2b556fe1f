package types

import "fmt"

type OverawardOriginType string

const (
	OverawardOriginManualDeduction     OverawardOriginType = "manual_deduction"
	OverawardOriginAssessmentOveraward OverawardOriginType = "assessment_overaward"
	OverawardOriginReversal            OverawardOriginType = "reversal"
	// OverawardOriginAwardDeducted is posted when a certified disbursement
	// consumed part of the outstanding balance.
	OverawardOriginAwardDeducted OverawardOriginType = "award_deducted"
)

func (o OverawardOriginType) Validate() error {
	switch o {
	case OverawardOriginManualDeduction, OverawardOriginAssessmentOveraward,
		OverawardOriginReversal, OverawardOriginAwardDeducted:
		return nil
	}
	return fmt.Errorf("invalid overaward origin type: %s", o)
}
