package types

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// TemporalWorkflowType represents the type of workflow
type TemporalWorkflowType string

const (
	TemporalECertGenerationWorkflow TemporalWorkflowType = "ECertGenerationWorkflow"
	TemporalECertFeedbackWorkflow   TemporalWorkflowType = "ECertFeedbackWorkflow"
)

// String returns the string representation of the workflow type
func (w TemporalWorkflowType) String() string {
	return string(w)
}

// Validate validates the workflow type
func (w TemporalWorkflowType) Validate() error {
	allowedWorkflows := []TemporalWorkflowType{
		TemporalECertGenerationWorkflow,
		TemporalECertFeedbackWorkflow,
	}
	if lo.Contains(allowedWorkflows, w) {
		return nil
	}

	return ierr.NewError("invalid workflow type").
		WithHint(fmt.Sprintf("Workflow type must be one of: %s", strings.Join(lo.Map(allowedWorkflows, func(w TemporalWorkflowType, _ int) string { return string(w) }), ", "))).
		Mark(ierr.ErrValidation)
}

// WorkflowID returns the workflow ID for one stream of the workflow. Using a
// stable id keeps a second run of the same stream from starting while the
// first is still open.
func (w TemporalWorkflowType) WorkflowID(intensity OfferingIntensity) string {
	return string(w) + "-" + strings.ToLower(intensity.Short())
}

// ScheduleID names the cron schedule of one stream of the workflow
func (w TemporalWorkflowType) ScheduleID(intensity OfferingIntensity) string {
	return "schedule-" + w.WorkflowID(intensity)
}
