package models

import (
	"github.com/robfig/cron/v3"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

// ValidateCronSchedule checks a standard five field cron expression before it
// is handed to the Temporal schedule
func ValidateCronSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return ierr.WithError(err).
			WithHintf("Invalid cron schedule %q", expr).
			Mark(ierr.ErrValidation)
	}
	return nil
}
