package models

import (
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/api/dto"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/types"
)

// ECertWorkflowInput selects the e-Cert stream a workflow works on
type ECertWorkflowInput struct {
	OfferingIntensity types.OfferingIntensity `json:"offering_intensity"`
}

func (i ECertWorkflowInput) Validate() error {
	if err := i.OfferingIntensity.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Offering intensity must be full_time or part_time").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ECertGenerationWorkflowResult summarises one generation run
type ECertGenerationWorkflowResult struct {
	RunID              string          `json:"run_id"`
	FileName           string          `json:"file_name,omitempty"`
	RecordCount        int             `json:"record_count"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	BlockedCount       int             `json:"blocked_count"`
	EncodingErrorCount int             `json:"encoding_error_count"`
}

func NewECertGenerationWorkflowResult(r *dto.GenerateECertResult) *ECertGenerationWorkflowResult {
	return &ECertGenerationWorkflowResult{
		RunID:              r.RunID,
		FileName:           r.FileName,
		RecordCount:        r.RecordCount,
		TotalAmount:        r.TotalAmount,
		BlockedCount:       len(r.Blocked),
		EncodingErrorCount: len(r.EncodingErrors),
	}
}

// ECertFeedbackWorkflowResult summarises every response file processed in a run
type ECertFeedbackWorkflowResult struct {
	Files          []string `json:"files"`
	MatchedCount   int      `json:"matched_count"`
	UnmatchedCount int      `json:"unmatched_count"`
	NewEntryCount  int      `json:"new_entry_count"`
	BlockedCount   int      `json:"blocked_count"`
	DecodingErrors int      `json:"decoding_errors"`
	Warnings       int      `json:"warnings"`
}

func NewECertFeedbackWorkflowResult(r *dto.ProcessResponsesResult) *ECertFeedbackWorkflowResult {
	out := &ECertFeedbackWorkflowResult{Files: []string{}}
	for _, f := range r.Files {
		out.Files = append(out.Files, f.FileName)
		out.MatchedCount += f.MatchedCount
		out.UnmatchedCount += f.UnmatchedCount
		out.NewEntryCount += f.NewEntryCount
		out.BlockedCount += f.BlockedCount
		out.DecodingErrors += len(f.DecodingErrors)
		out.Warnings += len(f.Warnings)
	}
	return out
}
