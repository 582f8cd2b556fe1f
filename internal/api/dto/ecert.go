package dto

import (
	"github.com/shopspring/decimal"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	"github.com/studentaid/disbursement/internal/types"
)

// BlockedDisbursement is a candidate left pending by the eligibility checks
type BlockedDisbursement struct {
	DisbursementID string                       `json:"disbursement_id"`
	Reasons        []types.EligibilityErrorKind `json:"reasons"`
}

// RecordError is a disbursement skipped because its record could not be
// encoded. No document number is allocated for it.
type RecordError struct {
	DisbursementID string `json:"disbursement_id"`
	Error          string `json:"error"`
}

// GenerateECertResult summarises one certificate generation run
type GenerateECertResult struct {
	RunID                   string                  `json:"run_id"`
	OfferingIntensity       types.OfferingIntensity `json:"offering_intensity"`
	FileName                string                  `json:"file_name,omitempty"`
	FileSequence            int64                   `json:"file_sequence,omitempty"`
	RecordCount             int                     `json:"record_count"`
	TotalAmount             decimal.Decimal         `json:"total_amount"`
	IncludedDisbursementIDs []string                `json:"included_disbursement_ids"`
	Blocked                 []BlockedDisbursement   `json:"blocked,omitempty"`
	EncodingErrors          []RecordError           `json:"encoding_errors,omitempty"`
	// Content is the generated file, empty when nothing was sent
	Content string `json:"-"`
}

// LineErrorSummary is an inbound line that could not be processed
type LineErrorSummary struct {
	LineNumber int    `json:"line_number"`
	Error      string `json:"error"`
}

// ProcessFeedbackResult summarises one response file
type ProcessFeedbackResult struct {
	FileName                 string  `json:"file_name"`
	MatchedCount             int     `json:"matched_count"`
	UnmatchedCount           int     `json:"unmatched_count"`
	UnmatchedDocumentNumbers []int64 `json:"unmatched_document_numbers,omitempty"`
	// Entries are every feedback entry the file reports, already stored or not
	Entries []*feedback.Entry `json:"entries"`
	// NewEntryCount counts the entries stored by this run
	NewEntryCount  int                `json:"new_entry_count"`
	BlockedCount   int                `json:"blocked_count"`
	DecodingErrors []LineErrorSummary `json:"decoding_errors,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}

// ProcessResponsesResult summarises every response file read in one run
type ProcessResponsesResult struct {
	OfferingIntensity types.OfferingIntensity  `json:"offering_intensity"`
	Files             []*ProcessFeedbackResult `json:"files"`
}

// TriggerWorkflowResponse is returned when a batch job was started
type TriggerWorkflowResponse struct {
	WorkflowID string `json:"workflow_id"`
	// RunID is empty when the run was requested through a schedule
	RunID string `json:"run_id,omitempty"`
}
