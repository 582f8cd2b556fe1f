// Package ecert holds the fixed-width layouts exchanged with the federal
// loan authority and the tax authority, and the typed records mapped onto them.
package ecert

import (
	"fmt"

	fw "github.com/studentaid/disbursement/internal/fixedwidth"
)

// Line widths per file type
const (
	FullTimeWidth = 300
	PartTimeWidth = 200
	FeedbackWidth = 80
	CRAWidth      = 150

	// MaxFullTimeAwards is the number of award slots on a full-time detail
	MaxFullTimeAwards = 10
	// MaxFeedbackErrors is the number of error code slots on a feedback detail
	MaxFeedbackErrors = 5
)

// Record type codes
const (
	RecordTypeHeader = "01"
	RecordTypeDetail = "02"
	RecordTypeFooter = "99"

	FeedbackRecordTypeHeader  = "100"
	FeedbackRecordTypeDetail  = "200"
	FeedbackRecordTypeTrailer = "999"

	CRARecordTypeHeader  = "7100"
	CRARecordTypeDetail  = "7101"
	CRARecordTypeTrailer = "7999"
)

// Field names shared between layouts and mappers
const (
	fieldProgramCode      = "program_code"
	fieldEnvironment      = "environment"
	fieldOriginatorName   = "originator_name"
	fieldFileDate         = "file_date"
	fieldFileSequence     = "file_sequence"
	fieldDocumentNumber   = "document_number"
	fieldSIN              = "sin"
	fieldLastName         = "last_name"
	fieldFirstName        = "first_name"
	fieldBirthDate        = "birth_date"
	fieldGender           = "gender"
	fieldPostalCode       = "postal_code"
	fieldEmail            = "email"
	fieldDisbursementDate = "disbursement_date"
	fieldMSFAANumber      = "msfaa_number"
	fieldTotalAmount      = "total_amount"
	fieldAwardCount       = "award_count"
	fieldAwardCode        = "award_code"
	fieldAwardAmount      = "award_amount"
	fieldRecordCount      = "record_count"
	fieldErrorCode        = "error_code"
	fieldTaxYear          = "tax_year"
	fieldReference        = "reference"
)

func awardCodeField(slot int) string   { return fmt.Sprintf("%s_%d", fieldAwardCode, slot) }
func awardAmountField(slot int) string { return fmt.Sprintf("%s_%d", fieldAwardAmount, slot) }
func errorCodeField(slot int) string   { return fmt.Sprintf("%s_%d", fieldErrorCode, slot) }

func headerLayout(name string, width int) *fw.Layout {
	return fw.MustNewLayout(name, RecordTypeHeader, width, ' ',
		fw.TextField(fw.RecordTypeField, 0, 2),
		fw.TextField(fieldProgramCode, 2, 4),
		fw.TextField(fieldEnvironment, 6, 1),
		fw.TextField(fieldOriginatorName, 7, 40),
		fw.DateField(fieldFileDate, 47, 8),
		fw.NumberField(fieldFileSequence, 55, 5),
	)
}

func footerLayout(name string, width int) *fw.Layout {
	return fw.MustNewLayout(name, RecordTypeFooter, width, ' ',
		fw.TextField(fw.RecordTypeField, 0, 2),
		fw.NumberField(fieldRecordCount, 2, 9),
		fw.NumberField(fieldTotalAmount, 11, 15),
		fw.TextField(fieldProgramCode, 26, 4),
	)
}

func fullTimeDetailLayout() *fw.Layout {
	fields := []fw.Field{
		fw.TextField(fw.RecordTypeField, 0, 2),
		fw.NumberField(fieldDocumentNumber, 2, 8),
		fw.TextField(fieldSIN, 10, 9),
		fw.TextField(fieldLastName, 19, 25),
		fw.TextField(fieldFirstName, 44, 15),
		fw.DateField(fieldBirthDate, 59, 8),
		fw.TextField(fieldGender, 67, 1),
		fw.TextField(fieldPostalCode, 68, 16),
		fw.TextField(fieldEmail, 84, 50),
		fw.DateField(fieldDisbursementDate, 134, 8),
		fw.TextField(fieldMSFAANumber, 142, 10),
		fw.NumberField(fieldTotalAmount, 152, 9),
		fw.NumberField(fieldAwardCount, 161, 2),
	}
	start := 163
	for slot := 1; slot <= MaxFullTimeAwards; slot++ {
		fields = append(fields,
			fw.TextField(awardCodeField(slot), start, 4),
			fw.NumberField(awardAmountField(slot), start+4, 9),
		)
		start += 13
	}
	return fw.MustNewLayout("full-time e-Cert detail", RecordTypeDetail, FullTimeWidth, ' ', fields...)
}

func partTimeDetailLayout() *fw.Layout {
	return fw.MustNewLayout("part-time e-Cert detail", RecordTypeDetail, PartTimeWidth, ' ',
		fw.TextField(fw.RecordTypeField, 0, 2),
		fw.NumberField(fieldDocumentNumber, 2, 8),
		fw.TextField(fieldSIN, 10, 9),
		fw.TextField(fieldLastName, 19, 25),
		fw.TextField(fieldFirstName, 44, 15),
		fw.DateField(fieldBirthDate, 59, 8),
		fw.TextField(fieldPostalCode, 67, 16),
		fw.DateField(fieldDisbursementDate, 83, 8),
		fw.TextField(fieldMSFAANumber, 91, 10),
		fw.TextField(fieldAwardCode, 101, 4),
		fw.NumberField(fieldAwardAmount, 105, 9),
		fw.TextField(fieldEmail, 114, 50),
	)
}

func feedbackDetailLayout() *fw.Layout {
	fields := []fw.Field{
		fw.TextField(fw.RecordTypeField, 0, 3),
		fw.NumberField(fieldDocumentNumber, 3, 8),
		fw.TextField(fieldSIN, 11, 9),
	}
	for slot := 1; slot <= MaxFeedbackErrors; slot++ {
		fields = append(fields, fw.TextField(errorCodeField(slot), 20+(slot-1)*10, 10))
	}
	return fw.MustNewLayout("e-Cert feedback detail", FeedbackRecordTypeDetail, FeedbackWidth, ' ', fields...)
}

var (
	FullTimeHeader = headerLayout("full-time e-Cert header", FullTimeWidth)
	FullTimeDetail = fullTimeDetailLayout()
	FullTimeFooter = footerLayout("full-time e-Cert footer", FullTimeWidth)

	PartTimeHeader = headerLayout("part-time e-Cert header", PartTimeWidth)
	PartTimeDetail = partTimeDetailLayout()
	PartTimeFooter = footerLayout("part-time e-Cert footer", PartTimeWidth)

	FeedbackHeader = fw.MustNewLayout("e-Cert feedback header", FeedbackRecordTypeHeader, FeedbackWidth, ' ',
		fw.TextField(fw.RecordTypeField, 0, 3),
		fw.DateField(fieldFileDate, 3, 8),
		fw.TextField(fieldProgramCode, 11, 4),
		fw.NumberField(fieldFileSequence, 15, 5),
	)
	FeedbackDetail  = feedbackDetailLayout()
	FeedbackTrailer = fw.MustNewLayout("e-Cert feedback trailer", FeedbackRecordTypeTrailer, FeedbackWidth, ' ',
		fw.TextField(fw.RecordTypeField, 0, 3),
		fw.NumberField(fieldRecordCount, 3, 9),
	)

	CRAHeader = fw.MustNewLayout("CRA income verification header", CRARecordTypeHeader, CRAWidth, ' ',
		fw.TextField(fw.RecordTypeField, 0, 4),
		fw.TextField(fieldProgramCode, 4, 4),
		fw.TextField(fieldEnvironment, 8, 1),
		fw.DateField(fieldFileDate, 9, 8),
		fw.NumberField(fieldFileSequence, 17, 5),
		fw.TextField(fieldOriginatorName, 22, 40),
	)
	CRADetail = fw.MustNewLayout("CRA income verification detail", CRARecordTypeDetail, CRAWidth, ' ',
		fw.TextField(fw.RecordTypeField, 0, 4),
		fw.TextField(fieldSIN, 4, 9),
		fw.TextField(fieldLastName, 13, 25),
		fw.TextField(fieldFirstName, 38, 15),
		fw.DateField(fieldBirthDate, 53, 8),
		fw.NumberField(fieldTaxYear, 61, 4),
		fw.TextField(fieldReference, 65, 40),
	)
	CRATrailer = fw.MustNewLayout("CRA income verification trailer", CRARecordTypeTrailer, CRAWidth, ' ',
		fw.TextField(fw.RecordTypeField, 0, 4),
		fw.NumberField(fieldRecordCount, 4, 9),
	)
)

// Formats dispatch decoding on the record type prefix
var (
	FullTimeFormat = fw.NewFormat("full-time e-Cert", 2, FullTimeHeader, FullTimeDetail, FullTimeFooter)
	PartTimeFormat = fw.NewFormat("part-time e-Cert", 2, PartTimeHeader, PartTimeDetail, PartTimeFooter)
	FeedbackFormat = fw.NewFormat("e-Cert feedback", 3, FeedbackHeader, FeedbackDetail, FeedbackTrailer)
	CRAFormat      = fw.NewFormat("CRA income verification", 4, CRAHeader, CRADetail, CRATrailer)
)

// FormatsByName is the lookup used by the command line tools
var FormatsByName = map[string]*fw.Format{
	"ecert-ft":       FullTimeFormat,
	"ecert-pt":       PartTimeFormat,
	"ecert-feedback": FeedbackFormat,
	"cra-iv":         CRAFormat,
}
