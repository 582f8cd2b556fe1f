package ecert

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	ierr "github.com/studentaid/disbursement/internal/errors"
	fw "github.com/studentaid/disbursement/internal/fixedwidth"
	"github.com/studentaid/disbursement/internal/types"
)

var hundred = decimal.NewFromInt(100)

// ToCents converts a dollar amount to whole cents, rounding half away from zero
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents converts whole cents back to dollars
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FileHeader opens every outbound e-Cert file
type FileHeader struct {
	ProgramCode    string
	Environment    string
	OriginatorName string
	FileDate       time.Time
	Sequence       int64
}

func (h FileHeader) record() fw.Record {
	return fw.Record{
		fieldProgramCode:    h.ProgramCode,
		fieldEnvironment:    h.Environment,
		fieldOriginatorName: h.OriginatorName,
		fieldFileDate:       h.FileDate,
		fieldFileSequence:   h.Sequence,
	}
}

func parseFileHeader(rec fw.Record) FileHeader {
	return FileHeader{
		ProgramCode:    rec.Text(fieldProgramCode),
		Environment:    rec.Text(fieldEnvironment),
		OriginatorName: rec.Text(fieldOriginatorName),
		FileDate:       rec.Date(fieldFileDate),
		Sequence:       rec.Number(fieldFileSequence),
	}
}

// FileFooter closes an outbound e-Cert file
type FileFooter struct {
	RecordCount int64
	TotalCents  int64
	ProgramCode string
}

func (f FileFooter) record() fw.Record {
	return fw.Record{
		fieldRecordCount: f.RecordCount,
		fieldTotalAmount: f.TotalCents,
		fieldProgramCode: f.ProgramCode,
	}
}

func parseFileFooter(rec fw.Record) FileFooter {
	return FileFooter{
		RecordCount: rec.Number(fieldRecordCount),
		TotalCents:  rec.Number(fieldTotalAmount),
		ProgramCode: rec.Text(fieldProgramCode),
	}
}

// Award is one certified award value in cents
type Award struct {
	Code  string
	Cents int64
}

// Certificate is everything written for one disbursement
type Certificate struct {
	DocumentNumber   int64
	SIN              string
	LastName         string
	FirstName        string
	BirthDate        time.Time
	Gender           string
	PostalCode       string
	Email            string
	DisbursementDate time.Time
	MSFAANumber      string
	Awards           []Award
}

// TotalCents sums the awards of the certificate
func (c Certificate) TotalCents() int64 {
	return lo.SumBy(c.Awards, func(a Award) int64 { return a.Cents })
}

func (c Certificate) fullTimeRecord() (fw.Record, error) {
	if len(c.Awards) > MaxFullTimeAwards {
		return nil, ierr.NewErrorf("certificate %d has %d awards, at most %d fit", c.DocumentNumber, len(c.Awards), MaxFullTimeAwards).
			WithHint("Too many award values for a full-time e-Cert record").
			Mark(ierr.ErrEncoding)
	}

	rec := fw.Record{
		fieldDocumentNumber:   c.DocumentNumber,
		fieldSIN:              c.SIN,
		fieldLastName:         c.LastName,
		fieldFirstName:        c.FirstName,
		fieldBirthDate:        c.BirthDate,
		fieldGender:           c.Gender,
		fieldPostalCode:       c.PostalCode,
		fieldEmail:            c.Email,
		fieldDisbursementDate: c.DisbursementDate,
		fieldMSFAANumber:      c.MSFAANumber,
		fieldTotalAmount:      c.TotalCents(),
		fieldAwardCount:       int64(len(c.Awards)),
	}
	for i, a := range c.Awards {
		rec[awardCodeField(i+1)] = a.Code
		rec[awardAmountField(i+1)] = a.Cents
	}
	return rec, nil
}

func parseFullTimeCertificate(rec fw.Record) Certificate {
	c := Certificate{
		DocumentNumber:   rec.Number(fieldDocumentNumber),
		SIN:              rec.Text(fieldSIN),
		LastName:         rec.Text(fieldLastName),
		FirstName:        rec.Text(fieldFirstName),
		BirthDate:        rec.Date(fieldBirthDate),
		Gender:           rec.Text(fieldGender),
		PostalCode:       rec.Text(fieldPostalCode),
		Email:            rec.Text(fieldEmail),
		DisbursementDate: rec.Date(fieldDisbursementDate),
		MSFAANumber:      rec.Text(fieldMSFAANumber),
	}
	count := int(rec.Number(fieldAwardCount))
	for slot := 1; slot <= count && slot <= MaxFullTimeAwards; slot++ {
		c.Awards = append(c.Awards, Award{
			Code:  rec.Text(awardCodeField(slot)),
			Cents: rec.Number(awardAmountField(slot)),
		})
	}
	return c
}

func (c Certificate) partTimeRecord(a Award) fw.Record {
	return fw.Record{
		fieldDocumentNumber:   c.DocumentNumber,
		fieldSIN:              c.SIN,
		fieldLastName:         c.LastName,
		fieldFirstName:        c.FirstName,
		fieldBirthDate:        c.BirthDate,
		fieldPostalCode:       c.PostalCode,
		fieldDisbursementDate: c.DisbursementDate,
		fieldMSFAANumber:      c.MSFAANumber,
		fieldAwardCode:        a.Code,
		fieldAwardAmount:      a.Cents,
		fieldEmail:            c.Email,
	}
}

// parsePartTimeLine returns the certificate fields of one part-time line
// carrying a single award
func parsePartTimeLine(rec fw.Record) Certificate {
	return Certificate{
		DocumentNumber:   rec.Number(fieldDocumentNumber),
		SIN:              rec.Text(fieldSIN),
		LastName:         rec.Text(fieldLastName),
		FirstName:        rec.Text(fieldFirstName),
		BirthDate:        rec.Date(fieldBirthDate),
		PostalCode:       rec.Text(fieldPostalCode),
		Email:            rec.Text(fieldEmail),
		DisbursementDate: rec.Date(fieldDisbursementDate),
		MSFAANumber:      rec.Text(fieldMSFAANumber),
		Awards: []Award{{
			Code:  rec.Text(fieldAwardCode),
			Cents: rec.Number(fieldAwardAmount),
		}},
	}
}

// FeedbackHeaderRecord opens a response file
type FeedbackHeaderRecord struct {
	FileDate    time.Time
	ProgramCode string
	Sequence    int64
}

// FeedbackDetailRecord reports the errors found for one document number
type FeedbackDetailRecord struct {
	DocumentNumber int64
	SIN            string
	ErrorCodes     []string
}

// FeedbackTrailerRecord closes a response file
type FeedbackTrailerRecord struct {
	RecordCount int64
}

func (h FeedbackHeaderRecord) record() fw.Record {
	return fw.Record{
		fieldFileDate:     h.FileDate,
		fieldProgramCode:  h.ProgramCode,
		fieldFileSequence: h.Sequence,
	}
}

func (d FeedbackDetailRecord) record() (fw.Record, error) {
	if len(d.ErrorCodes) > MaxFeedbackErrors {
		return nil, ierr.NewErrorf("document %d has %d error codes, at most %d fit", d.DocumentNumber, len(d.ErrorCodes), MaxFeedbackErrors).
			Mark(ierr.ErrEncoding)
	}
	rec := fw.Record{
		fieldDocumentNumber: d.DocumentNumber,
		fieldSIN:            d.SIN,
	}
	for i, code := range d.ErrorCodes {
		rec[errorCodeField(i+1)] = code
	}
	return rec, nil
}

func (t FeedbackTrailerRecord) record() fw.Record {
	return fw.Record{fieldRecordCount: t.RecordCount}
}

// ParseFeedbackHeader maps a decoded header record
func ParseFeedbackHeader(rec fw.Record) FeedbackHeaderRecord {
	return FeedbackHeaderRecord{
		FileDate:    rec.Date(fieldFileDate),
		ProgramCode: rec.Text(fieldProgramCode),
		Sequence:    rec.Number(fieldFileSequence),
	}
}

// ParseFeedbackDetail maps a decoded detail record, skipping empty error slots
func ParseFeedbackDetail(rec fw.Record) FeedbackDetailRecord {
	d := FeedbackDetailRecord{
		DocumentNumber: rec.Number(fieldDocumentNumber),
		SIN:            rec.Text(fieldSIN),
	}
	for slot := 1; slot <= MaxFeedbackErrors; slot++ {
		if code := strings.TrimSpace(rec.Text(errorCodeField(slot))); code != "" {
			d.ErrorCodes = append(d.ErrorCodes, code)
		}
	}
	return d
}

// ParseFeedbackTrailer maps a decoded trailer record
func ParseFeedbackTrailer(rec fw.Record) FeedbackTrailerRecord {
	return FeedbackTrailerRecord{RecordCount: rec.Number(fieldRecordCount)}
}

// IncomeVerificationRequest asks the tax authority for a student's income
type IncomeVerificationRequest struct {
	SIN       string
	LastName  string
	FirstName string
	BirthDate time.Time
	TaxYear   int64
	Reference string
}

func (r IncomeVerificationRequest) record() fw.Record {
	return fw.Record{
		fieldSIN:       r.SIN,
		fieldLastName:  r.LastName,
		fieldFirstName: r.FirstName,
		fieldBirthDate: r.BirthDate,
		fieldTaxYear:   r.TaxYear,
		fieldReference: r.Reference,
	}
}

func parseIncomeVerificationRequest(rec fw.Record) IncomeVerificationRequest {
	return IncomeVerificationRequest{
		SIN:       rec.Text(fieldSIN),
		LastName:  rec.Text(fieldLastName),
		FirstName: rec.Text(fieldFirstName),
		BirthDate: rec.Date(fieldBirthDate),
		TaxYear:   rec.Number(fieldTaxYear),
		Reference: rec.Text(fieldReference),
	}
}

// DetailLayout returns the detail layout of the intensity's stream
func DetailLayout(intensity types.OfferingIntensity) *fw.Layout {
	if intensity == types.OfferingIntensityPartTime {
		return PartTimeDetail
	}
	return FullTimeDetail
}

// FormatFor returns the outbound format of the intensity's stream
func FormatFor(intensity types.OfferingIntensity) *fw.Format {
	if intensity == types.OfferingIntensityPartTime {
		return PartTimeFormat
	}
	return FullTimeFormat
}
