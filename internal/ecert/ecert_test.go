package ecert

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/studentaid/disbursement/internal/errors"
	fw "github.com/studentaid/disbursement/internal/fixedwidth"
	"github.com/studentaid/disbursement/internal/types"
)

var fileDate = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

func testHeader() FileHeader {
	return FileHeader{
		ProgramCode:    "BCSL",
		Environment:    "T",
		OriginatorName: "BC STUDENT AID",
		FileDate:       fileDate,
		Sequence:       7,
	}
}

func testCertificate(documentNumber int64, awards ...Award) Certificate {
	return Certificate{
		DocumentNumber:   documentNumber,
		SIN:              "123456789",
		LastName:         "SMITH",
		FirstName:        "JANE",
		BirthDate:        time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC),
		Gender:           "F",
		PostalCode:       "V8W 9V1",
		Email:            "jane.smith@example.com",
		DisbursementDate: time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC),
		MSFAANumber:      "1000000001",
		Awards:           awards,
	}
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(500000), ToCents(decimal.RequireFromString("5000.00")))
	assert.Equal(t, int64(1), ToCents(decimal.RequireFromString("0.005")))
	assert.True(t, FromCents(123456).Equal(decimal.RequireFromString("1234.56")))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "PBC.EDU.FTECERTS.20240901.00012", FileName("PBC.EDU.FTECERTS", fileDate, 12))
}

func TestFullTimeFileRoundTrip(t *testing.T) {
	first := testCertificate(1, Award{Code: "CSLF", Cents: 500000}, Award{Code: "BCSL", Cents: 125050})
	second := testCertificate(2, Award{Code: "CSGF", Cents: 100000})

	var details [][]string
	for _, c := range []Certificate{first, second} {
		lines, err := EncodeCertificate(types.OfferingIntensityFullTime, c)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		details = append(details, lines)
	}

	content, err := BuildFile(types.OfferingIntensityFullTime, testHeader(), details, first.TotalCents()+second.TotalCents())
	require.NoError(t, err)

	lines := fw.SplitLines(content)
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Len(t, line, FullTimeWidth)
	}
	assert.True(t, strings.HasPrefix(lines[0], "01BCSLTBC STUDENT AID"))
	assert.True(t, strings.HasPrefix(lines[3], "99000000002"))

	file, failed := ParseCertificateFile(types.OfferingIntensityFullTime, content)
	require.Empty(t, failed)
	require.NotNil(t, file.Header)
	assert.Equal(t, testHeader(), *file.Header)
	require.NotNil(t, file.Footer)
	assert.Equal(t, int64(2), file.Footer.RecordCount)
	assert.Equal(t, int64(725050), file.Footer.TotalCents)
	require.Len(t, file.Certificates, 2)
	assert.Equal(t, first, file.Certificates[0])
	assert.Equal(t, second, file.Certificates[1])
}

func TestPartTimeFileRoundTrip(t *testing.T) {
	cert := testCertificate(41, Award{Code: "CSLP", Cents: 200000}, Award{Code: "CSGP", Cents: 50000})
	cert.Gender = "" // not carried by the part-time layout

	lines, err := EncodeCertificate(types.OfferingIntensityPartTime, cert)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	content, err := BuildFile(types.OfferingIntensityPartTime, testHeader(), [][]string{lines}, cert.TotalCents())
	require.NoError(t, err)
	for _, line := range fw.SplitLines(content) {
		assert.Len(t, line, PartTimeWidth)
	}

	file, failed := ParseCertificateFile(types.OfferingIntensityPartTime, content)
	require.Empty(t, failed)
	assert.Equal(t, 2, file.DetailLines)
	require.Len(t, file.Certificates, 1)
	assert.Equal(t, cert, file.Certificates[0])
	assert.Equal(t, int64(2), file.Footer.RecordCount)
}

func TestEncodeCertificate_Errors(t *testing.T) {
	_, err := EncodeCertificate(types.OfferingIntensityFullTime, testCertificate(1))
	require.Error(t, err)
	assert.True(t, ierr.IsEncoding(err))

	awards := make([]Award, MaxFullTimeAwards+1)
	for i := range awards {
		awards[i] = Award{Code: "CSLF", Cents: 1}
	}
	_, err = EncodeCertificate(types.OfferingIntensityFullTime, testCertificate(1, awards...))
	require.Error(t, err)
	assert.True(t, ierr.IsEncoding(err))

	_, err = EncodeCertificate(types.OfferingIntensityFullTime, testCertificate(1, Award{Code: "CSLF", Cents: 1_000_000_000}))
	require.Error(t, err)
	assert.True(t, ierr.IsEncoding(err), "amount wider than the award slot")
}

func TestFeedbackFileRoundTrip(t *testing.T) {
	header := FeedbackHeaderRecord{FileDate: fileDate, ProgramCode: "BCSL", Sequence: 3}
	details := []FeedbackDetailRecord{
		{DocumentNumber: 1, SIN: "123456789"},
		{DocumentNumber: 2, SIN: "987654321", ErrorCodes: []string{"EDU-00010", "EDU-00075"}},
	}

	content, err := BuildFeedbackFile(header, details)
	require.NoError(t, err)

	decoded, failed := FeedbackFormat.DecodeAll(content)
	require.Empty(t, failed)
	require.Len(t, decoded, 4)

	assert.Equal(t, header, ParseFeedbackHeader(decoded[0].Record))
	assert.Equal(t, details[0], ParseFeedbackDetail(decoded[1].Record))
	assert.Equal(t, details[1], ParseFeedbackDetail(decoded[2].Record))
	assert.Equal(t, int64(2), ParseFeedbackTrailer(decoded[3].Record).RecordCount)
}

func TestIncomeVerificationFileRoundTrip(t *testing.T) {
	requests := []IncomeVerificationRequest{{
		SIN:       "123456789",
		LastName:  "SMITH",
		FirstName: "JANE",
		BirthDate: time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC),
		TaxYear:   2023,
		Reference: "app_01J8Z",
	}}

	content, err := BuildIncomeVerificationFile(testHeader(), requests)
	require.NoError(t, err)
	for _, line := range fw.SplitLines(content) {
		assert.Len(t, line, CRAWidth)
	}

	header, decoded, failed := ParseIncomeVerificationFile(content)
	require.Empty(t, failed)
	require.NotNil(t, header)
	assert.Equal(t, testHeader(), *header)
	assert.Equal(t, requests, decoded)
}

func TestFormatsByName(t *testing.T) {
	for _, name := range []string{"ecert-ft", "ecert-pt", "ecert-feedback", "cra-iv"} {
		assert.Contains(t, FormatsByName, name)
	}
	assert.Equal(t, PartTimeFormat, FormatFor(types.OfferingIntensityPartTime))
	assert.Equal(t, FullTimeDetail, DetailLayout(types.OfferingIntensityFullTime))
}
