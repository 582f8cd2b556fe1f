package ecert

import (
	"fmt"
	"time"

	ierr "github.com/studentaid/disbursement/internal/errors"
	fw "github.com/studentaid/disbursement/internal/fixedwidth"
	"github.com/studentaid/disbursement/internal/types"
)

// FileName builds the outbound name, ex PBC.EDU.FTECERTS.20240901.00012
func FileName(prefix string, date time.Time, sequence int64) string {
	return fmt.Sprintf("%s.%s.%05d", prefix, date.Format(fw.DateLayout), sequence)
}

// EncodeHeader renders the header line of the intensity's stream
func EncodeHeader(intensity types.OfferingIntensity, h FileHeader) (string, error) {
	if intensity == types.OfferingIntensityPartTime {
		return PartTimeHeader.Encode(h.record())
	}
	return FullTimeHeader.Encode(h.record())
}

// EncodeFooter renders the footer line of the intensity's stream
func EncodeFooter(intensity types.OfferingIntensity, f FileFooter) (string, error) {
	if intensity == types.OfferingIntensityPartTime {
		return PartTimeFooter.Encode(f.record())
	}
	return FullTimeFooter.Encode(f.record())
}

// EncodeCertificate renders the detail lines of one certificate: a single
// line for full-time, one line per award for part-time.
func EncodeCertificate(intensity types.OfferingIntensity, c Certificate) ([]string, error) {
	if len(c.Awards) == 0 {
		return nil, ierr.NewErrorf("certificate %d has no awards", c.DocumentNumber).
			WithHint("A certificate needs at least one award value").
			Mark(ierr.ErrEncoding)
	}

	if intensity == types.OfferingIntensityPartTime {
		lines := make([]string, 0, len(c.Awards))
		for _, a := range c.Awards {
			line, err := PartTimeDetail.Encode(c.partTimeRecord(a))
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return lines, nil
	}

	rec, err := c.fullTimeRecord()
	if err != nil {
		return nil, err
	}
	line, err := FullTimeDetail.Encode(rec)
	if err != nil {
		return nil, err
	}
	return []string{line}, nil
}

// BuildFile assembles header, detail blocks in the given order and a footer
// counting detail lines and summing totalCents.
func BuildFile(intensity types.OfferingIntensity, header FileHeader, details [][]string, totalCents int64) (string, error) {
	headerLine, err := EncodeHeader(intensity, header)
	if err != nil {
		return "", err
	}

	lines := []string{headerLine}
	for _, block := range details {
		lines = append(lines, block...)
	}

	footerLine, err := EncodeFooter(intensity, FileFooter{
		RecordCount: int64(len(lines) - 1),
		TotalCents:  totalCents,
		ProgramCode: header.ProgramCode,
	})
	if err != nil {
		return "", err
	}
	lines = append(lines, footerLine)

	return fw.Join(lines), nil
}

// CertificateFile is a decoded outbound e-Cert file
type CertificateFile struct {
	Header       *FileHeader
	Certificates []Certificate
	Footer       *FileFooter
	DetailLines  int
}

// ParseCertificateFile decodes an outbound file. Part-time lines of the same
// document number are merged into one certificate.
func ParseCertificateFile(intensity types.OfferingIntensity, content string) (*CertificateFile, []fw.LineError) {
	decoded, failed := FormatFor(intensity).DecodeAll(content)

	file := &CertificateFile{}
	byDocument := make(map[int64]int)
	for _, line := range decoded {
		switch line.Layout.RecordType {
		case RecordTypeHeader:
			h := parseFileHeader(line.Record)
			file.Header = &h
		case RecordTypeFooter:
			f := parseFileFooter(line.Record)
			file.Footer = &f
		case RecordTypeDetail:
			file.DetailLines++
			if intensity != types.OfferingIntensityPartTime {
				file.Certificates = append(file.Certificates, parseFullTimeCertificate(line.Record))
				continue
			}
			c := parsePartTimeLine(line.Record)
			if idx, ok := byDocument[c.DocumentNumber]; ok {
				file.Certificates[idx].Awards = append(file.Certificates[idx].Awards, c.Awards...)
				continue
			}
			byDocument[c.DocumentNumber] = len(file.Certificates)
			file.Certificates = append(file.Certificates, c)
		}
	}
	return file, failed
}

// BuildFeedbackFile renders a response file, used to simulate the federal
// system in tests and by the command line tool
func BuildFeedbackFile(header FeedbackHeaderRecord, details []FeedbackDetailRecord) (string, error) {
	headerLine, err := FeedbackHeader.Encode(header.record())
	if err != nil {
		return "", err
	}
	lines := []string{headerLine}
	for _, d := range details {
		rec, err := d.record()
		if err != nil {
			return "", err
		}
		line, err := FeedbackDetail.Encode(rec)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	trailerLine, err := FeedbackTrailer.Encode(FeedbackTrailerRecord{RecordCount: int64(len(details))}.record())
	if err != nil {
		return "", err
	}
	return fw.Join(append(lines, trailerLine)), nil
}

// BuildIncomeVerificationFile renders a CRA income verification request file
func BuildIncomeVerificationFile(header FileHeader, requests []IncomeVerificationRequest) (string, error) {
	headerLine, err := CRAHeader.Encode(header.record())
	if err != nil {
		return "", err
	}
	lines := []string{headerLine}
	for _, r := range requests {
		line, err := CRADetail.Encode(r.record())
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	trailerLine, err := CRATrailer.Encode(fw.Record{fieldRecordCount: int64(len(requests))})
	if err != nil {
		return "", err
	}
	return fw.Join(append(lines, trailerLine)), nil
}

// ParseIncomeVerificationFile decodes a CRA request file
func ParseIncomeVerificationFile(content string) (*FileHeader, []IncomeVerificationRequest, []fw.LineError) {
	decoded, failed := CRAFormat.DecodeAll(content)

	var header *FileHeader
	var requests []IncomeVerificationRequest
	for _, line := range decoded {
		switch line.Layout.RecordType {
		case CRARecordTypeHeader:
			h := parseFileHeader(line.Record)
			header = &h
		case CRARecordTypeDetail:
			requests = append(requests, parseIncomeVerificationRequest(line.Record))
		}
	}
	return header, requests, failed
}
