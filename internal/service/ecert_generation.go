package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/iter"
	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/eligibility"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	"github.com/studentaid/disbursement/internal/domain/student"
	"github.com/studentaid/disbursement/internal/ecert"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/metrics"
	"github.com/studentaid/disbursement/internal/s3"
	"github.com/studentaid/disbursement/internal/sftp"
	"github.com/studentaid/disbursement/internal/types"
)

// ECertGenerationService builds, uploads and records e-Cert files
type ECertGenerationService interface {
	// GenerateECert sends every eligible candidate of the stream in one file.
	// Blocked and unencodable disbursements are reported in the result;
	// sequence, transport and database failures abort the run.
	GenerateECert(ctx context.Context, intensity types.OfferingIntensity) (*dto.GenerateECertResult, error)
}

type ecertGenerationService struct {
	ServiceParams
	sequence    SequenceService
	eligibility EligibilityService
}

func NewECertGenerationService(params ServiceParams) ECertGenerationService {
	return &ecertGenerationService{
		ServiceParams: params,
		sequence:      NewSequenceService(params),
		eligibility:   NewEligibilityService(params),
	}
}

// certificate is an eligible disbursement with its document number and the
// value lines after deductions
type certificate struct {
	disbursement   *disbursement.Disbursement
	student        *student.Student
	values         []*disbursement.Value
	documentNumber int64
}

type encodedCertificate struct {
	cert  *certificate
	lines []string
	cents int64
	err   error
}

func (s *ecertGenerationService) GenerateECert(ctx context.Context, intensity types.OfferingIntensity) (*dto.GenerateECertResult, error) {
	if err := intensity.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unknown offering intensity").
			Mark(ierr.ErrValidation)
	}

	start := time.Now()
	defer s.Metrics.ObserveBatch("ecert_generate", start)

	now := start.UTC()
	result := &dto.GenerateECertResult{
		RunID:                   types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BATCH_RUN),
		OfferingIntensity:       intensity,
		TotalAmount:             decimal.Zero,
		IncludedDisbursementIDs: []string{},
	}
	log := s.Logger.With("run_id", result.RunID, "offering_intensity", intensity)

	candidates, err := s.DisbursementRepo.ListCandidates(ctx, &disbursement.CandidateFilter{
		OfferingIntensity: intensity,
		ScheduledBefore:   scheduledCutoff(now, s.Config.ECert.DaysAhead),
	})
	if err != nil {
		return nil, err
	}
	log.Infow("loaded e-Cert candidates", "count", len(candidates))

	// Evaluation and numbering stay sequential so document numbers follow
	// candidate order.
	var eligible []*certificate
	for _, d := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		evalCtx, err := s.eligibility.BuildContext(ctx, d, now)
		if err != nil {
			return nil, err
		}
		applyRunHistory(evalCtx, d, eligible)

		evaluation := eligibility.Evaluate(d, evalCtx)
		if !evaluation.Eligible {
			log.Infow("disbursement blocked",
				"disbursement_id", d.ID,
				"reasons", evaluation.BlockingReasons,
				"error", blockedError(d, evaluation))
			result.Blocked = append(result.Blocked, dto.BlockedDisbursement{
				DisbursementID: d.ID,
				Reasons:        evaluation.BlockingReasons,
			})
			continue
		}

		cert := &certificate{
			disbursement: d,
			student:      evalCtx.Student,
			values:       evaluation.Values,
		}
		// A record that cannot be rendered must stay out of the run history,
		// otherwise later candidates see its deductions as consumed.
		if rendered := encodeCertificate(intensity, cert); rendered.err != nil {
			log.Errorw("failed to encode certificate, record skipped",
				"disbursement_id", d.ID,
				"error", rendered.err)
			result.EncodingErrors = append(result.EncodingErrors, dto.RecordError{
				DisbursementID: d.ID,
				Error:          rendered.err.Error(),
			})
			continue
		}

		number, err := s.sequence.NextDocumentNumber(ctx, intensity)
		if err != nil {
			return nil, err
		}
		cert.documentNumber = number
		eligible = append(eligible, cert)
	}
	s.Metrics.RecordECertRecords(string(intensity), metrics.OutcomeBlocked, len(result.Blocked))

	s.Metrics.RecordECertRecords(string(intensity), metrics.OutcomeEncodingError, len(result.EncodingErrors))

	if len(eligible) == 0 {
		log.Infow("no eligible disbursements, no file generated",
			"blocked", len(result.Blocked),
			"encoding_errors", len(result.EncodingErrors))
		return result, nil
	}

	// every number is allocated, encoding order no longer matters
	sent := iter.Map(eligible, func(c **certificate) encodedCertificate {
		return encodeCertificate(intensity, *c)
	})

	details := make([][]string, 0, len(sent))
	var totalCents int64
	for _, e := range sent {
		// the record rendered before numbering, only the number itself can fail here
		if e.err != nil {
			log.Errorw("document number does not fit the certificate record",
				"disbursement_id", e.cert.disbursement.ID,
				"document_number", e.cert.documentNumber,
				"error", e.err)
			return nil, ierr.WithError(e.err).
				WithHintf("Document number %d cannot be rendered", e.cert.documentNumber).
				Mark(ierr.ErrEncoding)
		}
		details = append(details, e.lines)
		totalCents += e.cents
	}

	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	fileSequence, err := s.sequence.NextFileSequence(ctx, intensity)
	if err != nil {
		return nil, err
	}

	header := ecert.FileHeader{
		ProgramCode:    s.Config.ECert.ProgramCode,
		Environment:    s.Config.ECert.Environment,
		OriginatorName: s.Config.ECert.OriginatorName,
		FileDate:       now,
		Sequence:       fileSequence,
	}
	content, err := ecert.BuildFile(intensity, header, details, totalCents)
	if err != nil {
		return nil, err
	}
	fileName := ecert.FileName(s.Config.ECert.FilePrefix(intensity), now, fileSequence)

	// once the upload starts the run must finish, cancellation is ignored
	ctx = context.WithoutCancel(ctx)
	remotePath := sftp.Join(s.Config.SFTP.UploadDir, fileName)
	if err := s.Transport.Upload(ctx, remotePath, []byte(content)); err != nil {
		log.Errorw("failed to upload e-Cert file", "file_name", fileName, "error", err)
		if !ierr.IsTransport(err) {
			err = ierr.WithError(err).WithHintf("Failed to upload %s", fileName).Mark(ierr.ErrTransport)
		}
		return nil, err
	}
	archiveDocument(ctx, s.ServiceParams, s3.NewECertDocument(fileName, []byte(content), now))

	if err := s.markSent(ctx, sent, fileName, now); err != nil {
		log.Errorw("e-Cert file uploaded but disbursements could not be marked as sent",
			"file_name", fileName,
			"error", err)
		return nil, err
	}

	result.FileName = fileName
	result.FileSequence = fileSequence
	result.RecordCount = len(sent)
	result.TotalAmount = ecert.FromCents(totalCents)
	result.Content = content
	result.IncludedDisbursementIDs = lo.Map(sent, func(e encodedCertificate, _ int) string {
		return e.cert.disbursement.ID
	})
	s.Metrics.RecordECertRecords(string(intensity), metrics.OutcomeIncluded, len(sent))

	log.Infow("generated e-Cert file",
		"file_name", fileName,
		"records", result.RecordCount,
		"total_amount", result.TotalAmount,
		"blocked", len(result.Blocked),
		"encoding_errors", len(result.EncodingErrors))
	return result, nil
}

// markSent records the outcome of a successful upload in one transaction
func (s *ecertGenerationService) markSent(ctx context.Context, sent []encodedCertificate, fileName string, now time.Time) error {
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		for _, e := range sent {
			d := e.cert.disbursement
			if d.Status == types.DisbursementStatusPending {
				err := s.DisbursementRepo.UpdateStatus(ctx, d.ID,
					types.DisbursementStatusPending, types.DisbursementStatusReadyToSend)
				if err != nil {
					return err
				}
				d.Status = types.DisbursementStatusReadyToSend
			}

			d.DocumentNumber = lo.ToPtr(e.cert.documentNumber)
			d.FileName = lo.ToPtr(fileName)
			d.SentAt = lo.ToPtr(now)
			d.Values = e.cert.values
			if err := s.DisbursementRepo.MarkSent(ctx, d); err != nil {
				return err
			}
			d.Status = types.DisbursementStatusSent

			for _, v := range e.cert.values {
				if !v.OverawardAmountSubtracted.IsPositive() {
					continue
				}
				entry := &overaward.LedgerEntry{
					ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OVERAWARD),
					StudentID:      d.StudentID,
					DisbursementID: lo.ToPtr(d.ID),
					AwardValueCode: v.ValueCode,
					Amount:         v.OverawardAmountSubtracted.Neg(),
					OriginType:     types.OverawardOriginAwardDeducted,
					CreatedAt:      now,
					CreatedBy:      types.GetUserID(ctx),
				}
				if err := s.OverawardRepo.Create(ctx, entry); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func encodeCertificate(intensity types.OfferingIntensity, c *certificate) encodedCertificate {
	d := c.disbursement
	awards := lo.FilterMap(c.values, func(v *disbursement.Value, _ int) (ecert.Award, bool) {
		cents := ecert.ToCents(v.EffectiveAmount)
		return ecert.Award{Code: v.ValueCode, Cents: cents}, cents > 0
	})

	cert := ecert.Certificate{
		DocumentNumber:   c.documentNumber,
		SIN:              c.student.SIN,
		LastName:         c.student.LastName,
		FirstName:        c.student.FirstName,
		BirthDate:        c.student.BirthDate,
		Gender:           c.student.Gender,
		PostalCode:       c.student.PostalCode,
		Email:            c.student.Email,
		DisbursementDate: d.ScheduledDate,
		MSFAANumber:      d.MSFAANumber,
		Awards:           awards,
	}

	lines, err := ecert.EncodeCertificate(intensity, cert)
	return encodedCertificate{cert: c, lines: lines, cents: cert.TotalCents(), err: err}
}

// applyRunHistory accounts for candidates already numbered in this run: they
// are not sent yet so the repositories do not see them.
func applyRunHistory(c *eligibility.Context, d *disbursement.Disbursement, numbered []*certificate) {
	consumed := map[string]decimal.Decimal{}
	previous := map[string]decimal.Decimal{}
	lifetime := map[string]decimal.Decimal{}

	for _, n := range numbered {
		other := n.disbursement
		for _, v := range n.values {
			if other.StudentID == d.StudentID {
				consumed[v.ValueCode] = consumed[v.ValueCode].Sub(v.OverawardAmountSubtracted)
				if other.OfferingIntensity == d.OfferingIntensity {
					lifetime[v.ValueCode] = lifetime[v.ValueCode].Add(v.EffectiveAmount)
				}
			}
			if other.ApplicationID != d.ApplicationID {
				continue
			}
			if other.AssessmentID != d.AssessmentID {
				previous[v.ValueCode] = previous[v.ValueCode].Add(v.EffectiveAmount)
			} else {
				previous[v.ValueCode] = previous[v.ValueCode].Sub(v.DisbursedAmountSubtracted)
			}
		}
	}

	c.OverawardBalance = addAmounts(c.OverawardBalance, consumed)
	c.PreviouslyDisbursed = addAmounts(c.PreviouslyDisbursed, previous)
	c.LifetimeDisbursed = addAmounts(c.LifetimeDisbursed, lifetime)
}

// scheduledCutoff is the last scheduled date included in a run
func scheduledCutoff(now time.Time, daysAhead int) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, daysAhead)
}

func cancelled(err error) error {
	return ierr.WithError(err).
		WithHint("Batch was cancelled before the file was uploaded").
		Mark(ierr.ErrSystem)
}

// archiveDocument keeps an S3 copy when archiving is enabled. A failed copy
// is logged, the exchange already happened.
func archiveDocument(ctx context.Context, params ServiceParams, document *s3.Document) {
	if params.S3 == nil {
		return
	}
	if err := params.S3.ArchiveDocument(ctx, document); err != nil {
		params.Logger.Errorw("failed to archive file copy",
			"file_name", document.Name,
			"document_type", document.Type,
			"error", err)
	}
}
