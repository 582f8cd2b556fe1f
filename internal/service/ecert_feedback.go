package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studentaid/disbursement/internal/api/dto"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	"github.com/studentaid/disbursement/internal/ecert"
	ierr "github.com/studentaid/disbursement/internal/errors"
	"github.com/studentaid/disbursement/internal/metrics"
	"github.com/studentaid/disbursement/internal/s3"
	"github.com/studentaid/disbursement/internal/sftp"
	"github.com/studentaid/disbursement/internal/types"
)

// ECertFeedbackService reconciles response files with sent disbursements
type ECertFeedbackService interface {
	// Process decodes one response file. Bad lines and unknown document
	// numbers are reported in the result, only repository failures are errors.
	Process(ctx context.Context, intensity types.OfferingIntensity, fileName, content string) (*dto.ProcessFeedbackResult, error)

	// ProcessResponses downloads, processes and archives every response file
	// of the stream waiting on the exchange server
	ProcessResponses(ctx context.Context, intensity types.OfferingIntensity) (*dto.ProcessResponsesResult, error)
}

type ecertFeedbackService struct {
	ServiceParams
}

func NewECertFeedbackService(params ServiceParams) ECertFeedbackService {
	return &ecertFeedbackService{ServiceParams: params}
}

func (s *ecertFeedbackService) ProcessResponses(ctx context.Context, intensity types.OfferingIntensity) (*dto.ProcessResponsesResult, error) {
	if err := intensity.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Unknown offering intensity").
			Mark(ierr.ErrValidation)
	}

	start := time.Now()
	defer s.Metrics.ObserveBatch("ecert_feedback", start)

	dir := s.Config.SFTP.ResponseDir
	prefix := s.Config.ECert.FeedbackFilePrefix(intensity)
	names, err := s.Transport.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	result := &dto.ProcessResponsesResult{
		OfferingIntensity: intensity,
		Files:             []*dto.ProcessFeedbackResult{},
	}
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}

		remotePath := sftp.Join(dir, name)
		content, err := s.Transport.Download(ctx, remotePath)
		if err != nil {
			return nil, err
		}

		fileResult, err := s.Process(ctx, intensity, name, string(content))
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, fileResult)

		// the file is fully recorded, archive it so the next run skips it
		if err := s.Transport.Archive(ctx, remotePath); err != nil {
			return nil, err
		}
		archiveDocument(ctx, s.ServiceParams, s3.NewFeedbackDocument(name, content, start.UTC()))
	}

	s.Logger.Infow("processed e-Cert response files",
		"offering_intensity", intensity,
		"files", len(result.Files))
	return result, nil
}

func (s *ecertFeedbackService) Process(ctx context.Context, intensity types.OfferingIntensity, fileName, content string) (*dto.ProcessFeedbackResult, error) {
	log := s.Logger.With("file_name", fileName, "offering_intensity", intensity)
	result := &dto.ProcessFeedbackResult{
		FileName: fileName,
		Entries:  []*feedback.Entry{},
	}

	decoded, failed := ecert.FeedbackFormat.DecodeAll(content)
	for _, lineErr := range failed {
		log.Errorw("failed to decode response line", "line_number", lineErr.Number, "error", lineErr.Err)
		result.DecodingErrors = append(result.DecodingErrors, dto.LineErrorSummary{
			LineNumber: lineErr.Number,
			Error:      lineErr.Err.Error(),
		})
	}

	received := time.Now().UTC()
	details := 0
	var trailer *ecert.FeedbackTrailerRecord
	for _, line := range decoded {
		switch line.Layout.RecordType {
		case ecert.FeedbackRecordTypeHeader:
			if h := ecert.ParseFeedbackHeader(line.Record); !h.FileDate.IsZero() {
				received = h.FileDate
			}
		case ecert.FeedbackRecordTypeTrailer:
			t := ecert.ParseFeedbackTrailer(line.Record)
			trailer = &t
		case ecert.FeedbackRecordTypeDetail:
			details++
			if err := s.processDetail(ctx, intensity, fileName, received, line.Number, ecert.ParseFeedbackDetail(line.Record), result); err != nil {
				return nil, err
			}
		}
	}

	if trailer != nil && trailer.RecordCount != int64(details) {
		warning := fmt.Sprintf("trailer reports %d records, %d detail lines were decoded", trailer.RecordCount, details)
		log.Warnw("response file record count mismatch", "trailer_count", trailer.RecordCount, "decoded_count", details)
		result.Warnings = append(result.Warnings, warning)
	}

	s.Metrics.RecordFeedbackLines(metrics.OutcomeMatched, result.MatchedCount)
	s.Metrics.RecordFeedbackLines(metrics.OutcomeUnmatched, result.UnmatchedCount)
	s.Metrics.RecordFeedbackLines(metrics.OutcomeDecodingError, len(result.DecodingErrors))

	log.Infow("processed response file",
		"matched", result.MatchedCount,
		"unmatched", result.UnmatchedCount,
		"new_entries", result.NewEntryCount,
		"blocked", result.BlockedCount,
		"decoding_errors", len(result.DecodingErrors))
	return result, nil
}

func (s *ecertFeedbackService) processDetail(
	ctx context.Context,
	intensity types.OfferingIntensity,
	fileName string,
	received time.Time,
	lineNumber int,
	detail ecert.FeedbackDetailRecord,
	result *dto.ProcessFeedbackResult,
) error {
	d, err := s.DisbursementRepo.GetSentByDocumentNumber(ctx, intensity, detail.DocumentNumber)
	if ierr.IsNotFound(err) {
		s.Logger.Warnw("response line does not match a sent disbursement",
			"file_name", fileName,
			"line_number", lineNumber,
			"document_number", detail.DocumentNumber)
		result.UnmatchedCount++
		result.UnmatchedDocumentNumbers = append(result.UnmatchedDocumentNumbers, detail.DocumentNumber)
		return nil
	}
	if err != nil {
		return err
	}
	result.MatchedCount++

	for _, raw := range detail.ErrorCodes {
		code, ok := s.ErrorTable.Lookup(raw)
		if !ok {
			err := ierr.NewErrorf("unknown error code %q for document %d", raw, detail.DocumentNumber).
				Mark(ierr.ErrDecoding)
			s.Logger.Errorw("unknown response error code",
				"file_name", fileName,
				"line_number", lineNumber,
				"error_code", raw,
				"error", err)
			result.DecodingErrors = append(result.DecodingErrors, dto.LineErrorSummary{
				LineNumber: lineNumber,
				Error:      err.Error(),
			})
			continue
		}

		entry := feedback.NewEntry(ctx, d.ID, code, received, fileName)
		var created, blocked bool
		err := s.DB.WithTx(ctx, func(ctx context.Context) error {
			var err error
			if created, err = s.FeedbackRepo.Create(ctx, entry); err != nil {
				return err
			}
			if !entry.BlocksFunding {
				return nil
			}
			// an existing blocking entry is blocked again, marking is a no-op
			// once funding_blocked_at is set
			blocked, err = s.blockFunding(ctx, d, received)
			return err
		})
		if err != nil {
			return err
		}

		result.Entries = append(result.Entries, entry)
		if created {
			result.NewEntryCount++
		}
		if blocked {
			result.BlockedCount++
		}
	}
	return nil
}

// blockFunding flags the disbursement and gives back the overaward it
// deducted. Runs once per disbursement.
func (s *ecertFeedbackService) blockFunding(ctx context.Context, d *disbursement.Disbursement, at time.Time) (bool, error) {
	var blocked bool
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		var err error
		blocked, err = s.DisbursementRepo.MarkFundingBlocked(ctx, d.ID, at)
		if err != nil || !blocked {
			return err
		}

		deducted, err := s.OverawardRepo.List(ctx, &overaward.Filter{
			StudentID:      d.StudentID,
			DisbursementID: d.ID,
			OriginType:     types.OverawardOriginAwardDeducted,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, e := range deducted {
			reversal := &overaward.LedgerEntry{
				ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_OVERAWARD),
				StudentID:      e.StudentID,
				DisbursementID: e.DisbursementID,
				AwardValueCode: e.AwardValueCode,
				Amount:         e.Amount.Neg(),
				OriginType:     types.OverawardOriginReversal,
				CreatedAt:      now,
				CreatedBy:      types.GetUserID(ctx),
			}
			if err := s.OverawardRepo.Create(ctx, reversal); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if blocked {
		s.Logger.Infow("funding blocked by response error", "disbursement_id", d.ID)
	}
	return blocked, nil
}
