package service

import (
	"github.com/studentaid/disbursement/internal/config"
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	"github.com/studentaid/disbursement/internal/domain/msfaa"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	"github.com/studentaid/disbursement/internal/domain/sequence"
	"github.com/studentaid/disbursement/internal/domain/student"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/metrics"
	"github.com/studentaid/disbursement/internal/postgres"
	"github.com/studentaid/disbursement/internal/s3"
	"github.com/studentaid/disbursement/internal/sftp"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger  *logger.Logger
	Config  *config.Configuration
	DB      postgres.IClient
	Metrics *metrics.Recorder

	// S3 is nil when archiving is disabled
	S3        s3.Service
	Transport sftp.Transport

	// ErrorTable classifies the error codes of response files
	ErrorTable *feedback.ErrorTable

	// Repositories
	SequenceRepo     sequence.Repository
	DisbursementRepo disbursement.Repository
	MSFAARepo        msfaa.Repository
	StudentRepo      student.Repository
	OverawardRepo    overaward.Repository
	FeedbackRepo     feedback.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	metrics *metrics.Recorder,
	s3Service s3.Service,
	transport sftp.Transport,
	errorTable *feedback.ErrorTable,
	sequenceRepo sequence.Repository,
	disbursementRepo disbursement.Repository,
	msfaaRepo msfaa.Repository,
	studentRepo student.Repository,
	overawardRepo overaward.Repository,
	feedbackRepo feedback.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Metrics:          metrics,
		S3:               s3Service,
		Transport:        transport,
		ErrorTable:       errorTable,
		SequenceRepo:     sequenceRepo,
		DisbursementRepo: disbursementRepo,
		MSFAARepo:        msfaaRepo,
		StudentRepo:      studentRepo,
		OverawardRepo:    overawardRepo,
		FeedbackRepo:     feedbackRepo,
	}
}
