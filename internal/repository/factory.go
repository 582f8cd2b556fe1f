package repository

import (
	"github.com/studentaid/disbursement/internal/domain/disbursement"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	"github.com/studentaid/disbursement/internal/domain/msfaa"
	"github.com/studentaid/disbursement/internal/domain/overaward"
	"github.com/studentaid/disbursement/internal/domain/sequence"
	"github.com/studentaid/disbursement/internal/domain/student"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
	postgresRepo "github.com/studentaid/disbursement/internal/repository/postgres"
)

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) sequence.Repository {
	return postgresRepo.NewSequenceRepository(db, logger)
}

func NewDisbursementRepository(db *postgres.DB, logger *logger.Logger) disbursement.Repository {
	return postgresRepo.NewDisbursementRepository(db, logger)
}

func NewMSFAARepository(db *postgres.DB, logger *logger.Logger) msfaa.Repository {
	return postgresRepo.NewMSFAARepository(db, logger)
}

func NewStudentRepository(db *postgres.DB, logger *logger.Logger) student.Repository {
	return postgresRepo.NewStudentRepository(db, logger)
}

func NewOverawardRepository(db *postgres.DB, logger *logger.Logger) overaward.Repository {
	return postgresRepo.NewOverawardRepository(db, logger)
}

func NewFeedbackRepository(db *postgres.DB, logger *logger.Logger) feedback.Repository {
	return postgresRepo.NewFeedbackRepository(db, logger)
}
