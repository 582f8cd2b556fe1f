package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/studentaid/disbursement/internal/config"
	"github.com/studentaid/disbursement/internal/domain/feedback"
	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/metrics"
	"github.com/studentaid/disbursement/internal/sftp"
	"github.com/studentaid/disbursement/internal/types"
	"github.com/studentaid/disbursement/internal/validator"
)

// Stores holds all the repository fakes for testing
type Stores struct {
	SequenceRepo     *InMemorySequenceStore
	DisbursementRepo *InMemoryDisbursementStore
	MSFAARepo        *InMemoryMSFAAStore
	StudentRepo      *InMemoryStudentStore
	OverawardRepo    *InMemoryOverawardStore
	FeedbackRepo     *InMemoryFeedbackStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	stores     Stores
	db         *MockPostgresClient
	transport  *sftp.MemoryTransport
	metrics    *metrics.Recorder
	errorTable *feedback.ErrorTable
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.logger = logger.NewNopLogger()
	s.errorTable = feedback.DefaultErrorTable()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		SequenceRepo:     NewInMemorySequenceStore(),
		DisbursementRepo: NewInMemoryDisbursementStore(),
		MSFAARepo:        NewInMemoryMSFAAStore(),
		StudentRepo:      NewInMemoryStudentStore(),
		OverawardRepo:    NewInMemoryOverawardStore(),
		FeedbackRepo:     NewInMemoryFeedbackStore(),
	}

	s.db = NewMockPostgresClient(s.logger,
		s.stores.DisbursementRepo,
		s.stores.OverawardRepo,
		s.stores.FeedbackRepo,
	)
	s.transport = sftp.NewMemoryTransport(s.config.SFTP.ArchiveDir)
	s.metrics = metrics.NewRecorder()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.SequenceRepo.Clear()
	s.stores.DisbursementRepo.Clear()
	s.stores.MSFAARepo.Clear()
	s.stores.StudentRepo.Clear()
	s.stores.OverawardRepo.Clear()
	s.stores.FeedbackRepo.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test transaction runner
func (s *BaseServiceTestSuite) GetDB() *MockPostgresClient {
	return s.db
}

// GetTransport returns the in-memory exchange server
func (s *BaseServiceTestSuite) GetTransport() *sftp.MemoryTransport {
	return s.transport
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Recorder {
	return s.metrics
}

func (s *BaseServiceTestSuite) GetErrorTable() *feedback.ErrorTable {
	return s.errorTable
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
