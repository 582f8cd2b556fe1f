package models

import (
	"time"
)

// Activity names, registered from the ECertActivities method names
const (
	ActivityGenerateECertFile     = "GenerateECertFile"
	ActivityProcessECertResponses = "ProcessECertResponses"
)

const (
	// DefaultWorkerStopTimeout is the default timeout for worker graceful shutdown
	DefaultWorkerStopTimeout = time.Second * 30

	// GenerateActivityTimeout bounds one generation run including the upload
	GenerateActivityTimeout = time.Minute * 15

	// FeedbackActivityTimeout bounds one pass over the response directory
	FeedbackActivityTimeout = time.Minute * 30

	// WorkflowExecutionTimeout bounds a manually triggered run
	WorkflowExecutionTimeout = time.Hour

	// DefaultInitialInterval is the default initial interval for retry policies
	DefaultInitialInterval = time.Second * 10

	// DefaultMaximumInterval is the default maximum interval for retry policies
	DefaultMaximumInterval = time.Minute * 5

	// DefaultBackoffCoefficient is the default backoff coefficient for retry policies
	DefaultBackoffCoefficient = 2.0

	// DefaultMaximumAttempts is the default maximum attempts for retry policies
	DefaultMaximumAttempts = 5
)

// Application error types carried by non retryable activity failures
const (
	ErrorTypeValidation = "ValidationError"
	ErrorTypeBatch      = "BatchError"
)
