package models

import (
	"time"

	"go.temporal.io/sdk/temporal"
)

// RetryPolicy defines how to retry workflow or activity execution
type RetryPolicy struct {
	// InitialInterval is the initial interval between retries
	InitialInterval time.Duration
	// BackoffCoefficient is the coefficient to multiply the interval by for each retry
	BackoffCoefficient float64
	// MaximumInterval is the maximum interval between retries
	MaximumInterval time.Duration
	// MaximumAttempts is the maximum number of attempts
	MaximumAttempts int32
	// NonRetryableErrorTypes specifies error types that shouldn't be retried
	NonRetryableErrorTypes []string
}

// DefaultActivityRetryPolicy retries transient exchange and sequence failures
func DefaultActivityRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		InitialInterval:        DefaultInitialInterval,
		BackoffCoefficient:     DefaultBackoffCoefficient,
		MaximumInterval:        DefaultMaximumInterval,
		MaximumAttempts:        DefaultMaximumAttempts,
		NonRetryableErrorTypes: []string{ErrorTypeValidation, ErrorTypeBatch},
	}
}

// ToSDKRetryPolicy converts RetryPolicy to Temporal SDK temporal.RetryPolicy
func (p *RetryPolicy) ToSDKRetryPolicy() *temporal.RetryPolicy {
	if p == nil {
		return nil
	}
	return &temporal.RetryPolicy{
		InitialInterval:        p.InitialInterval,
		BackoffCoefficient:     p.BackoffCoefficient,
		MaximumInterval:        p.MaximumInterval,
		MaximumAttempts:        p.MaximumAttempts,
		NonRetryableErrorTypes: p.NonRetryableErrorTypes,
	}
}
