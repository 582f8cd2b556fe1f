package testutil

import (
	"context"
	"sync/atomic"

	"github.com/studentaid/disbursement/internal/logger"
	"github.com/studentaid/disbursement/internal/postgres"
	"github.com/studentaid/disbursement/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// Snapshotter is an in-memory store that takes part in MockPostgresClient
// transactions. The returned function puts the store back as it was.
type Snapshotter interface {
	Snapshot() (restore func())
}

// MockPostgresClient runs transaction bodies against the in-memory stores and
// restores every participating store when the outermost body fails.
type MockPostgresClient struct {
	logger       *logger.Logger
	participants []Snapshotter
	txCount      atomic.Int64
	rollbacks    atomic.Int64
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger, participants ...Snapshotter) *MockPostgresClient {
	return &MockPostgresClient{
		logger:       logger,
		participants: participants,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if c.inTx(ctx) {
		return fn(ctx)
	}

	c.txCount.Add(1)
	restores := make([]func(), 0, len(c.participants))
	for _, p := range c.participants {
		restores = append(restores, p.Snapshot())
	}

	if err := fn(context.WithValue(ctx, types.CtxDBTransaction, true)); err != nil {
		c.logger.Debugw("rolling back in-memory transaction", "error", err)
		for _, restore := range restores {
			restore()
		}
		c.rollbacks.Add(1)
		return err
	}
	return nil
}

// TxCount returns the number of outermost transactions started
func (c *MockPostgresClient) TxCount() int64 {
	return c.txCount.Load()
}

// RollbackCount returns the number of outermost transactions rolled back
func (c *MockPostgresClient) RollbackCount() int64 {
	return c.rollbacks.Load()
}

func (c *MockPostgresClient) inTx(ctx context.Context) bool {
	inTx, _ := ctx.Value(types.CtxDBTransaction).(bool)
	return inTx
}
