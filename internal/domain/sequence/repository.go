package sequence

import (
	"context"
	"time"
)

// Counter is one named gapless sequence
type Counter struct {
	SequenceName string    `db:"sequence_name"`
	CurrentValue int64     `db:"current_value"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Repository persists sequence counters
type Repository interface {
	// NextValue increments the named counter and returns the new value in one
	// atomic statement. An unseen name starts at 0 so the first value is 1.
	NextValue(ctx context.Context, name string) (int64, error)

	// Current returns the last allocated value, 0 for an unseen name
	Current(ctx context.Context, name string) (int64, error)
}
