package student

import "context"

// Repository defines persistence for students and their restrictions
type Repository interface {
	Create(ctx context.Context, s *Student) error

	Get(ctx context.Context, id string) (*Student, error)

	CreateRestriction(ctx context.Context, r *Restriction) error

	// ListActiveRestrictions returns the active restrictions of a student
	ListActiveRestrictions(ctx context.Context, studentID string) ([]*Restriction, error)
}
