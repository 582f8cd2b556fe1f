package testutil

import (
	"context"

	"github.com/samber/lo"
	"github.com/studentaid/disbursement/internal/domain/student"
)

// InMemoryStudentStore implements student.Repository
type InMemoryStudentStore struct {
	*InMemoryStore[*student.Student]
	restrictions *InMemoryStore[*student.Restriction]
}

var _ student.Repository = (*InMemoryStudentStore)(nil)

func NewInMemoryStudentStore() *InMemoryStudentStore {
	return &InMemoryStudentStore{
		InMemoryStore: NewInMemoryStore[*student.Student](),
		restrictions:  NewInMemoryStore[*student.Restriction](),
	}
}

func (s *InMemoryStudentStore) Create(ctx context.Context, st *student.Student) error {
	c := *st
	return s.InMemoryStore.Create(ctx, st.ID, &c)
}

func (s *InMemoryStudentStore) Get(ctx context.Context, id string) (*student.Student, error) {
	st, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := *st
	return &c, nil
}

func (s *InMemoryStudentStore) CreateRestriction(ctx context.Context, r *student.Restriction) error {
	c := *r
	c.ActionTypes = append(c.ActionTypes[:0:0], r.ActionTypes...)
	c.AffectedValueCodes = append(c.AffectedValueCodes[:0:0], r.AffectedValueCodes...)
	return s.restrictions.Create(ctx, r.ID, &c)
}

func (s *InMemoryStudentStore) ListActiveRestrictions(ctx context.Context, studentID string) ([]*student.Restriction, error) {
	items, err := s.restrictions.List(ctx, studentID, func(_ context.Context, r *student.Restriction, _ interface{}) bool {
		return r.StudentID == studentID && r.Active
	}, func(a, b *student.Restriction) bool { return a.ID < b.ID })
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(r *student.Restriction, _ int) *student.Restriction {
		c := *r
		return &c
	}), nil
}

func (s *InMemoryStudentStore) Clear() {
	s.InMemoryStore.Clear()
	s.restrictions.Clear()
}
